package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/tmuthoni/chama_backend/internal/core/domain"
)

type PostgresSharesRepository struct {
	db *sql.DB
}

func NewSharesRepository(db *sql.DB) *PostgresSharesRepository {
	return &PostgresSharesRepository{
		db,
	}
}

func (r *PostgresSharesRepository) CreateShares(ctx context.Context, shares *domain.Shares) (*domain.Shares, error) {
	query := `INSERT INTO shares (member_id, shares, dividends, penalties)
    VALUES ($1, $2, $3, $4)
    RETURNING member_id`

	err := r.db.QueryRowContext(ctx, query,
		shares.MemberID, shares.Shares, shares.Dividends, shares.Penalties).Scan(
		&shares.MemberID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return nil, domain.ErrSharesExist
			case "23503":
				return nil, domain.ErrNotFound
			}
		}
		return nil, err
	}
	return shares, nil
}

func (r *PostgresSharesRepository) GetSharesByMember(ctx context.Context, memberID int64) (*domain.Shares, error) {
	query := `SELECT member_id, shares, dividends, penalties
              FROM shares WHERE member_id = $1`

	shares := &domain.Shares{}
	err := r.db.QueryRowContext(ctx, query, memberID).Scan(
		&shares.MemberID,
		&shares.Shares,
		&shares.Dividends,
		&shares.Penalties,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return shares, nil
}

func (r *PostgresSharesRepository) ListShares(ctx context.Context) ([]*domain.Shares, error) {
	query := `SELECT member_id, shares, dividends, penalties
              FROM shares ORDER BY member_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*domain.Shares{}
	for rows.Next() {
		shares := &domain.Shares{}
		err := rows.Scan(
			&shares.MemberID,
			&shares.Shares,
			&shares.Dividends,
			&shares.Penalties,
		)
		if err != nil {
			return nil, err
		}
		list = append(list, shares)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (r *PostgresSharesRepository) UpdateShares(ctx context.Context, shares *domain.Shares) (*domain.Shares, error) {
	query := `UPDATE shares
        SET shares = $1, dividends = $2, penalties = $3
        WHERE member_id = $4
        RETURNING member_id, shares, dividends, penalties`

	result := &domain.Shares{}
	err := r.db.QueryRowContext(ctx, query,
		shares.Shares, shares.Dividends, shares.Penalties, shares.MemberID).Scan(
		&result.MemberID,
		&result.Shares,
		&result.Dividends,
		&result.Penalties,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresSharesRepository) DeleteShares(ctx context.Context, memberID int64) error {
	query := `DELETE FROM shares WHERE member_id = $1`

	result, err := r.db.ExecContext(ctx, query, memberID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}
