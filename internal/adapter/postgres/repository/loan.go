package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/tmuthoni/chama_backend/internal/core/domain"
)

type PostgresLoanRepository struct {
	db *sql.DB
}

func NewLoanRepository(db *sql.DB) *PostgresLoanRepository {
	return &PostgresLoanRepository{
		db,
	}
}

func (r *PostgresLoanRepository) CreateLoan(ctx context.Context, loan *domain.Loan) (*domain.Loan, error) {
	query := `INSERT INTO loanapps (member_id, amount, interest, year, monthrepay)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING member_id`

	err := r.db.QueryRowContext(ctx, query,
		loan.MemberID, loan.Amount, loan.Interest, loan.Year, loan.MonthRepay).Scan(
		&loan.MemberID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return nil, domain.ErrLoanExists
			case "23503":
				return nil, domain.ErrNotFound
			}
		}
		return nil, err
	}
	return loan, nil
}

func (r *PostgresLoanRepository) GetLoanByMember(ctx context.Context, memberID int64) (*domain.Loan, error) {
	query := `SELECT member_id, amount, interest, year, monthrepay
              FROM loanapps WHERE member_id = $1`

	loan := &domain.Loan{}
	err := r.db.QueryRowContext(ctx, query, memberID).Scan(
		&loan.MemberID,
		&loan.Amount,
		&loan.Interest,
		&loan.Year,
		&loan.MonthRepay,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return loan, nil
}

func (r *PostgresLoanRepository) GetLoansByMember(ctx context.Context, memberID int64) ([]*domain.Loan, error) {
	query := `SELECT member_id, amount, interest, year, monthrepay
              FROM loanapps WHERE member_id = $1`

	rows, err := r.db.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loans := []*domain.Loan{}
	for rows.Next() {
		loan := &domain.Loan{}
		err := rows.Scan(
			&loan.MemberID,
			&loan.Amount,
			&loan.Interest,
			&loan.Year,
			&loan.MonthRepay,
		)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *PostgresLoanRepository) ListLoans(ctx context.Context, limit, offset int) ([]*domain.LoanWithMember, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM loanapps`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT l.member_id, l.amount, l.interest, l.year, l.monthrepay, u.firstname
              FROM loanapps l
              JOIN users u ON u.member_id = l.member_id
              ORDER BY l.member_id
              LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	loans := []*domain.LoanWithMember{}
	for rows.Next() {
		loan := &domain.LoanWithMember{}
		err := rows.Scan(
			&loan.MemberID,
			&loan.Amount,
			&loan.Interest,
			&loan.Year,
			&loan.MonthRepay,
			&loan.Firstname,
		)
		if err != nil {
			return nil, 0, err
		}
		loans = append(loans, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return loans, total, nil
}

func (r *PostgresLoanRepository) UpdateLoan(ctx context.Context, loan *domain.Loan) (*domain.Loan, error) {
	query := `UPDATE loanapps
        SET amount = $1, interest = $2, year = $3, monthrepay = $4
        WHERE member_id = $5
        RETURNING member_id, amount, interest, year, monthrepay`

	result := &domain.Loan{}
	err := r.db.QueryRowContext(ctx, query,
		loan.Amount, loan.Interest, loan.Year, loan.MonthRepay, loan.MemberID).Scan(
		&result.MemberID,
		&result.Amount,
		&result.Interest,
		&result.Year,
		&result.MonthRepay,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresLoanRepository) DeleteLoan(ctx context.Context, memberID int64) error {
	query := `DELETE FROM loanapps WHERE member_id = $1`

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
