package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/tmuthoni/chama_backend/internal/core/domain"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{
		db,
	}
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `INSERT INTO users (firstname, lastname, email, phoneno, password, role, email_verified)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING member_id`

	err := r.db.QueryRowContext(ctx, query,
		user.Firstname, user.Lastname, user.Email, user.PhoneNo, user.Password, user.Role, user.EmailVerified).Scan(
		&user.MemberID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			switch pqErr.Constraint {
			case "users_email_key":
				return nil, domain.ErrDuplicateEmail
			case "users_phoneno_key":
				return nil, domain.ErrDuplicatePhone
			}
			return nil, domain.ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT member_id, firstname, lastname, email, phoneno, password, role, email_verified
              FROM users WHERE member_id = $1`

	user := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.MemberID,
		&user.Firstname,
		&user.Lastname,
		&user.Email,
		&user.PhoneNo,
		&user.Password,
		&user.Role,
		&user.EmailVerified,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT member_id, firstname, lastname, email, phoneno, password, role, email_verified
              FROM users WHERE email = $1`

	user := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.MemberID,
		&user.Firstname,
		&user.Lastname,
		&user.Email,
		&user.PhoneNo,
		&user.Password,
		&user.Role,
		&user.EmailVerified,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *PostgresUserRepository) ListUsers(ctx context.Context, role domain.UserRole) ([]*domain.User, error) {
	query := `SELECT member_id, firstname, lastname, email, phoneno, password, role, email_verified
              FROM users`
	args := []interface{}{}
	if role != "" {
		query += ` WHERE role = $1`
		args = append(args, role)
	}
	query += ` ORDER BY member_id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		user := &domain.User{}
		err := rows.Scan(
			&user.MemberID,
			&user.Firstname,
			&user.Lastname,
			&user.Email,
			&user.PhoneNo,
			&user.Password,
			&user.Role,
			&user.EmailVerified,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *PostgresUserRepository) UpdateRole(ctx context.Context, id int64, role domain.UserRole) error {
	query := `UPDATE users SET role = $1 WHERE member_id = $2`

	result, err := r.db.ExecContext(ctx, query, role, id)
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

func (r *PostgresUserRepository) SetEmailVerified(ctx context.Context, id int64) error {
	query := `UPDATE users SET email_verified = TRUE WHERE member_id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
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

func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE users SET password = $1 WHERE member_id = $2`

	result, err := r.db.ExecContext(ctx, query, passwordHash, id)
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

func (r *PostgresUserRepository) DeleteUser(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE member_id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
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
