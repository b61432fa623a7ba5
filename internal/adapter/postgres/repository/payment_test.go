package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmuthoni/chama_backend/internal/core/domain"
)

func newPaymentRepoWithMock(t *testing.T) (*PostgresPaymentRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPaymentRepository(db), mock, db
}

func TestCreatePayment_Success(t *testing.T) {
	repo, mock, db := newPaymentRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO payments`).
		WithArgs(int64(1), "Monthly contribution", 2000.0, "mpesa", "RCPT-001").
		WillReturnRows(sqlmock.NewRows([]string{"payment_id"}).AddRow(10))

	payment := &domain.Payment{
		MemberID: 1,
		PayName:  "Monthly contribution",
		Amount:   2000,
		Method:   "mpesa",
		Receipt:  "RCPT-001",
	}
	created, err := repo.CreatePayment(context.Background(), payment)
	require.NoError(t, err)
	assert.Equal(t, int64(10), created.PaymentID)
}

func TestCreatePayment_DuplicateReceipt(t *testing.T) {
	repo, mock, db := newPaymentRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO payments`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "payments_receipt_key"})

	_, err := repo.CreatePayment(context.Background(), &domain.Payment{Receipt: "RCPT-001"})
	assert.ErrorIs(t, err, domain.ErrDuplicateReceipt)
}

func TestCreatePayment_UnknownMemberFK(t *testing.T) {
	repo, mock, db := newPaymentRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO payments`).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "payments_member_id_fkey"})

	_, err := repo.CreatePayment(context.Background(), &domain.Payment{MemberID: 404})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetPaymentByReceipt_NotFound(t *testing.T) {
	repo, mock, db := newPaymentRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM payments WHERE receipt`).
		WithArgs("GHOST").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetPaymentByReceipt(context.Background(), "GHOST")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListPayments_JoinsFirstname(t *testing.T) {
	repo, mock, db := newPaymentRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"payment_id", "member_id", "payname", "amount", "method", "receipt", "firstname"}).
		AddRow(2, 3, "Penalty", 500.0, "cash", "RCPT-002", "Achieng").
		AddRow(1, 2, "Monthly contribution", 2000.0, "mpesa", "RCPT-001", "Wanjiku")
	mock.ExpectQuery(`JOIN users u ON u\.member_id = p\.member_id\s+ORDER BY p\.payment_id DESC`).
		WillReturnRows(rows)

	payments, err := repo.ListPayments(context.Background())
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, int64(2), payments[0].PaymentID)
	assert.Equal(t, "Achieng", payments[0].Firstname)
	assert.Equal(t, "Wanjiku", payments[1].Firstname)
}

func TestDeletePayment_NoRowsIsNotFound(t *testing.T) {
	repo, mock, db := newPaymentRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM payments`).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeletePayment(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
