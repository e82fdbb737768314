package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirin765/naver-smartstore/internal/models"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db), mock
}

func TestPostgresStore_ReserveCredits(t *testing.T) {
	ctx := context.Background()

	t.Run("successful reserve", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE credit_accounts SET balance = balance - $1")).
			WithArgs(int64(2), sqlmock.AnyArg(), "user-1").
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(8))
		mock.ExpectExec("INSERT INTO credit_reservations").
			WithArgs("res-1", "user-1", int64(2), "pending", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		r := &models.Reservation{ID: "res-1", UserID: "user-1", Amount: 2}
		err := s.ReserveCredits(ctx, r)
		assert.NoError(t, err)
		assert.Equal(t, models.ReservationPending, r.Status)
		assert.False(t, r.CreatedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insufficient balance", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE credit_accounts SET balance = balance - $1")).
			WithArgs(int64(5), sqlmock.AnyArg(), "user-1").
			WillReturnRows(sqlmock.NewRows([]string{"balance"}))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT balance FROM credit_accounts WHERE user_id = $1")).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(3))
		mock.ExpectRollback()

		err := s.ReserveCredits(ctx, &models.Reservation{ID: "res-1", UserID: "user-1", Amount: 5})
		assert.ErrorIs(t, err, models.ErrInsufficientCredits)
		var insufficient *models.InsufficientCreditsError
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, int64(3), insufficient.Available)
		assert.Equal(t, int64(2), insufficient.Shortfall())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing account", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE credit_accounts SET balance = balance - $1")).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT balance FROM credit_accounts")).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		err := s.ReserveCredits(ctx, &models.Reservation{ID: "res-1", UserID: "ghost", Amount: 1})
		assert.ErrorIs(t, err, models.ErrAccountNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reservation insert fails", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE credit_accounts SET balance = balance - $1")).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(8))
		mock.ExpectExec("INSERT INTO credit_reservations").
			WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		err := s.ReserveCredits(ctx, &models.Reservation{ID: "res-1", UserID: "user-1", Amount: 2})
		assert.ErrorIs(t, err, models.ErrPersistenceFailed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_CommitReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("commits pending reservation", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE credit_reservations SET status = $1, transaction_id = $2")).
			WithArgs("committed", "tx-1", sqlmock.AnyArg(), "res-1", "pending").
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "amount"}).AddRow("user-1", 5))
		mock.ExpectExec("INSERT INTO credit_transactions").
			WithArgs("tx-1", "user-1", int64(-5), "usage", "full generation", "res-1", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE credit_accounts SET lifetime_usage = lifetime_usage + $1")).
			WithArgs(int64(5), sqlmock.AnyArg(), "user-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx, err := s.CommitReservation(ctx, "res-1", &models.CreditTransaction{
			ID: "tx-1", Kind: models.KindUsage, Description: "full generation",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(-5), tx.Amount)
		assert.Equal(t, "user-1", tx.UserID)
		assert.Equal(t, "res-1", tx.ReservationID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second commit returns original transaction", func(t *testing.T) {
		s, mock := newMockStore(t)
		created := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE credit_reservations SET status = $1, transaction_id = $2")).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "amount"}))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT status, transaction_id FROM credit_reservations")).
			WithArgs("res-1").
			WillReturnRows(sqlmock.NewRows([]string{"status", "transaction_id"}).AddRow("committed", "tx-1"))
		mock.ExpectQuery(regexp.QuoteMeta("FROM credit_transactions WHERE id = $1")).
			WithArgs("tx-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "amount", "kind", "description", "reservation_id", "created_at"}).
				AddRow("tx-1", "user-1", -5, "usage", "full generation", "res-1", created))
		mock.ExpectRollback()

		tx, err := s.CommitReservation(ctx, "res-1", &models.CreditTransaction{ID: "tx-2", Kind: models.KindUsage})
		require.NoError(t, err)
		assert.Equal(t, "tx-1", tx.ID)
		assert.Equal(t, int64(-5), tx.Amount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("released reservation cannot be committed", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE credit_reservations SET status = $1, transaction_id = $2")).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "amount"}))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT status, transaction_id FROM credit_reservations")).
			WillReturnRows(sqlmock.NewRows([]string{"status", "transaction_id"}).AddRow("released", nil))
		mock.ExpectRollback()

		_, err := s.CommitReservation(ctx, "res-1", &models.CreditTransaction{ID: "tx-2", Kind: models.KindUsage})
		assert.ErrorIs(t, err, models.ErrReservationSettled)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown reservation", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE credit_reservations SET status = $1, transaction_id = $2")).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "amount"}))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT status, transaction_id FROM credit_reservations")).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := s.CommitReservation(ctx, "nope", &models.CreditTransaction{ID: "tx-2", Kind: models.KindUsage})
		assert.ErrorIs(t, err, models.ErrReservationNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_ReleaseReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("restores balance", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE credit_reservations SET status = $1, settled_at = $2")).
			WithArgs("released", sqlmock.AnyArg(), "res-1", "pending").
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "amount", "created_at"}).AddRow("user-1", 2, time.Now()))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE credit_accounts SET balance = balance + $1")).
			WithArgs(int64(2), sqlmock.AnyArg(), "user-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		res, err := s.ReleaseReservation(ctx, "res-1")
		require.NoError(t, err)
		assert.Equal(t, models.ReservationReleased, res.Status)
		assert.Equal(t, int64(2), res.Amount)
		assert.NotNil(t, res.SettledAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already released is a no-op", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE credit_reservations SET status = $1, settled_at = $2")).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "amount", "created_at"}))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM credit_reservations")).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("released"))
		mock.ExpectRollback()

		res, err := s.ReleaseReservation(ctx, "res-1")
		require.NoError(t, err)
		assert.Equal(t, models.ReservationReleased, res.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("committed reservation cannot be released", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE credit_reservations SET status = $1, settled_at = $2")).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "amount", "created_at"}))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM credit_reservations")).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("committed"))
		mock.ExpectRollback()

		_, err := s.ReleaseReservation(ctx, "res-1")
		assert.ErrorIs(t, err, models.ErrReservationSettled)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_AddCredits(t *testing.T) {
	ctx := context.Background()

	t.Run("credits account", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE credit_accounts SET balance = balance + $1")).
			WithArgs(int64(50), sqlmock.AnyArg(), "user-1").
			WillReturnRows(sqlmock.NewRows([]string{"balance", "lifetime_usage", "initial_grant"}).AddRow(60, 3, 10))
		mock.ExpectExec("INSERT INTO credit_transactions").
			WithArgs("tx-1", "user-1", int64(50), "purchase", "basic pack", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		acc, err := s.AddCredits(ctx, &models.CreditTransaction{
			ID: "tx-1", UserID: "user-1", Amount: 50, Kind: models.KindPurchase, Description: "basic pack",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(60), acc.Balance)
		assert.Equal(t, int64(3), acc.LifetimeUsage)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing account", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE credit_accounts SET balance = balance + $1")).
			WillReturnRows(sqlmock.NewRows([]string{"balance", "lifetime_usage", "initial_grant"}))
		mock.ExpectRollback()

		_, err := s.AddCredits(ctx, &models.CreditTransaction{ID: "tx-1", UserID: "ghost", Amount: 5, Kind: models.KindBonus})
		assert.ErrorIs(t, err, models.ErrAccountNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and account", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").
			WithArgs("user-1", "seller@example.com", "Kim", "hash", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO credit_accounts").
			WithArgs("user-1", int64(10), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		u := &models.User{ID: "user-1", Email: "Seller@Example.com", FullName: "Kim", PasswordHash: "hash"}
		assert.NoError(t, s.CreateUser(ctx, u, 10))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").
			WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		err := s.CreateUser(ctx, &models.User{ID: "user-2", Email: "seller@example.com"}, 10)
		assert.ErrorIs(t, err, models.ErrEmailTaken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_Products(t *testing.T) {
	ctx := context.Background()
	columns := []string{"id", "user_id", "product_name", "category", "brand", "price", "keywords", "status",
		"generated_title", "generated_alternatives", "generated_description", "generated_bullet_specs", "generated_tags",
		"created_at", "updated_at"}

	t.Run("get scans arrays and price", func(t *testing.T) {
		s, mock := newMockStore(t)
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = $1 AND user_id = $2")).
			WithArgs("prod-1", "user-1").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				"prod-1", "user-1", "무선 이어폰", "디지털가전", "", 39000, "{블루투스,노이즈캔슬링}", "draft",
				"", "{}", "", "{}", "{}", now, now))

		p, err := s.GetProduct(ctx, "user-1", "prod-1")
		require.NoError(t, err)
		require.NotNil(t, p.Price)
		assert.Equal(t, int64(39000), *p.Price)
		assert.Equal(t, []string{"블루투스", "노이즈캔슬링"}, p.Keywords)
		assert.Empty(t, p.GeneratedTags)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get other owner is not found", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = $1 AND user_id = $2")).
			WithArgs("prod-1", "intruder").
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := s.GetProduct(ctx, "intruder", "prod-1")
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("save generation writes only that type's columns", func(t *testing.T) {
		s, mock := newMockStore(t)
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(
			"UPDATE products SET generated_tags = $1, updated_at = $2 WHERE id = $3 AND user_id = $4 RETURNING id")).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "prod-1", "user-1").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				"prod-1", "user-1", "사용자가 바꾼 이름", "디지털가전", "", nil, "{}", "draft",
				"", "{}", "", "{}", "{이어폰,블루투스}", now, now))

		p, err := s.SaveGeneration(ctx, "user-1", "prod-1", models.GenerationTags,
			&models.GenerationResult{Tags: []string{"이어폰", "블루투스"}})
		require.NoError(t, err)
		assert.Equal(t, "사용자가 바꾼 이름", p.ProductName)
		assert.Equal(t, []string{"이어폰", "블루투스"}, p.GeneratedTags)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("save generation for other owner is not found", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE products SET generated_title = $1, generated_alternatives = $2")).
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := s.SaveGeneration(ctx, "intruder", "prod-1", models.GenerationTitle, &models.GenerationResult{Title: "x"})
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete missing row", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = $1 AND user_id = $2")).
			WithArgs("prod-1", "user-1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := s.DeleteProduct(ctx, "user-1", "prod-1")
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM products WHERE user_id = $1")).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

		n, err := s.CountProductsByUser(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 4, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_InsertGenerationLog(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO generation_logs").
		WithArgs("log-1", "user-1", nil, "title", int64(1), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := s.InsertGenerationLog(context.Background(), &models.GenerationLog{
		ID: "log-1", UserID: "user-1", Type: models.GenerationTitle, CreditsUsed: 1,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
