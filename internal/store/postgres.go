package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/kirin765/naver-smartstore/internal/models"
)

const uniqueViolation = "23505"

// PostgresStore implements Store on database/sql with the lib/pq driver.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User, initialCredits int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistErr("begin create user", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, email, full_name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)`,
		u.ID, strings.ToLower(u.Email), u.FullName, u.PasswordHash, now)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.ErrEmailTaken
		}
		return persistErr("insert user", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO credit_accounts (user_id, balance, lifetime_usage, initial_grant, updated_at)
		VALUES ($1, $2, 0, $2, $3)`,
		u.ID, initialCredits, now)
	if err != nil {
		return persistErr("insert credit account", err)
	}

	if err := tx.Commit(); err != nil {
		return persistErr("commit create user", err)
	}
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email", strings.ToLower(email))
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id", id)
}

func (s *PostgresStore) getUser(ctx context.Context, column, value string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, full_name, password_hash, created_at, updated_at FROM users WHERE `+column+` = $1`,
		value).Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, persistErr("select user", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetAccount(ctx context.Context, userID string) (*models.CreditAccount, error) {
	var acc models.CreditAccount
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, balance, lifetime_usage, initial_grant, updated_at
		FROM credit_accounts WHERE user_id = $1`, userID).
		Scan(&acc.UserID, &acc.Balance, &acc.LifetimeUsage, &acc.InitialGrant, &acc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, persistErr("select credit account", err)
	}
	return &acc, nil
}

// ReserveCredits relies on a single conditional UPDATE: Postgres takes the row
// lock and re-evaluates the balance predicate, so concurrent reservations on
// one account cannot overdraw it.
func (s *PostgresStore) ReserveCredits(ctx context.Context, r *models.Reservation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistErr("begin reserve", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var remaining int64
	err = tx.QueryRowContext(ctx, `
		UPDATE credit_accounts SET balance = balance - $1, updated_at = $2
		WHERE user_id = $3 AND balance >= $1
		RETURNING balance`, r.Amount, now, r.UserID).Scan(&remaining)
	if errors.Is(err, sql.ErrNoRows) {
		var available int64
		err = tx.QueryRowContext(ctx, `SELECT balance FROM credit_accounts WHERE user_id = $1`, r.UserID).Scan(&available)
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrAccountNotFound
		}
		if err != nil {
			return persistErr("select balance", err)
		}
		return &models.InsufficientCreditsError{Required: r.Amount, Available: available}
	}
	if err != nil {
		return persistErr("decrement balance", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO credit_reservations (id, user_id, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		r.ID, r.UserID, r.Amount, string(models.ReservationPending), now)
	if err != nil {
		return persistErr("insert reservation", err)
	}

	if err := tx.Commit(); err != nil {
		return persistErr("commit reserve", err)
	}
	r.Status = models.ReservationPending
	r.CreatedAt = now
	return nil
}

func (s *PostgresStore) CommitReservation(ctx context.Context, reservationID string, usage *models.CreditTransaction) (*models.CreditTransaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistErr("begin commit", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var userID string
	var amount int64
	err = tx.QueryRowContext(ctx, `
		UPDATE credit_reservations SET status = $1, transaction_id = $2, settled_at = $3
		WHERE id = $4 AND status = $5
		RETURNING user_id, amount`,
		string(models.ReservationCommitted), usage.ID, now, reservationID, string(models.ReservationPending)).
		Scan(&userID, &amount)
	if errors.Is(err, sql.ErrNoRows) {
		return s.settledTransaction(ctx, tx, reservationID)
	}
	if err != nil {
		return nil, persistErr("settle reservation", err)
	}

	committed := *usage
	committed.UserID = userID
	committed.Amount = -amount
	committed.ReservationID = reservationID
	committed.CreatedAt = now
	_, err = tx.ExecContext(ctx, `
		INSERT INTO credit_transactions (id, user_id, amount, kind, description, reservation_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		committed.ID, committed.UserID, committed.Amount, string(committed.Kind), committed.Description, reservationID, now)
	if err != nil {
		return nil, persistErr("insert usage transaction", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE credit_accounts SET lifetime_usage = lifetime_usage + $1, updated_at = $2
		WHERE user_id = $3`, amount, now, userID)
	if err != nil {
		return nil, persistErr("increment lifetime usage", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, persistErr("commit usage", err)
	}
	return &committed, nil
}

// settledTransaction resolves a commit against a reservation that is no
// longer pending.
func (s *PostgresStore) settledTransaction(ctx context.Context, tx *sql.Tx, reservationID string) (*models.CreditTransaction, error) {
	var status string
	var txID sql.NullString
	err := tx.QueryRowContext(ctx, `SELECT status, transaction_id FROM credit_reservations WHERE id = $1`, reservationID).
		Scan(&status, &txID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrReservationNotFound
	}
	if err != nil {
		return nil, persistErr("select reservation", err)
	}
	if models.ReservationStatus(status) != models.ReservationCommitted || !txID.Valid {
		return nil, models.ErrReservationSettled
	}

	var t models.CreditTransaction
	var kind string
	var resID sql.NullString
	err = tx.QueryRowContext(ctx, `
		SELECT id, user_id, amount, kind, description, reservation_id, created_at
		FROM credit_transactions WHERE id = $1`, txID.String).
		Scan(&t.ID, &t.UserID, &t.Amount, &kind, &t.Description, &resID, &t.CreatedAt)
	if err != nil {
		return nil, persistErr("select committed transaction", err)
	}
	t.Kind = models.TransactionKind(kind)
	t.ReservationID = resID.String
	return &t, nil
}

func (s *PostgresStore) ReleaseReservation(ctx context.Context, reservationID string) (*models.Reservation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistErr("begin release", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res := models.Reservation{ID: reservationID}
	err = tx.QueryRowContext(ctx, `
		UPDATE credit_reservations SET status = $1, settled_at = $2
		WHERE id = $3 AND status = $4
		RETURNING user_id, amount, created_at`,
		string(models.ReservationReleased), now, reservationID, string(models.ReservationPending)).
		Scan(&res.UserID, &res.Amount, &res.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		var status string
		err = tx.QueryRowContext(ctx, `SELECT status FROM credit_reservations WHERE id = $1`, reservationID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrReservationNotFound
		}
		if err != nil {
			return nil, persistErr("select reservation", err)
		}
		if models.ReservationStatus(status) == models.ReservationReleased {
			res.Status = models.ReservationReleased
			return &res, nil
		}
		return nil, models.ErrReservationSettled
	}
	if err != nil {
		return nil, persistErr("release reservation", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE credit_accounts SET balance = balance + $1, updated_at = $2
		WHERE user_id = $3`, res.Amount, now, res.UserID)
	if err != nil {
		return nil, persistErr("restore balance", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, persistErr("commit release", err)
	}
	res.Status = models.ReservationReleased
	res.SettledAt = &now
	return &res, nil
}

func (s *PostgresStore) AddCredits(ctx context.Context, t *models.CreditTransaction) (*models.CreditAccount, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistErr("begin add credits", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	acc := models.CreditAccount{UserID: t.UserID, UpdatedAt: now}
	err = tx.QueryRowContext(ctx, `
		UPDATE credit_accounts SET balance = balance + $1, updated_at = $2
		WHERE user_id = $3
		RETURNING balance, lifetime_usage, initial_grant`, t.Amount, now, t.UserID).
		Scan(&acc.Balance, &acc.LifetimeUsage, &acc.InitialGrant)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, persistErr("increment balance", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO credit_transactions (id, user_id, amount, kind, description, reservation_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NULL, $6)`,
		t.ID, t.UserID, t.Amount, string(t.Kind), t.Description, now)
	if err != nil {
		return nil, persistErr("insert credit transaction", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, persistErr("commit add credits", err)
	}
	t.CreatedAt = now
	return &acc, nil
}

func (s *PostgresStore) ListTransactions(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, amount, kind, description, reservation_id, created_at
		FROM credit_transactions WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, persistErr("select transactions", err)
	}
	defer rows.Close()

	out := make([]models.CreditTransaction, 0)
	for rows.Next() {
		var t models.CreditTransaction
		var kind string
		var resID sql.NullString
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &kind, &t.Description, &resID, &t.CreatedAt); err != nil {
			return nil, persistErr("scan transaction", err)
		}
		t.Kind = models.TransactionKind(kind)
		t.ReservationID = resID.String
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("iterate transactions", err)
	}
	return out, nil
}

func (s *PostgresStore) ListStaleReservations(ctx context.Context, createdBefore time.Time, limit int) ([]models.Reservation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, amount, status, created_at
		FROM credit_reservations WHERE status = $1 AND created_at < $2
		ORDER BY created_at LIMIT $3`, string(models.ReservationPending), createdBefore, limit)
	if err != nil {
		return nil, persistErr("select stale reservations", err)
	}
	defer rows.Close()

	out := make([]models.Reservation, 0)
	for rows.Next() {
		var r models.Reservation
		var status string
		if err := rows.Scan(&r.ID, &r.UserID, &r.Amount, &status, &r.CreatedAt); err != nil {
			return nil, persistErr("scan reservation", err)
		}
		r.Status = models.ReservationStatus(status)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("iterate reservations", err)
	}
	return out, nil
}

const productColumns = `id, user_id, product_name, category, brand, price, keywords, status,
	generated_title, generated_alternatives, generated_description, generated_bullet_specs, generated_tags,
	created_at, updated_at`

func (s *PostgresStore) InsertProduct(ctx context.Context, p *models.Product) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)`,
		p.ID, p.UserID, p.ProductName, p.Category, p.Brand, nullPrice(p.Price), pq.Array(p.Keywords), p.Status,
		p.GeneratedTitle, pq.Array(p.GeneratedAlternatives), p.GeneratedDescription,
		pq.Array(p.GeneratedBulletSpecs), pq.Array(p.GeneratedTags), now)
	if err != nil {
		return persistErr("insert product", err)
	}
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

func (s *PostgresStore) GetProduct(ctx context.Context, userID, productID string) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND user_id = $2`, productID, userID)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, persistErr("select product", err)
	}
	return p, nil
}

func (s *PostgresStore) UpdateProduct(ctx context.Context, p *models.Product) error {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE products SET product_name = $1, category = $2, brand = $3, price = $4, keywords = $5, status = $6,
			generated_title = $7, generated_alternatives = $8, generated_description = $9,
			generated_bullet_specs = $10, generated_tags = $11, updated_at = $12
		WHERE id = $13 AND user_id = $14`,
		p.ProductName, p.Category, p.Brand, nullPrice(p.Price), pq.Array(p.Keywords), p.Status,
		p.GeneratedTitle, pq.Array(p.GeneratedAlternatives), p.GeneratedDescription,
		pq.Array(p.GeneratedBulletSpecs), pq.Array(p.GeneratedTags), now, p.ID, p.UserID)
	if err != nil {
		return persistErr("update product", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistErr("update product", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFound
	}
	p.UpdatedAt = now
	return nil
}

func (s *PostgresStore) SaveGeneration(ctx context.Context, userID, productID string, t models.GenerationType, r *models.GenerationResult) (*models.Product, error) {
	var cols []string
	var args []any
	set := func(col string, v any) {
		args = append(args, v)
		cols = append(cols, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	switch t {
	case models.GenerationTitle:
		set("generated_title", r.Title)
		set("generated_alternatives", pq.Array(r.Alternatives))
	case models.GenerationDescription:
		set("generated_description", r.Description)
	case models.GenerationBullet:
		set("generated_bullet_specs", pq.Array(r.BulletSpecs))
	case models.GenerationTags:
		set("generated_tags", pq.Array(r.Tags))
	case models.GenerationFull:
		set("generated_title", r.Title)
		set("generated_alternatives", pq.Array(r.Alternatives))
		set("generated_description", r.Description)
		set("generated_bullet_specs", pq.Array(r.BulletSpecs))
		set("generated_tags", pq.Array(r.Tags))
	default:
		return nil, fmt.Errorf("%w: unknown generation type %q", models.ErrInvalidRequest, t)
	}
	set("updated_at", time.Now().UTC())
	n := len(args)
	args = append(args, productID, userID)

	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`UPDATE products SET %s WHERE id = $%d AND user_id = $%d RETURNING `, strings.Join(cols, ", "), n+1, n+2)+productColumns,
		args...)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, persistErr("save generation", err)
	}
	return p, nil
}

func (s *PostgresStore) DeleteProduct(ctx context.Context, userID, productID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1 AND user_id = $2`, productID, userID)
	if err != nil {
		return persistErr("delete product", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistErr("delete product", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListProductsByUser(ctx context.Context, userID string, limit int) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, persistErr("select products", err)
	}
	defer rows.Close()

	out := make([]models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, persistErr("scan product", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("iterate products", err)
	}
	return out, nil
}

func (s *PostgresStore) CountProductsByUser(ctx context.Context, userID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, persistErr("count products", err)
	}
	return n, nil
}

func (s *PostgresStore) InsertGenerationLog(ctx context.Context, l *models.GenerationLog) error {
	now := time.Now().UTC()
	var productID sql.NullString
	if l.ProductID != "" {
		productID = sql.NullString{String: l.ProductID, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_logs (id, user_id, product_id, generation_type, credits_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		l.ID, l.UserID, productID, string(l.Type), l.CreditsUsed, now)
	if err != nil {
		return persistErr("insert generation log", err)
	}
	l.CreatedAt = now
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	var price sql.NullInt64
	var keywords, alternatives, bullets, tags pq.StringArray
	err := row.Scan(&p.ID, &p.UserID, &p.ProductName, &p.Category, &p.Brand, &price, &keywords, &p.Status,
		&p.GeneratedTitle, &alternatives, &p.GeneratedDescription, &bullets, &tags,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if price.Valid {
		p.Price = &price.Int64
	}
	p.Keywords = []string(keywords)
	p.GeneratedAlternatives = []string(alternatives)
	p.GeneratedBulletSpecs = []string(bullets)
	p.GeneratedTags = []string(tags)
	return &p, nil
}

func nullPrice(price *int64) sql.NullInt64 {
	if price == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *price, Valid: true}
}

func persistErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", models.ErrPersistenceFailed, op, err)
}
