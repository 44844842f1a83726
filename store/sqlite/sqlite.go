/*
Package sqlite provides the SQLite-backed store for the tuition engine.

PURPOSE:
  Implements the billing.Repository port plus the CRUD surface the HTTP
  layer needs (students, promotions, fees, payments, dashboard stats).
  In production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  promotions: aggregate-model cohorts with one flat total fee
  centers:    teaching locations; organizational only, no billing data
  students:   identity fields + derived status + optional promotion and
              center refs
  fees:       itemized-model line items (annual rights / monthly tuition)
  payments:   amounts received, optionally linked to one fee

CASCADES:
  Deleting a fee deletes its linked payments (ON DELETE CASCADE), which
  preserves the invariant that every payment applies against a live
  target. Deleting a student cascades fees and payments.

STATUS COLUMN:
  students.status is a cache of the engine's DeriveStatus output. The
  only writer is SetStudentStatus, called from the reconcile path.

CONCURRENCY:
  Uses a mutex around units of work plus SQLite WAL mode. WithTx gives
  the caller one atomic unit for admission check + payment write +
  status update, so two concurrent submissions cannot both pass the
  guard against a stale balance.

USAGE:
  store, err := sqlite.New("./data/tuition.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - billing/repository.go: the port this package implements
  - billing/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/tuition-engine/billing"
)

// Store implements billing.Repository and the CRUD surface using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
	queries
}

// Tx is the transactional view handed to WithTx closures. It exposes the
// same query surface as Store, bound to one database transaction.
type Tx struct {
	queries
}

var (
	_ billing.Repository = (*Store)(nil)
	_ billing.Repository = (*Tx)(nil)
)

// dbtx is the subset of *sql.DB / *sql.Tx the queries need.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, queries: queries{db: db}}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS promotions (
		id        TEXT PRIMARY KEY,
		name      TEXT NOT NULL,
		total_fee INTEGER NOT NULL CHECK (total_fee >= 0)
	);

	CREATE TABLE IF NOT EXISTS centers (
		id   TEXT PRIMARY KEY,
		city TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS students (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		first_name   TEXT NOT NULL DEFAULT '',
		contact      TEXT NOT NULL DEFAULT '',
		status       TEXT NOT NULL DEFAULT 'PENDING',
		promotion_id TEXT REFERENCES promotions(id),
		center_id    TEXT REFERENCES centers(id)
	);
	CREATE INDEX IF NOT EXISTS idx_students_promotion ON students(promotion_id);
	CREATE INDEX IF NOT EXISTS idx_students_center ON students(center_id);

	CREATE TABLE IF NOT EXISTS fees (
		id         TEXT PRIMARY KEY,
		student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		fee_type   TEXT NOT NULL,
		price      INTEGER NOT NULL CHECK (price > 0),
		month      TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_fees_student ON fees(student_id);

	CREATE TABLE IF NOT EXISTS payments (
		id          TEXT PRIMARY KEY,
		student_id  TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		fee_id      TEXT REFERENCES fees(id) ON DELETE CASCADE,
		amount      INTEGER NOT NULL CHECK (amount > 0),
		month_label TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_payments_student ON payments(student_id);
	CREATE INDEX IF NOT EXISTS idx_payments_fee ON payments(fee_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// WithTx executes fn within a database transaction. The store mutex is
// held for the duration, serializing units of work: the admission guard,
// the payment write and the status update commit together or not at all.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&Tx{queries: queries{db: sqlTx}}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// Reset wipes all data. Dev/demo only, used by the scenario loader.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM payments;
		DELETE FROM fees;
		DELETE FROM students;
		DELETE FROM promotions;
		DELETE FROM centers;
	`)
	return err
}

// =============================================================================
// QUERIES - shared by Store and Tx
// =============================================================================

type queries struct {
	db dbtx
}

// -----------------------------------------------------------------------------
// Promotions
// -----------------------------------------------------------------------------

func (q queries) CreatePromotion(ctx context.Context, name string, totalFee billing.Amount) (billing.Promotion, error) {
	p := billing.Promotion{
		ID:       billing.PromotionID(uuid.NewString()),
		Name:     name,
		TotalFee: totalFee,
	}
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO promotions (id, name, total_fee) VALUES (?, ?, ?)`,
		string(p.ID), p.Name, p.TotalFee.MinorUnits())
	if err != nil {
		return billing.Promotion{}, err
	}
	return p, nil
}

func (q queries) GetPromotion(ctx context.Context, id billing.PromotionID) (billing.Promotion, error) {
	var p billing.Promotion
	var fee int64
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, total_fee FROM promotions WHERE id = ?`, string(id)).
		Scan(&p.ID, &p.Name, &fee)
	if errors.Is(err, sql.ErrNoRows) {
		return billing.Promotion{}, billing.ErrPromotionNotFound
	}
	if err != nil {
		return billing.Promotion{}, err
	}
	p.TotalFee = billing.NewAmount(fee)
	return p, nil
}

func (q queries) ListPromotions(ctx context.Context) ([]billing.Promotion, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name, total_fee FROM promotions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []billing.Promotion
	for rows.Next() {
		var p billing.Promotion
		var fee int64
		if err := rows.Scan(&p.ID, &p.Name, &fee); err != nil {
			return nil, err
		}
		p.TotalFee = billing.NewAmount(fee)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (q queries) UpdatePromotion(ctx context.Context, p billing.Promotion) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE promotions SET name = ?, total_fee = ? WHERE id = ?`,
		p.Name, p.TotalFee.MinorUnits(), string(p.ID))
	if err != nil {
		return err
	}
	return requireRow(res, billing.ErrPromotionNotFound)
}

func (q queries) DeletePromotion(ctx context.Context, id billing.PromotionID) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM promotions WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	return requireRow(res, billing.ErrPromotionNotFound)
}

// -----------------------------------------------------------------------------
// Students
// -----------------------------------------------------------------------------

func (q queries) CreateStudent(ctx context.Context, s billing.Student) (billing.Student, error) {
	if s.ID == "" {
		s.ID = billing.StudentID(uuid.NewString())
	}
	// Every new student starts PENDING; the status is owned by reconcile.
	s.Status = billing.StatusPending

	var promo, center any
	if s.PromotionID != "" {
		promo = string(s.PromotionID)
	}
	if s.CenterID != "" {
		center = string(s.CenterID)
	}
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO students (id, name, first_name, contact, status, promotion_id, center_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(s.ID), s.Name, s.FirstName, s.Contact, string(s.Status), promo, center)
	if err != nil {
		return billing.Student{}, err
	}
	return s, nil
}

func (q queries) GetStudent(ctx context.Context, id billing.StudentID) (billing.Student, error) {
	var s billing.Student
	var promo, center sql.NullString
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, first_name, contact, status, promotion_id, center_id
		 FROM students WHERE id = ?`, string(id)).
		Scan(&s.ID, &s.Name, &s.FirstName, &s.Contact, &s.Status, &promo, &center)
	if errors.Is(err, sql.ErrNoRows) {
		return billing.Student{}, billing.ErrStudentNotFound
	}
	if err != nil {
		return billing.Student{}, err
	}
	if promo.Valid {
		s.PromotionID = billing.PromotionID(promo.String)
	}
	if center.Valid {
		s.CenterID = billing.CenterID(center.String)
	}
	return s, nil
}

func (q queries) ListStudents(ctx context.Context) ([]billing.Student, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, first_name, contact, status, promotion_id, center_id
		 FROM students ORDER BY name, first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []billing.Student
	for rows.Next() {
		var s billing.Student
		var promo, center sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &s.FirstName, &s.Contact, &s.Status, &promo, &center); err != nil {
			return nil, err
		}
		if promo.Valid {
			s.PromotionID = billing.PromotionID(promo.String)
		}
		if center.Valid {
			s.CenterID = billing.CenterID(center.String)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateStudent writes identity fields and the promotion and center
// references. It deliberately does NOT touch the status column; that
// write belongs to SetStudentStatus alone.
func (q queries) UpdateStudent(ctx context.Context, s billing.Student) error {
	var promo, center any
	if s.PromotionID != "" {
		promo = string(s.PromotionID)
	}
	if s.CenterID != "" {
		center = string(s.CenterID)
	}
	res, err := q.db.ExecContext(ctx,
		`UPDATE students SET name = ?, first_name = ?, contact = ?, promotion_id = ?, center_id = ?
		 WHERE id = ?`,
		s.Name, s.FirstName, s.Contact, promo, center, string(s.ID))
	if err != nil {
		return err
	}
	return requireRow(res, billing.ErrStudentNotFound)
}

func (q queries) DeleteStudent(ctx context.Context, id billing.StudentID) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	return requireRow(res, billing.ErrStudentNotFound)
}

// -----------------------------------------------------------------------------
// Centers
// -----------------------------------------------------------------------------

func (q queries) CreateCenter(ctx context.Context, city string) (billing.Center, error) {
	c := billing.Center{ID: billing.CenterID(uuid.NewString()), City: city}
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO centers (id, city) VALUES (?, ?)`, string(c.ID), c.City)
	if err != nil {
		return billing.Center{}, err
	}
	return c, nil
}

func (q queries) GetCenter(ctx context.Context, id billing.CenterID) (billing.Center, error) {
	var c billing.Center
	err := q.db.QueryRowContext(ctx,
		`SELECT id, city FROM centers WHERE id = ?`, string(id)).
		Scan(&c.ID, &c.City)
	if errors.Is(err, sql.ErrNoRows) {
		return billing.Center{}, billing.ErrCenterNotFound
	}
	if err != nil {
		return billing.Center{}, err
	}
	return c, nil
}

func (q queries) ListCenters(ctx context.Context) ([]billing.Center, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, city FROM centers ORDER BY city`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []billing.Center
	for rows.Next() {
		var c billing.Center
		if err := rows.Scan(&c.ID, &c.City); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q queries) UpdateCenter(ctx context.Context, c billing.Center) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE centers SET city = ? WHERE id = ?`, c.City, string(c.ID))
	if err != nil {
		return err
	}
	return requireRow(res, billing.ErrCenterNotFound)
}

func (q queries) DeleteCenter(ctx context.Context, id billing.CenterID) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM centers WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	return requireRow(res, billing.ErrCenterNotFound)
}

func (q queries) StudentsByCenter(ctx context.Context, id billing.CenterID) ([]billing.StudentID, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id FROM students WHERE center_id = ? ORDER BY id`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []billing.StudentID
	for rows.Next() {
		var sid billing.StudentID
		if err := rows.Scan(&sid); err != nil {
			return nil, err
		}
		out = append(out, sid)
	}
	return out, rows.Err()
}

// -----------------------------------------------------------------------------
// Fees
// -----------------------------------------------------------------------------

func (q queries) CreateFee(ctx context.Context, f billing.Fee) (billing.Fee, error) {
	if f.ID == "" {
		f.ID = billing.FeeID(uuid.NewString())
	}
	var month any
	if f.Month != nil {
		month = f.Month.String()
	}
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO fees (id, student_id, fee_type, price, month) VALUES (?, ?, ?, ?, ?)`,
		string(f.ID), string(f.StudentID), string(f.Type), f.Price.MinorUnits(), month)
	if err != nil {
		return billing.Fee{}, err
	}
	return f, nil
}

func (q queries) GetFee(ctx context.Context, id billing.FeeID) (billing.Fee, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, student_id, fee_type, price, month FROM fees WHERE id = ?`, string(id))
	f, err := scanFee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return billing.Fee{}, billing.ErrFeeNotFound
	}
	return f, err
}

func (q queries) ListFeesByStudent(ctx context.Context, id billing.StudentID) ([]billing.Fee, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, student_id, fee_type, price, month
		 FROM fees WHERE student_id = ? ORDER BY fee_type, month, id`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []billing.Fee
	for rows.Next() {
		f, err := scanFee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (q queries) UpdateFee(ctx context.Context, f billing.Fee) error {
	var month any
	if f.Month != nil {
		month = f.Month.String()
	}
	res, err := q.db.ExecContext(ctx,
		`UPDATE fees SET fee_type = ?, price = ?, month = ? WHERE id = ?`,
		string(f.Type), f.Price.MinorUnits(), month, string(f.ID))
	if err != nil {
		return err
	}
	return requireRow(res, billing.ErrFeeNotFound)
}

// DeleteFee removes a fee; its linked payments go with it via the
// ON DELETE CASCADE constraint.
func (q queries) DeleteFee(ctx context.Context, id billing.FeeID) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM fees WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	return requireRow(res, billing.ErrFeeNotFound)
}

// -----------------------------------------------------------------------------
// Payments
// -----------------------------------------------------------------------------

func (q queries) CreatePayment(ctx context.Context, p billing.Payment) (billing.Payment, error) {
	if p.ID == "" {
		p.ID = billing.PaymentID(uuid.NewString())
	}
	var fee any
	if p.FeeID != "" {
		fee = string(p.FeeID)
	}
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO payments (id, student_id, fee_id, amount, month_label)
		 VALUES (?, ?, ?, ?, ?)`,
		string(p.ID), string(p.StudentID), fee, p.Amount.MinorUnits(), p.MonthLabel)
	if err != nil {
		return billing.Payment{}, err
	}
	return p, nil
}

func (q queries) GetPayment(ctx context.Context, id billing.PaymentID) (billing.Payment, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, student_id, fee_id, amount, month_label FROM payments WHERE id = ?`, string(id))
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return billing.Payment{}, billing.ErrPaymentNotFound
	}
	return p, err
}

func (q queries) ListPayments(ctx context.Context) ([]billing.Payment, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, student_id, fee_id, amount, month_label FROM payments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []billing.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (q queries) ListPaymentsByStudent(ctx context.Context, id billing.StudentID) ([]billing.Payment, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, student_id, fee_id, amount, month_label
		 FROM payments WHERE student_id = ? ORDER BY id`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []billing.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdatePayment writes amount and month label. The fee link and student
// are fixed at creation; re-targeting a payment is not a supported edit.
func (q queries) UpdatePayment(ctx context.Context, p billing.Payment) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE payments SET amount = ?, month_label = ? WHERE id = ?`,
		p.Amount.MinorUnits(), p.MonthLabel, string(p.ID))
	if err != nil {
		return err
	}
	return requireRow(res, billing.ErrPaymentNotFound)
}

func (q queries) DeletePayment(ctx context.Context, id billing.PaymentID) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	return requireRow(res, billing.ErrPaymentNotFound)
}

// -----------------------------------------------------------------------------
// billing.Repository
// -----------------------------------------------------------------------------

func (q queries) StudentBilling(ctx context.Context, id billing.StudentID) (billing.BillingSnapshot, error) {
	student, err := q.GetStudent(ctx, id)
	if err != nil {
		return billing.BillingSnapshot{}, err
	}

	payments, err := q.ListPaymentsByStudent(ctx, id)
	if err != nil {
		return billing.BillingSnapshot{}, err
	}

	var target billing.BillingTarget
	if student.PromotionID != "" {
		// A promotion member must not also own fee line items; refusing
		// here keeps mixed rows from silently vanishing into an
		// aggregate balance.
		var feeCount int
		err := q.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM fees WHERE student_id = ?`, string(id)).Scan(&feeCount)
		if err != nil {
			return billing.BillingSnapshot{}, err
		}
		if feeCount > 0 {
			return billing.BillingSnapshot{}, &billing.IntegrityError{StudentID: id,
				Detail: "student has both a promotion reference and fee line items"}
		}
		promo, err := q.GetPromotion(ctx, student.PromotionID)
		if err != nil {
			return billing.BillingSnapshot{}, err
		}
		target = billing.NewAggregateTarget(student.ID, promo)
	} else {
		fees, err := q.ListFeesByStudent(ctx, id)
		if err != nil {
			return billing.BillingSnapshot{}, err
		}
		target = billing.NewItemizedTarget(student.ID, fees)
	}

	return billing.BillingSnapshot{Student: student, Target: target, Payments: payments}, nil
}

func (q queries) SetStudentStatus(ctx context.Context, id billing.StudentID, status billing.Status) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE students SET status = ? WHERE id = ?`, string(status), string(id))
	if err != nil {
		return err
	}
	return requireRow(res, billing.ErrStudentNotFound)
}

func (q queries) StudentsByPromotion(ctx context.Context, id billing.PromotionID) ([]billing.StudentID, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id FROM students WHERE promotion_id = ? ORDER BY id`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []billing.StudentID
	for rows.Next() {
		var sid billing.StudentID
		if err := rows.Scan(&sid); err != nil {
			return nil, err
		}
		out = append(out, sid)
	}
	return out, rows.Err()
}

// -----------------------------------------------------------------------------
// Dashboard stats
// -----------------------------------------------------------------------------

// PromotionStat is one promotion's row in the dashboard summary.
type PromotionStat struct {
	Name         string
	StudentCount int
	TotalFee     billing.Amount
}

// DashboardStats is the aggregate view the dashboard page renders.
type DashboardStats struct {
	TotalStudents   int
	TotalRevenue    billing.Amount
	OverdueStudents int
	Promotions      []PromotionStat
}

func (q queries) Stats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats

	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`).
		Scan(&stats.TotalStudents); err != nil {
		return DashboardStats{}, err
	}

	var revenue sql.NullInt64
	if err := q.db.QueryRowContext(ctx, `SELECT SUM(amount) FROM payments`).
		Scan(&revenue); err != nil {
		return DashboardStats{}, err
	}
	stats.TotalRevenue = billing.NewAmount(revenue.Int64)

	if err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM students WHERE status = ?`, string(billing.StatusOverdue)).
		Scan(&stats.OverdueStudents); err != nil {
		return DashboardStats{}, err
	}

	rows, err := q.db.QueryContext(ctx, `
		SELECT p.name, p.total_fee, COUNT(s.id)
		FROM promotions p
		LEFT JOIN students s ON s.promotion_id = p.id
		GROUP BY p.id, p.name, p.total_fee`)
	if err != nil {
		return DashboardStats{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var row PromotionStat
		var fee int64
		if err := rows.Scan(&row.Name, &fee, &row.StudentCount); err != nil {
			return DashboardStats{}, err
		}
		row.TotalFee = billing.NewAmount(fee)
		stats.Promotions = append(stats.Promotions, row)
	}
	if err := rows.Err(); err != nil {
		return DashboardStats{}, err
	}
	sort.Slice(stats.Promotions, func(i, j int) bool {
		return stats.Promotions[i].Name < stats.Promotions[j].Name
	})
	return stats, nil
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFee(row rowScanner) (billing.Fee, error) {
	var f billing.Fee
	var price int64
	var month sql.NullString
	if err := row.Scan(&f.ID, &f.StudentID, &f.Type, &price, &month); err != nil {
		return billing.Fee{}, err
	}
	f.Price = billing.NewAmount(price)
	if month.Valid {
		m, err := billing.ParseMonth(month.String)
		if err != nil {
			return billing.Fee{}, err
		}
		f.Month = &m
	}
	return f, nil
}

func scanPayment(row rowScanner) (billing.Payment, error) {
	var p billing.Payment
	var amount int64
	var fee sql.NullString
	if err := row.Scan(&p.ID, &p.StudentID, &fee, &amount, &p.MonthLabel); err != nil {
		return billing.Payment{}, err
	}
	p.Amount = billing.NewAmount(amount)
	if fee.Valid {
		p.FeeID = billing.FeeID(fee.String)
	}
	return p, nil
}

func requireRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}
