package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// The service layer's transactional behavior is tested against a
// scripted database/sql driver: each test declares the statements it
// expects, in order, with the rows or row counts they return. The fake
// records every statement plus commit/rollback calls, so tests can
// assert what was (and was not) written when a path aborts.

// step scripts one statement, matched by substring in declaration order.
type step struct {
	match        string
	cols         []string
	rows         [][]driver.Value
	rowsAffected int64
	err          error
}

type fakeDB struct {
	mu        sync.Mutex
	steps     []step
	pos       int
	executed  []string
	commits   int
	rollbacks int
}

func newFakeDB(steps ...step) (*sql.DB, *fakeDB) {
	f := &fakeDB{steps: steps}
	return sql.OpenDB(fakeConnector{f}), f
}

func (f *fakeDB) next(query string) (step, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = append(f.executed, query)
	if f.pos >= len(f.steps) {
		return step{}, fmt.Errorf("unscripted statement: %s", query)
	}
	s := f.steps[f.pos]
	f.pos++
	if !strings.Contains(query, s.match) {
		return step{}, fmt.Errorf("statement %q arrived where %q was scripted", query, s.match)
	}
	return s, nil
}

// ran reports whether any executed statement contained the fragment.
func (f *fakeDB) ran(fragment string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.executed {
		if strings.Contains(q, fragment) {
			return true
		}
	}
	return false
}

func (f *fakeDB) txCounts() (commits, rollbacks int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commits, f.rollbacks
}

type fakeConnector struct{ f *fakeDB }

func (c fakeConnector) Connect(context.Context) (driver.Conn, error) { return &fakeConn{f: c.f}, nil }
func (c fakeConnector) Driver() driver.Driver                        { return fakeDriver{c.f} }

type fakeDriver struct{ f *fakeDB }

func (d fakeDriver) Open(string) (driver.Conn, error) { return &fakeConn{f: d.f}, nil }

type fakeConn struct{ f *fakeDB }

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) {
	return nil, fmt.Errorf("prepared statements not scripted: %s", query)
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) Begin() (driver.Tx, error) { return &fakeTx{f: c.f}, nil }

func (c *fakeConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	return &fakeTx{f: c.f}, nil
}

func (c *fakeConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	s, err := c.f.next(query)
	if err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return &fakeRows{cols: s.cols, rows: s.rows}, nil
}

func (c *fakeConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	s, err := c.f.next(query)
	if err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return driver.RowsAffected(s.rowsAffected), nil
}

type fakeTx struct{ f *fakeDB }

func (t *fakeTx) Commit() error {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	t.f.commits++
	return nil
}

func (t *fakeTx) Rollback() error {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	t.f.rollbacks++
	return nil
}

type fakeRows struct {
	cols []string
	rows [][]driver.Value
	pos  int
}

func (r *fakeRows) Columns() []string { return r.cols }
func (r *fakeRows) Close() error      { return nil }

func (r *fakeRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}

// =============================================================================
// Row builders matching the repository scan orders
// =============================================================================

var (
	userCols     = []string{"id", "chat_token", "subscribed", "subscription_id", "created_at", "updated_at"}
	settingsCols = []string{"user_id", "subscription_id", "free_messages", "subscription_start", "subscription_end", "days_left", "auto_renew", "updated_at"}
	planCols     = []string{"id", "plan_type", "billing_cycle", "price", "max_messages", "created_at"}
	paymentCols  = []string{"id", "user_id", "subscription_id", "chat_token", "auto_renew", "card_last4", "card_token", "created_at", "updated_at"}
	messageCols  = []string{"id", "user_id", "chat_token", "question", "answer", "created_at"}
)

func userRow(id uuid.UUID, token string) []driver.Value {
	now := time.Now()
	return []driver.Value{id.String(), token, false, nil, now, now}
}

// unsubscribedSettingsRow has a NULL subscription id and the given
// free-message counter.
func unsubscribedSettingsRow(userID uuid.UUID, freeMessages int64) []driver.Value {
	return []driver.Value{userID.String(), nil, freeMessages, nil, nil, nil, false, time.Now()}
}

func planRow(id int64, planType, cycle, price, maxMessages string) []driver.Value {
	return []driver.Value{id, planType, cycle, price, maxMessages, time.Now()}
}

func paymentRow(userID uuid.UUID, planID int64, token, last4 string) []driver.Value {
	now := time.Now()
	return []driver.Value{uuid.NewString(), userID.String(), planID, token, true, last4, "tok_feedface", now, now}
}

func subscribedSettingsRow(userID uuid.UUID, planID, freeMessages, daysLeft int64) []driver.Value {
	now := time.Now()
	return []driver.Value{userID.String(), planID, freeMessages, now, now.AddDate(0, 0, int(daysLeft)), daysLeft, true, now}
}

func messageRow(userID uuid.UUID, token, question, answer string) []driver.Value {
	return []driver.Value{int64(1), userID.String(), token, question, answer, time.Now()}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
