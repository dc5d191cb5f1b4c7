package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	// Registers the sqlite3 database/sql driver.
	_ "github.com/mattn/go-sqlite3"

	"tableflip.dev/lifedots/pkg/week"
)

// SQLiteFile is the database file name inside the base path.
const SQLiteFile = "lifedots.db"

//go:embed schema/*.sql
var embedMigrations embed.FS

// OpenSQLite opens (creating if needed) the SQLite database under basePath
// and applies pending migrations.
func OpenSQLite(basePath string, opts ...Option) (Persistence, error) {
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	dsn := filepath.Join(basePath, SQLiteFile) + "?_busy_timeout=5000&_journal_mode=WAL"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	// One writer avoids SQLITE_BUSY between pooled connections.
	conn.SetMaxOpenConns(1)
	if err := Migrate(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &sqlitePersistence{db: conn, basePath: basePath, log: buildOptions(opts).log}, nil
}

// Migrate applies the embedded schema migrations to conn.
func Migrate(conn *sql.DB) error {
	if _, err := conn.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return fmt.Errorf("store: enable foreign keys: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("store: set goose dialect: %w", err)
	}

	if err := goose.Up(conn, "schema"); err != nil {
		return fmt.Errorf("store: run migrations: %w", err)
	}
	return nil
}

type sqlitePersistence struct {
	db       *sql.DB
	basePath string
	log      *zap.Logger
}

const selectWeek = `SELECT id, user_id, week_number, journal_text, reminders, created_at, updated_at FROM weeks`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWeek(row rowScanner) (*week.Record, error) {
	var (
		r         week.Record
		journal   sql.NullString
		reminders sql.NullString
	)
	if err := row.Scan(&r.ID, &r.UserID, &r.WeekNumber, &journal, &reminders, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if journal.Valid {
		r.JournalText = &journal.String
	}
	if reminders.Valid {
		r.Reminders = &reminders.String
	}
	return &r, nil
}

func (s *sqlitePersistence) GetWeek(ctx context.Context, userID string, number int) (*week.Record, error) {
	if userID == "" {
		return nil, errors.New("store: user id required")
	}
	row := s.db.QueryRowContext(ctx, selectWeek+` WHERE user_id = ? AND week_number = ?`, userID, number)
	r, err := scanWeek(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get week %d: %w", number, err)
	}
	return r, nil
}

func (s *sqlitePersistence) SaveWeek(ctx context.Context, r *week.Record) (*week.Record, error) {
	if r == nil || r.UserID == "" {
		return nil, errors.New("store: user id required")
	}
	created, updated := r.CreatedAt, r.UpdatedAt
	if created.IsZero() {
		created = time.Now()
	}
	if updated.IsZero() {
		updated = created
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO weeks (user_id, week_number, journal_text, reminders, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, week_number) DO UPDATE SET
    journal_text = excluded.journal_text,
    reminders = excluded.reminders,
    updated_at = excluded.updated_at`,
		r.UserID, r.WeekNumber, nullable(r.JournalText), nullable(r.Reminders), created.UTC(), updated.UTC())
	if err != nil {
		return nil, fmt.Errorf("store: save week %d: %w", r.WeekNumber, err)
	}
	return s.GetWeek(ctx, r.UserID, r.WeekNumber)
}

func (s *sqlitePersistence) ListWeeks(ctx context.Context, userID string) ([]*week.Record, error) {
	if userID == "" {
		return nil, errors.New("store: user id required")
	}
	rows, err := s.db.QueryContext(ctx, selectWeek+` WHERE user_id = ? ORDER BY week_number ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list weeks: %w", err)
	}
	defer rows.Close()

	all := make([]*week.Record, 0)
	for rows.Next() {
		r, err := scanWeek(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan week: %w", err)
		}
		all = append(all, r)
	}
	return all, rows.Err()
}

func (s *sqlitePersistence) GetUser(ctx context.Context, userID string) (*week.User, error) {
	if userID == "" {
		return nil, errors.New("store: user id required")
	}
	var (
		u     week.User
		birth sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, birth_date, created_at, updated_at FROM users WHERE id = ?`, userID).
		Scan(&u.ID, &birth, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get user: %w", err)
	}
	u.BirthDate = birth.String
	return &u, nil
}

func (s *sqlitePersistence) SaveUser(ctx context.Context, u *week.User) (*week.User, error) {
	if u == nil || u.ID == "" {
		return nil, errors.New("store: user id required")
	}
	created, updated := u.CreatedAt, u.UpdatedAt
	if created.IsZero() {
		created = time.Now()
	}
	if updated.IsZero() {
		updated = created
	}
	var birth any
	if u.BirthDate != "" {
		birth = u.BirthDate
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO users (id, birth_date, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    birth_date = excluded.birth_date,
    updated_at = excluded.updated_at`,
		u.ID, birth, created.UTC(), updated.UTC())
	if err != nil {
		return nil, fmt.Errorf("store: save user: %w", err)
	}
	return s.GetUser(ctx, u.ID)
}

// Watch reports any change to the database files as an invalidation since
// rows cannot be attributed from file activity.
func (s *sqlitePersistence) Watch(ctx context.Context) (<-chan Event, error) {
	return watchTree(ctx, s.basePath, s.log, func(path string) (Event, bool) {
		if !strings.HasPrefix(filepath.Base(path), SQLiteFile) {
			return Event{}, false
		}
		return Event{Type: EventWeeksInvalidated}, true
	})
}

func (s *sqlitePersistence) Close() error {
	return s.db.Close()
}

func nullable(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
