package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	_ "github.com/mattn/go-sqlite3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrLocked is returned when another process already owns the database.
var ErrLocked = errors.New("library database is in use by another process")

// Slot selects persisted collections. Values combine with |.
type Slot uint8

const (
	SlotBooks Slot = 1 << iota
	SlotUsers
	SlotLoans
	SlotTheme

	AllSlots = SlotBooks | SlotUsers | SlotLoans | SlotTheme
)

// Storage keys, one row per slot.
const (
	booksKey = "library_books"
	usersKey = "library_users"
	loansKey = "library_loans"
	themeKey = "library_theme"
)

// Persistence loads the whole library once and replaces whole slots on save.
type Persistence interface {
	Load() (Snapshot, error)
	Save(snap Snapshot, slots Slot) error
}

// lockWait bounds how long NewDatabase waits for the owner lock.
var lockWait = 3 * time.Second

// Database is the SQLite-backed Persistence. It holds an exclusive file lock
// for its lifetime so only one process mutates the library at a time.
type Database struct {
	db   *sqlx.DB
	lock *flock.Flock

	saveSlotStmt *sqlx.Stmt
}

// NewDatabase opens (or creates) the SQLite database at dbPath, takes the
// owner lock, applies schema migrations and prepares statements.
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	lock := flock.New(LockPath(dbPath))
	ctx, cancel := context.WithTimeout(context.Background(), lockWait)
	defer cancel()
	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	database := &Database{db: db, lock: lock}
	if err := database.prepareStatements(); err != nil {
		db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return database, nil
}

// LockPath is the owner lock file guarding the database at dbPath.
func LockPath(dbPath string) string { return dbPath + ".lock" }

// Close releases prepared statements, the DB and the owner lock.
func (d *Database) Close() error {
	if d.saveSlotStmt != nil {
		d.saveSlotStmt.Close()
	}
	err := d.db.Close()
	if uerr := d.lock.Unlock(); uerr != nil && err == nil {
		err = fmt.Errorf("release lock: %w", uerr)
	}
	return err
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sqlx.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.Get(&current, `SELECT value FROM meta WHERE key='schema_version';`)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS slots (
            key TEXT PRIMARY KEY,
            value TEXT NOT NULL,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}

func (d *Database) prepareStatements() error {
	var err error
	d.saveSlotStmt, err = d.db.Preparex(`INSERT INTO slots(key,value,updated_at) VALUES(?,?,?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`)
	return err
}

// ---------------------------------------------------------------------------
// Slots
// ---------------------------------------------------------------------------

type slotRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// Load reads every slot. Missing slots yield empty collections and the
// light theme.
func (d *Database) Load() (Snapshot, error) {
	var rows []slotRow
	if err := d.db.Select(&rows, `SELECT key, value FROM slots`); err != nil {
		return Snapshot{}, fmt.Errorf("load slots: %w", err)
	}

	snap := Snapshot{Books: []Book{}, Users: []User{}, Loans: []Loan{}, Theme: ThemeLight}
	for _, r := range rows {
		var err error
		switch r.Key {
		case booksKey:
			err = json.UnmarshalFromString(r.Value, &snap.Books)
		case usersKey:
			err = json.UnmarshalFromString(r.Value, &snap.Users)
		case loansKey:
			err = json.UnmarshalFromString(r.Value, &snap.Loans)
		case themeKey:
			if t := Theme(r.Value); t.Valid() {
				snap.Theme = t
			}
		}
		if err != nil {
			return Snapshot{}, fmt.Errorf("decode %s: %w", r.Key, err)
		}
	}
	return snap, nil
}

// Save replaces the selected slots with the contents of snap in a single
// transaction.
func (d *Database) Save(snap Snapshot, slots Slot) error {
	values := map[string]string{}
	encode := func(key string, v any) error {
		s, err := json.MarshalToString(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		values[key] = s
		return nil
	}

	if slots&SlotBooks != 0 {
		if err := encode(booksKey, nonNil(snap.Books)); err != nil {
			return err
		}
	}
	if slots&SlotUsers != 0 {
		if err := encode(usersKey, nonNil(snap.Users)); err != nil {
			return err
		}
	}
	if slots&SlotLoans != 0 {
		if err := encode(loansKey, nonNil(snap.Loans)); err != nil {
			return err
		}
	}
	if slots&SlotTheme != 0 {
		values[themeKey] = string(snap.Theme)
	}
	if len(values) == 0 {
		return nil
	}

	tx, err := d.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt := tx.Stmtx(d.saveSlotStmt)
	now := time.Now().UTC()
	for key, value := range values {
		if _, err := stmt.Exec(key, value, now); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return tx.Commit()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (s Slot) String() string {
	var names []string
	for _, n := range []struct {
		slot Slot
		name string
	}{{SlotBooks, "books"}, {SlotUsers, "users"}, {SlotLoans, "loans"}, {SlotTheme, "theme"}} {
		if s&n.slot != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "+")
}
