package library

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// RecentOverdueLimit is how many overdue loans the dashboard lists.
const RecentOverdueLimit = 5

// LibraryManager is the library engine: an in-memory Store seeded from a
// Persistence at startup and saved back after every change.
type LibraryManager struct {
	mu     sync.Mutex
	store  *Store
	p      Persistence
	closer io.Closer
	log    *slog.Logger
}

// Option configures a LibraryManager.
type Option func(*managerOptions)

type managerOptions struct {
	now   func() time.Time
	newID IDGenerator
	log   *slog.Logger
}

// WithClock sets the source of "today".
func WithClock(now func() time.Time) Option {
	return func(o *managerOptions) { o.now = now }
}

// WithIDGenerator sets how new entity ids are produced.
func WithIDGenerator(g IDGenerator) Option {
	return func(o *managerOptions) { o.newID = g }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *managerOptions) { o.log = l }
}

// NewLibraryManager opens (or creates) the SQLite database at dbPath.
func NewLibraryManager(dbPath string, opts ...Option) (*LibraryManager, error) {
	db, err := NewDatabase(dbPath)
	if err != nil {
		return nil, err
	}
	lm, err := NewManager(db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	lm.closer = db
	return lm, nil
}

// NewManager loads every slot from p and sweeps overdue loans. A nil p gives
// an engine that keeps state in memory only.
func NewManager(p Persistence, opts ...Option) (*LibraryManager, error) {
	o := managerOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	lm := &LibraryManager{store: NewStore(o.now, o.newID), p: p, log: o.log}
	if p != nil {
		snap, err := p.Load()
		if err != nil {
			return nil, fmt.Errorf("load library: %w", err)
		}
		lm.store.Seed(snap)
	}
	if lm.store.RefreshOverdue() {
		lm.log.Debug("overdue loans flagged on load")
	}
	return lm, nil
}

// Close closes the underlying database, if the manager opened one.
func (lm *LibraryManager) Close() error {
	if lm.closer == nil {
		return nil
	}
	return lm.closer.Close()
}

// mutate runs fn against the store and persists the touched slots. If fn or
// the save fails the store is put back exactly as it was.
func (lm *LibraryManager) mutate(slots Slot, fn func(s *Store) error) error {
	before := lm.store.Snapshot()
	if err := fn(lm.store); err != nil {
		return err
	}
	if slots&SlotLoans != 0 {
		lm.store.RefreshOverdue()
	}
	if lm.p == nil {
		return nil
	}
	if err := lm.p.Save(lm.store.Snapshot(), slots); err != nil {
		lm.store.Seed(before)
		lm.log.Warn("save failed, changes rolled back", "slots", slots, "err", err)
		return fmt.Errorf("save library: %w", err)
	}
	lm.log.Debug("saved", "slots", slots)
	return nil
}

// observe returns the store after re-deriving overdue loans.
func (lm *LibraryManager) observe() *Store {
	lm.store.RefreshOverdue()
	return lm.store
}

// ------------------ Book helpers ------------------

func (lm *LibraryManager) AddBook(b Book) (string, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var id string
	err := lm.mutate(SlotBooks, func(s *Store) (err error) {
		id, err = s.AddBook(b)
		return err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (lm *LibraryManager) UpdateBook(b Book) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.mutate(SlotBooks, func(s *Store) error { return s.UpdateBook(b) })
}

func (lm *LibraryManager) RemoveBook(id string) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.mutate(SlotBooks, func(s *Store) error {
		s.RemoveBook(id)
		return nil
	})
}

func (lm *LibraryManager) GetBook(id string) (Book, bool) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.store.BookByID(id)
}

func (lm *LibraryManager) GetAllBooks() []Book {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.store.Books()
}

// ------------------ User helpers ------------------

func (lm *LibraryManager) AddUser(u User) (string, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var id string
	err := lm.mutate(SlotUsers, func(s *Store) (err error) {
		id, err = s.AddUser(u)
		return err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (lm *LibraryManager) UpdateUser(u User) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.mutate(SlotUsers, func(s *Store) error { return s.UpdateUser(u) })
}

func (lm *LibraryManager) RemoveUser(id string) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.mutate(SlotUsers, func(s *Store) error {
		s.RemoveUser(id)
		return nil
	})
}

func (lm *LibraryManager) GetUser(id string) (User, bool) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.store.UserByID(id)
}

func (lm *LibraryManager) GetAllUsers() []User {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.store.Users()
}

// ------------------ Circulation ------------------

// CheckoutBook lends bookID to userID and returns the loan id.
func (lm *LibraryManager) CheckoutBook(bookID, userID string) (string, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var loanID string
	err := lm.mutate(SlotBooks|SlotLoans, func(s *Store) (err error) {
		loanID, err = s.Checkout(bookID, userID)
		return err
	})
	if err != nil {
		return "", err
	}
	lm.log.Info("book checked out", "book", bookID, "user", userID, "loan", loanID)
	return loanID, nil
}

// ReturnBook closes loanID and frees its book.
func (lm *LibraryManager) ReturnBook(loanID string) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if err := lm.mutate(SlotBooks|SlotLoans, func(s *Store) error { return s.ReturnBook(loanID) }); err != nil {
		return err
	}
	lm.log.Info("book returned", "loan", loanID)
	return nil
}

func (lm *LibraryManager) GetLoan(id string) (Loan, bool) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.observe().LoanByID(id)
}

// GetAllLoans returns every loan with overdue status up to date.
func (lm *LibraryManager) GetAllLoans() []Loan {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.observe().Loans()
}

func (lm *LibraryManager) GetUserLoans(userID string) []Loan {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.observe().UserLoans(userID)
}

func (lm *LibraryManager) GetBookLoans(bookID string) []Loan {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.observe().BookLoans(bookID)
}

func (lm *LibraryManager) GetOverdueLoans() []Loan {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.observe().OverdueLoans()
}

func (lm *LibraryManager) GetActiveLoans() []Loan {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.observe().ActiveLoans()
}

// ------------------ Derived views ------------------

// SearchBooks filters the current catalog.
func (lm *LibraryManager) SearchBooks(f SearchFilters) []Book {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return Search(lm.store.books, f)
}

// GetLibraryStats computes the dashboard counters from current state.
func (lm *LibraryManager) GetLibraryStats() LibraryStats {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	s := lm.observe()
	return ComputeStats(s.books, s.users, s.loans)
}

// DescribeLoans resolves the given loans against the current catalog and roster.
func (lm *LibraryManager) DescribeLoans(loans []Loan) []LoanView {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return DescribeLoans(lm.store.books, lm.store.users, loans)
}

// RecentOverdue lists up to RecentOverdueLimit overdue loans for the dashboard.
func (lm *LibraryManager) RecentOverdue() []LoanView {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	s := lm.observe()
	return DescribeLoans(s.books, s.users, firstN(s.OverdueLoans(), RecentOverdueLimit))
}

// ------------------ Theme ------------------

func (lm *LibraryManager) Theme() Theme {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.store.Theme()
}

func (lm *LibraryManager) SetTheme(t Theme) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.mutate(SlotTheme, func(s *Store) error {
		s.SetTheme(t)
		return nil
	})
}

// ToggleTheme flips between light and dark and returns the new theme.
func (lm *LibraryManager) ToggleTheme() (Theme, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	err := lm.mutate(SlotTheme, func(s *Store) error {
		s.SetTheme(s.Theme().Toggled())
		return nil
	})
	return lm.store.Theme(), err
}

// Export returns the full library state with overdue status up to date.
func (lm *LibraryManager) Export() Snapshot {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.observe().Snapshot()
}
