package library

import (
	"slices"
	"time"
)

// Store holds the books, users and loans of one library in insertion order.
// It is not safe for concurrent use; LibraryManager serialises access.
type Store struct {
	books []Book
	users []User
	loans []Loan
	theme Theme

	now   func() time.Time
	newID IDGenerator
}

// NewStore returns an empty store. A nil clock or generator selects
// time.Now and NewID.
func NewStore(now func() time.Time, newID IDGenerator) *Store {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = NewID
	}
	return &Store{now: now, newID: newID, theme: ThemeLight}
}

// Today is the current calendar day according to the store's clock.
func (s *Store) Today() Date { return DateOf(s.now()) }

// Seed replaces the store contents with snap.
func (s *Store) Seed(snap Snapshot) {
	s.books = slices.Clone(snap.Books)
	s.users = slices.Clone(snap.Users)
	s.loans = slices.Clone(snap.Loans)
	s.theme = snap.Theme
	if !s.theme.Valid() {
		s.theme = ThemeLight
	}
}

// Snapshot returns a copy of the store contents.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Books: slices.Clone(s.books),
		Users: slices.Clone(s.users),
		Loans: slices.Clone(s.loans),
		Theme: s.theme,
	}
}

// ---------------------------------------------------------------------------
// Books
// ---------------------------------------------------------------------------

// AddBook validates b, assigns it a fresh id and appends it. A new book has
// no loans, so it cannot start out borrowed.
func (s *Store) AddBook(b Book) (string, error) {
	if err := ValidateBook(b, s.Today()); err != nil {
		return "", err
	}
	if b.Status == BookBorrowed {
		return "", &ValidationError{Entity: "book", Fields: map[string]string{"status": "is set to borrowed by checkout"}}
	}
	b.ID = s.newID()
	s.books = append(s.books, b)
	return b.ID, nil
}

// UpdateBook replaces the book with b.ID in place. Unknown ids are ignored.
// A status change must agree with the book's loans: borrowed while a loan is
// open, anything else once it is closed.
func (s *Store) UpdateBook(b Book) error {
	if err := ValidateBook(b, s.Today()); err != nil {
		return err
	}
	i := s.bookIndex(b.ID)
	if i < 0 {
		return nil
	}
	if cur := s.books[i].Status; b.Status != cur {
		onLoan := s.hasOpenLoan(b.ID)
		switch {
		case onLoan && b.Status != BookBorrowed:
			return &InvalidStateError{Op: "update book", ID: b.ID, Reason: "book is on loan, return it before marking it " + string(b.Status)}
		case !onLoan && b.Status == BookBorrowed:
			return &InvalidStateError{Op: "update book", ID: b.ID, Reason: "book has no open loan, use checkout to lend it"}
		}
	}
	s.books[i] = b
	return nil
}

// RemoveBook deletes the book with id if present. Loans are kept.
func (s *Store) RemoveBook(id string) {
	s.books = slices.DeleteFunc(s.books, func(b Book) bool { return b.ID == id })
}

func (s *Store) BookByID(id string) (Book, bool) {
	if i := s.bookIndex(id); i >= 0 {
		return s.books[i], true
	}
	return Book{}, false
}

// Books returns a copy of the catalog in insertion order.
func (s *Store) Books() []Book { return slices.Clone(s.books) }

func (s *Store) bookIndex(id string) int {
	return slices.IndexFunc(s.books, func(b Book) bool { return b.ID == id })
}

func (s *Store) hasOpenLoan(bookID string) bool {
	return slices.ContainsFunc(s.loans, func(l Loan) bool { return l.BookID == bookID && l.Status.Open() })
}

func (s *Store) setBookStatus(id string, status BookStatus) {
	if i := s.bookIndex(id); i >= 0 {
		s.books[i].Status = status
	}
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (s *Store) AddUser(u User) (string, error) {
	if err := ValidateUser(u, s.Today()); err != nil {
		return "", err
	}
	u.ID = s.newID()
	s.users = append(s.users, u)
	return u.ID, nil
}

func (s *Store) UpdateUser(u User) error {
	if err := ValidateUser(u, s.Today()); err != nil {
		return err
	}
	if i := s.userIndex(u.ID); i >= 0 {
		s.users[i] = u
	}
	return nil
}

func (s *Store) RemoveUser(id string) {
	s.users = slices.DeleteFunc(s.users, func(u User) bool { return u.ID == id })
}

func (s *Store) UserByID(id string) (User, bool) {
	if i := s.userIndex(id); i >= 0 {
		return s.users[i], true
	}
	return User{}, false
}

func (s *Store) Users() []User { return slices.Clone(s.users) }

func (s *Store) userIndex(id string) int {
	return slices.IndexFunc(s.users, func(u User) bool { return u.ID == id })
}

// ---------------------------------------------------------------------------
// Loans
// ---------------------------------------------------------------------------

func (s *Store) LoanByID(id string) (Loan, bool) {
	if i := s.loanIndex(id); i >= 0 {
		return s.loans[i], true
	}
	return Loan{}, false
}

// Loans returns a copy of every loan as stored, without an overdue sweep.
func (s *Store) Loans() []Loan { return slices.Clone(s.loans) }

func (s *Store) loanIndex(id string) int {
	return slices.IndexFunc(s.loans, func(l Loan) bool { return l.ID == id })
}

// ---------------------------------------------------------------------------
// Theme
// ---------------------------------------------------------------------------

func (s *Store) Theme() Theme { return s.theme }

// SetTheme stores t; invalid themes fall back to light.
func (s *Store) SetTheme(t Theme) {
	if !t.Valid() {
		t = ThemeLight
	}
	s.theme = t
}
