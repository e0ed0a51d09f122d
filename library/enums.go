package library

import "fmt"

// BookStatus is the circulation state of a book.
type BookStatus string

const (
	BookAvailable   BookStatus = "available"
	BookBorrowed    BookStatus = "borrowed"
	BookReserved    BookStatus = "reserved"
	BookMaintenance BookStatus = "maintenance"
)

// BookStatuses lists every BookStatus in display order.
var BookStatuses = []BookStatus{BookAvailable, BookBorrowed, BookReserved, BookMaintenance}

func (s BookStatus) Valid() bool {
	switch s {
	case BookAvailable, BookBorrowed, BookReserved, BookMaintenance:
		return true
	}
	return false
}

// Label is the human readable form of s.
func (s BookStatus) Label() string {
	switch s {
	case BookAvailable:
		return "Available"
	case BookBorrowed:
		return "Borrowed"
	case BookReserved:
		return "Reserved"
	case BookMaintenance:
		return "Under Maintenance"
	}
	return "Unknown Status"
}

func (s *BookStatus) UnmarshalText(b []byte) error {
	v := BookStatus(b)
	if !v.Valid() {
		return fmt.Errorf("unknown book status %q", string(b))
	}
	*s = v
	return nil
}

// UserRole describes a user's function in the library. Roles are informational.
type UserRole string

const (
	RoleMember    UserRole = "member"
	RoleLibrarian UserRole = "librarian"
	RoleAdmin     UserRole = "admin"
)

var UserRoles = []UserRole{RoleMember, RoleLibrarian, RoleAdmin}

func (r UserRole) Valid() bool {
	switch r {
	case RoleMember, RoleLibrarian, RoleAdmin:
		return true
	}
	return false
}

func (r UserRole) Label() string {
	switch r {
	case RoleMember:
		return "Member"
	case RoleLibrarian:
		return "Librarian"
	case RoleAdmin:
		return "Admin"
	}
	return "Unknown Role"
}

func (r *UserRole) UnmarshalText(b []byte) error {
	v := UserRole(b)
	if !v.Valid() {
		return fmt.Errorf("unknown user role %q", string(b))
	}
	*r = v
	return nil
}

// LoanStatus is the state of a loan. Returned is terminal.
type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanOverdue  LoanStatus = "overdue"
	LoanReturned LoanStatus = "returned"
)

var LoanStatuses = []LoanStatus{LoanActive, LoanOverdue, LoanReturned}

func (s LoanStatus) Valid() bool {
	switch s {
	case LoanActive, LoanOverdue, LoanReturned:
		return true
	}
	return false
}

// Open reports whether the loan still holds its book.
func (s LoanStatus) Open() bool {
	switch s {
	case LoanActive, LoanOverdue:
		return true
	case LoanReturned:
		return false
	}
	return false
}

func (s LoanStatus) Label() string {
	switch s {
	case LoanActive:
		return "Active"
	case LoanOverdue:
		return "Overdue"
	case LoanReturned:
		return "Returned"
	}
	return "Unknown Status"
}

func (s *LoanStatus) UnmarshalText(b []byte) error {
	v := LoanStatus(b)
	if !v.Valid() {
		return fmt.Errorf("unknown loan status %q", string(b))
	}
	*s = v
	return nil
}

// SearchField selects which book fields a text query is matched against.
// The empty value behaves like FieldAll.
type SearchField string

const (
	FieldAll       SearchField = "all"
	FieldTitle     SearchField = "title"
	FieldAuthor    SearchField = "author"
	FieldPublisher SearchField = "publisher"
	FieldISBN      SearchField = "isbn"
)

var SearchFields = []SearchField{FieldAll, FieldTitle, FieldAuthor, FieldPublisher, FieldISBN}

func (f SearchField) Valid() bool {
	switch f {
	case "", FieldAll, FieldTitle, FieldAuthor, FieldPublisher, FieldISBN:
		return true
	}
	return false
}

// Theme is the persisted display preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark:
		return true
	}
	return false
}

// Toggled returns the opposite theme.
func (t Theme) Toggled() Theme {
	switch t {
	case ThemeDark:
		return ThemeLight
	case ThemeLight:
		return ThemeDark
	}
	return ThemeLight
}
