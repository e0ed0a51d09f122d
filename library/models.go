package library

import "fmt"

// LoanPeriodDays is the number of days between checkout and due date.
const LoanPeriodDays = 14

// BookLocation is the shelf position of a book.
type BookLocation struct {
	Block   string `json:"block" yaml:"block"`
	Row     int    `json:"row" yaml:"row" validate:"gt=0"`
	Section string `json:"section" yaml:"section"`
}

// String renders the location as "Block A, Row 1, Section General".
func (l BookLocation) String() string {
	return fmt.Sprintf("Block %s, Row %d, Section %s", l.Block, l.Row, l.Section)
}

// DefaultLocation is where new books are shelved unless told otherwise.
var DefaultLocation = BookLocation{Block: "A", Row: 1, Section: "General"}

// Book is a catalog entry. ID is assigned by the store and never changes.
type Book struct {
	ID         string       `json:"id" yaml:"id"`
	Title      string       `json:"title" yaml:"title" validate:"notblank"`
	Author     string       `json:"author" yaml:"author" validate:"notblank"`
	Publisher  string       `json:"publisher" yaml:"publisher" validate:"notblank"`
	Year       int          `json:"year" yaml:"year"`
	ISBN       string       `json:"isbn" yaml:"isbn" validate:"notblank"`
	Location   BookLocation `json:"location" yaml:"location"`
	Status     BookStatus   `json:"status" yaml:"status" validate:"bookstatus"`
	CoverImage string       `json:"coverImage,omitempty" yaml:"coverImage,omitempty" validate:"omitempty,url"`
}

// User is a registered library patron or staff member.
type User struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name" validate:"notblank"`
	Email       string   `json:"email" yaml:"email" validate:"notblank,emailshape"`
	MemberSince Date     `json:"memberSince" yaml:"memberSince"`
	Role        UserRole `json:"role" yaml:"role" validate:"userrole"`
}

// Loan links one book to one user for a period. BookID and UserID are soft
// references: the loan survives deletion of either referent.
type Loan struct {
	ID           string     `json:"id" yaml:"id"`
	BookID       string     `json:"bookId" yaml:"bookId"`
	UserID       string     `json:"userId" yaml:"userId"`
	CheckoutDate Date       `json:"checkoutDate" yaml:"checkoutDate"`
	DueDate      Date       `json:"dueDate" yaml:"dueDate"`
	ReturnDate   *Date      `json:"returnDate,omitempty" yaml:"returnDate,omitempty"`
	Status       LoanStatus `json:"status" yaml:"status"`
}

// SearchFilters narrows a book search. Zero values mean "no filter":
// empty Query, empty Status and Year 0 are ignored.
type SearchFilters struct {
	Query  string
	Field  SearchField
	Status BookStatus
	Year   int
}

// Snapshot is the complete persisted library state.
type Snapshot struct {
	Books []Book `json:"books" yaml:"books"`
	Users []User `json:"users" yaml:"users"`
	Loans []Loan `json:"loans" yaml:"loans"`
	Theme Theme  `json:"theme" yaml:"theme"`
}
