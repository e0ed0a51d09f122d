package library

import "slices"

// Checkout lends an available book to a user and returns the new loan id.
// The loan and the book's borrowed status are recorded together.
func (s *Store) Checkout(bookID, userID string) (string, error) {
	bi := s.bookIndex(bookID)
	if bi < 0 {
		return "", &NotFoundError{Kind: "book", ID: bookID}
	}
	if s.userIndex(userID) < 0 {
		return "", &NotFoundError{Kind: "user", ID: userID}
	}
	if st := s.books[bi].Status; st != BookAvailable {
		return "", &InvalidStateError{
			Op:     "checkout book",
			ID:     bookID,
			Reason: "book is " + string(st) + ", not available",
		}
	}

	today := s.Today()
	loan := Loan{
		ID:           s.newID(),
		BookID:       bookID,
		UserID:       userID,
		CheckoutDate: today,
		DueDate:      today.AddDays(LoanPeriodDays),
		Status:       LoanActive,
	}
	s.loans = append(s.loans, loan)
	s.books[bi].Status = BookBorrowed
	return loan.ID, nil
}

// ReturnBook closes a loan. The book goes back to available if it is still
// marked borrowed; a deleted book does not prevent the return.
func (s *Store) ReturnBook(loanID string) error {
	li := s.loanIndex(loanID)
	if li < 0 {
		return &NotFoundError{Kind: "loan", ID: loanID}
	}
	loan := s.loans[li]
	if !loan.Status.Open() {
		return &InvalidStateError{Op: "return loan", ID: loanID, Reason: "book already returned"}
	}

	today := s.Today()
	loan.ReturnDate = &today
	loan.Status = LoanReturned
	s.loans[li] = loan

	if b, ok := s.BookByID(loan.BookID); ok && b.Status == BookBorrowed {
		s.setBookStatus(loan.BookID, BookAvailable)
	}
	return nil
}

// SweepOverdue returns loans with every active, unreturned loan whose due
// date is strictly before today marked overdue. The input is not modified.
func SweepOverdue(loans []Loan, today Date) []Loan {
	out := make([]Loan, len(loans))
	for i, l := range loans {
		if l.Status == LoanActive && l.ReturnDate == nil && l.DueDate.Before(today) {
			l.Status = LoanOverdue
		}
		out[i] = l
	}
	return out
}

// RefreshOverdue runs SweepOverdue over the stored loans and reports whether
// anything changed. The stored collection is only replaced on change.
func (s *Store) RefreshOverdue() bool {
	swept := SweepOverdue(s.loans, s.Today())
	if slices.Equal(swept, s.loans) {
		return false
	}
	s.loans = swept
	return true
}

func (s *Store) filterLoans(keep func(Loan) bool) []Loan {
	var out []Loan
	for _, l := range s.loans {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

// UserLoans returns every loan of userID, in store order.
func (s *Store) UserLoans(userID string) []Loan {
	return s.filterLoans(func(l Loan) bool { return l.UserID == userID })
}

// BookLoans returns every loan of bookID, in store order, even if the book
// has since been removed.
func (s *Store) BookLoans(bookID string) []Loan {
	return s.filterLoans(func(l Loan) bool { return l.BookID == bookID })
}

func (s *Store) OverdueLoans() []Loan {
	return s.filterLoans(func(l Loan) bool { return l.Status == LoanOverdue })
}

// ActiveLoans returns the loans that still hold their book (active or overdue).
func (s *Store) ActiveLoans() []Loan {
	return s.filterLoans(func(l Loan) bool { return l.Status.Open() })
}
