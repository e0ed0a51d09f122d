package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore(t *testing.T) (s *Store, bookID, userID string) {
	t.Helper()
	s = newStore()
	bookID, err := s.AddBook(sampleBook("Dune"))
	require.NoError(t, err)
	userID, err = s.AddUser(sampleUser("Ada"))
	require.NoError(t, err)
	return s, bookID, userID
}

// openLoans returns how many open loans reference bookID.
func openLoans(s *Store, bookID string) int {
	n := 0
	for _, l := range s.BookLoans(bookID) {
		if l.Status.Open() {
			n++
		}
	}
	return n
}

func TestCheckoutCreatesLoanAndBorrowsBook(t *testing.T) {
	s, bookID, userID := seededStore(t)

	loanID, err := s.Checkout(bookID, userID)
	require.NoError(t, err)

	book, _ := s.BookByID(bookID)
	assert.Equal(t, BookBorrowed, book.Status)

	loans := s.BookLoans(bookID)
	require.Len(t, loans, 1)
	loan := loans[0]
	assert.Equal(t, loanID, loan.ID)
	assert.Equal(t, userID, loan.UserID)
	assert.Equal(t, LoanActive, loan.Status)
	assert.Equal(t, DateOf(fixedNow), loan.CheckoutDate)
	assert.Equal(t, loan.CheckoutDate.AddDays(14), loan.DueDate)
	assert.Nil(t, loan.ReturnDate)
}

func TestCheckoutUnknownReferences(t *testing.T) {
	s, bookID, userID := seededStore(t)

	_, err := s.Checkout("nope", userID)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "book", nf.Kind)

	_, err = s.Checkout(bookID, "nope")
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "user", nf.Kind)

	assert.Empty(t, s.Loans())
	book, _ := s.BookByID(bookID)
	assert.Equal(t, BookAvailable, book.Status)
}

func TestCheckoutRequiresAvailableBook(t *testing.T) {
	for _, status := range []BookStatus{BookBorrowed, BookReserved, BookMaintenance} {
		t.Run(string(status), func(t *testing.T) {
			s, bookID, userID := seededStore(t)
			snap := s.Snapshot()
			snap.Books[0].Status = status
			s.Seed(snap)

			_, err := s.Checkout(bookID, userID)
			require.ErrorIs(t, err, ErrInvalidState)
			assert.Empty(t, s.Loans())

			after, _ := s.BookByID(bookID)
			assert.Equal(t, status, after.Status)
		})
	}
}

func TestReturnBook(t *testing.T) {
	s, bookID, userID := seededStore(t)
	loanID, err := s.Checkout(bookID, userID)
	require.NoError(t, err)

	require.NoError(t, s.ReturnBook(loanID))

	loan, _ := s.LoanByID(loanID)
	assert.Equal(t, LoanReturned, loan.Status)
	require.NotNil(t, loan.ReturnDate)
	assert.Equal(t, DateOf(fixedNow), *loan.ReturnDate)

	book, _ := s.BookByID(bookID)
	assert.Equal(t, BookAvailable, book.Status)

	err = s.ReturnBook(loanID)
	require.ErrorIs(t, err, ErrInvalidState)
	book, _ = s.BookByID(bookID)
	assert.Equal(t, BookAvailable, book.Status)
}

func TestReturnUnknownLoan(t *testing.T) {
	s := newStore()
	require.ErrorIs(t, s.ReturnBook("nope"), ErrNotFound)
}

func TestReturnOverdueLoan(t *testing.T) {
	s, bookID, userID := seededStore(t)
	loanID, _ := s.Checkout(bookID, userID)

	s.now = clockAt(fixedNow.AddDate(0, 0, 20))
	require.True(t, s.RefreshOverdue())
	loan, _ := s.LoanByID(loanID)
	require.Equal(t, LoanOverdue, loan.Status)

	require.NoError(t, s.ReturnBook(loanID))
	book, _ := s.BookByID(bookID)
	assert.Equal(t, BookAvailable, book.Status)
}

func TestReturnAfterBookDeleted(t *testing.T) {
	s, bookID, userID := seededStore(t)
	loanID, _ := s.Checkout(bookID, userID)
	s.RemoveBook(bookID)

	require.NoError(t, s.ReturnBook(loanID))
	loan, _ := s.LoanByID(loanID)
	assert.Equal(t, LoanReturned, loan.Status)
	assert.Len(t, s.BookLoans(bookID), 1)
}

func TestReturnLeavesManualStatusAlone(t *testing.T) {
	s, bookID, userID := seededStore(t)
	loanID, _ := s.Checkout(bookID, userID)

	// Data saved by an older release may hold a loaned book under maintenance.
	snap := s.Snapshot()
	snap.Books[0].Status = BookMaintenance
	s.Seed(snap)

	require.NoError(t, s.ReturnBook(loanID))
	after, _ := s.BookByID(bookID)
	assert.Equal(t, BookMaintenance, after.Status)
}

func TestBorrowedIffOneOpenLoan(t *testing.T) {
	s, bookID, userID := seededStore(t)
	otherID, _ := s.AddBook(sampleBook("Hyperion"))

	check := func() {
		for _, b := range s.Books() {
			n := openLoans(s, b.ID)
			assert.LessOrEqual(t, n, 1)
			assert.Equal(t, n == 1, b.Status == BookBorrowed, b.Title)
		}
	}

	check()
	l1, _ := s.Checkout(bookID, userID)
	check()
	_, _ = s.Checkout(otherID, userID)
	check()
	_, err := s.Checkout(bookID, userID)
	require.Error(t, err)
	check()
	require.NoError(t, s.ReturnBook(l1))
	check()
	_, err = s.Checkout(bookID, userID)
	require.NoError(t, err)
	check()

	// Hand edits cannot free a loaned book or lend one without a loan.
	b, _ := s.BookByID(bookID)
	for _, status := range []BookStatus{BookAvailable, BookReserved, BookMaintenance} {
		b.Status = status
		require.ErrorIs(t, s.UpdateBook(b), ErrInvalidState, status)
	}
	check()
	_, err = s.Checkout(bookID, userID)
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 1, openLoans(s, bookID))

	third, _ := s.AddBook(sampleBook("Solaris"))
	b, _ = s.BookByID(third)
	b.Status = BookBorrowed
	require.ErrorIs(t, s.UpdateBook(b), ErrInvalidState)
	check()

	b.Status = BookMaintenance
	require.NoError(t, s.UpdateBook(b))
	b.Status = BookAvailable
	require.NoError(t, s.UpdateBook(b))
	check()

	borrowed := sampleBook("Ubik")
	borrowed.Status = BookBorrowed
	_, err = s.AddBook(borrowed)
	require.ErrorIs(t, err, ErrValidation)
	check()

	st := ComputeStats(s.Books(), nil, s.Loans())
	assert.Equal(t, 1, st.AvailableBooks)
	assert.Equal(t, 2, st.ActiveLoans)
}

func TestUpdateBookOnLoanKeepsOtherEdits(t *testing.T) {
	s, bookID, userID := seededStore(t)
	_, err := s.Checkout(bookID, userID)
	require.NoError(t, err)

	b, _ := s.BookByID(bookID)
	b.Title = "Dune (1st ed.)"
	require.NoError(t, s.UpdateBook(b))

	after, _ := s.BookByID(bookID)
	assert.Equal(t, "Dune (1st ed.)", after.Title)
	assert.Equal(t, BookBorrowed, after.Status)
}

func TestSweepOverdue(t *testing.T) {
	today := MustParseDate("2024-05-10")
	returned := MustParseDate("2024-05-01")
	loans := []Loan{
		{ID: "past-due", DueDate: today.AddDays(-1), Status: LoanActive},
		{ID: "due-today", DueDate: today, Status: LoanActive},
		{ID: "returned", DueDate: today.AddDays(-5), ReturnDate: &returned, Status: LoanReturned},
		{ID: "already", DueDate: today.AddDays(-9), Status: LoanOverdue},
		{ID: "odd", DueDate: today.AddDays(-3), ReturnDate: &returned, Status: LoanActive},
	}
	input := append([]Loan(nil), loans...)

	swept := SweepOverdue(loans, today)

	assert.Equal(t, input, loans, "input must not be modified")
	want := []LoanStatus{LoanOverdue, LoanActive, LoanReturned, LoanOverdue, LoanActive}
	for i, l := range swept {
		assert.Equal(t, want[i], l.Status, l.ID)
	}
	assert.Equal(t, swept, SweepOverdue(swept, today))
}

func TestRefreshOverdueReportsChange(t *testing.T) {
	s, bookID, userID := seededStore(t)
	_, _ = s.Checkout(bookID, userID)

	assert.False(t, s.RefreshOverdue())

	s.now = clockAt(fixedNow.AddDate(0, 0, LoanPeriodDays))
	assert.False(t, s.RefreshOverdue(), "due today is not overdue")

	s.now = clockAt(fixedNow.AddDate(0, 0, LoanPeriodDays+1))
	assert.True(t, s.RefreshOverdue())
	assert.False(t, s.RefreshOverdue())
	assert.Len(t, s.OverdueLoans(), 1)
	assert.Len(t, s.ActiveLoans(), 1)
}

func TestLoanQueriesKeepStoreOrder(t *testing.T) {
	s := newStore()
	ada, _ := s.AddUser(sampleUser("Ada"))
	grace, _ := s.AddUser(sampleUser("Grace"))
	b1, _ := s.AddBook(sampleBook("Dune"))
	b2, _ := s.AddBook(sampleBook("Hyperion"))
	b3, _ := s.AddBook(sampleBook("Solaris"))

	l1, _ := s.Checkout(b1, ada)
	l2, _ := s.Checkout(b2, grace)
	l3, _ := s.Checkout(b3, ada)
	require.NoError(t, s.ReturnBook(l1))
	l4, _ := s.Checkout(b1, grace)

	ids := func(loans []Loan) []string {
		var out []string
		for _, l := range loans {
			out = append(out, l.ID)
		}
		return out
	}
	assert.Equal(t, []string{l1, l3}, ids(s.UserLoans(ada)))
	assert.Equal(t, []string{l2, l4}, ids(s.UserLoans(grace)))
	assert.Equal(t, []string{l1, l4}, ids(s.BookLoans(b1)))
	assert.Equal(t, []string{l2, l3, l4}, ids(s.ActiveLoans()))
	assert.Empty(t, s.OverdueLoans())
}
