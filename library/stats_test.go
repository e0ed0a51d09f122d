package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStatsEmptyLibrary(t *testing.T) {
	st := ComputeStats(nil, nil, nil)

	assert.Equal(t, LibraryStats{}, st)
	assert.Equal(t, 0, st.AvailabilityPercent())
	assert.Equal(t, 0.0, st.LoansPerUser())
	assert.Equal(t, 0, st.CheckedOutBooks())
}

func TestComputeStats(t *testing.T) {
	books := []Book{
		{Status: BookAvailable}, {Status: BookBorrowed}, {Status: BookBorrowed}, {Status: BookMaintenance},
	}
	users := []User{{}, {}}
	loans := []Loan{{Status: LoanActive}, {Status: LoanOverdue}, {Status: LoanReturned}}

	st := ComputeStats(books, users, loans)

	assert.Equal(t, LibraryStats{TotalBooks: 4, AvailableBooks: 1, ActiveLoans: 2, OverdueLoans: 1, TotalUsers: 2}, st)
	assert.Equal(t, 25, st.AvailabilityPercent())
	assert.Equal(t, 1.0, st.LoansPerUser())
	assert.Equal(t, 3, st.CheckedOutBooks())
}

func TestRatioAndPercent(t *testing.T) {
	assert.Equal(t, 0.0, Ratio(3, 0))
	assert.Equal(t, 0.5, Ratio(1, 2))
	assert.Equal(t, 0, Percent(5, 0))
	assert.Equal(t, 67, Percent(2, 3))
	assert.Equal(t, 50, Percent(1, 2))
}
