package library

import "math"

// LibraryStats are the dashboard counters.
type LibraryStats struct {
	TotalBooks     int `json:"totalBooks" yaml:"totalBooks"`
	AvailableBooks int `json:"availableBooks" yaml:"availableBooks"`
	ActiveLoans    int `json:"activeLoans" yaml:"activeLoans"`
	OverdueLoans   int `json:"overdueLoans" yaml:"overdueLoans"`
	TotalUsers     int `json:"totalUsers" yaml:"totalUsers"`
}

// ComputeStats counts books, users and loans. Active loans include overdue ones.
func ComputeStats(books []Book, users []User, loans []Loan) LibraryStats {
	st := LibraryStats{TotalBooks: len(books), TotalUsers: len(users)}
	for _, b := range books {
		if b.Status == BookAvailable {
			st.AvailableBooks++
		}
	}
	for _, l := range loans {
		if l.Status.Open() {
			st.ActiveLoans++
		}
		if l.Status == LoanOverdue {
			st.OverdueLoans++
		}
	}
	return st
}

// Ratio returns num/den, or 0 when den is 0.
func Ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Percent returns num/den as a whole percentage rounded half away from zero,
// or 0 when den is 0.
func Percent(num, den int) int {
	return int(math.Round(Ratio(num, den) * 100))
}

// CheckedOutBooks is the number of books not currently available.
func (s LibraryStats) CheckedOutBooks() int { return s.TotalBooks - s.AvailableBooks }

// AvailabilityPercent is the share of the collection that is available.
func (s LibraryStats) AvailabilityPercent() int { return Percent(s.AvailableBooks, s.TotalBooks) }

// LoansPerUser is the number of open loans per registered user.
func (s LibraryStats) LoansPerUser() float64 { return Ratio(s.ActiveLoans, s.TotalUsers) }
