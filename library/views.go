package library

// Placeholders shown when a loan refers to a deleted book or user.
const (
	UnknownBook   = "Unknown Book"
	UnknownAuthor = "Unknown Author"
	UnknownUser   = "Unknown User"
)

// LoanView is a loan with its soft references resolved for display.
type LoanView struct {
	Loan `yaml:",inline"`

	BookTitle  string `json:"bookTitle" yaml:"bookTitle"`
	BookAuthor string `json:"bookAuthor" yaml:"bookAuthor"`
	UserName   string `json:"userName" yaml:"userName"`
}

// DescribeLoans resolves each loan's book and user, substituting placeholders
// for referents that no longer exist.
func DescribeLoans(books []Book, users []User, loans []Loan) []LoanView {
	bookByID := make(map[string]Book, len(books))
	for _, b := range books {
		bookByID[b.ID] = b
	}
	userByID := make(map[string]User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	views := make([]LoanView, 0, len(loans))
	for _, l := range loans {
		v := LoanView{Loan: l, BookTitle: UnknownBook, BookAuthor: UnknownAuthor, UserName: UnknownUser}
		if b, ok := bookByID[l.BookID]; ok {
			v.BookTitle, v.BookAuthor = b.Title, b.Author
		}
		if u, ok := userByID[l.UserID]; ok {
			v.UserName = u.Name
		}
		views = append(views, v)
	}
	return views
}

// UserLoanSummary splits a user's loans into current and returned ones.
type UserLoanSummary struct {
	Current  []Loan `json:"current" yaml:"current"`
	Returned []Loan `json:"returned" yaml:"returned"`
	Overdue  int    `json:"overdue" yaml:"overdue"`
}

func SummarizeUserLoans(loans []Loan) UserLoanSummary {
	var sum UserLoanSummary
	for _, l := range loans {
		switch l.Status {
		case LoanActive:
			sum.Current = append(sum.Current, l)
		case LoanOverdue:
			sum.Current = append(sum.Current, l)
			sum.Overdue++
		case LoanReturned:
			sum.Returned = append(sum.Returned, l)
		}
	}
	return sum
}

// firstN returns at most n leading elements of s.
func firstN[T any](s []T, n int) []T {
	if n < 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
