package library

import (
	"slices"
	"strings"
)

// Search returns the books matching f, preserving input order. books is not
// modified.
//
// Status and year are checked first and each can exclude a book on its own.
// A non-empty query must then be found, case-insensitively, in at least one
// of the fields selected by f.Field.
func Search(books []Book, f SearchFilters) []Book {
	if f.Query == "" && f.Status == "" && f.Year == 0 {
		return slices.Clone(books)
	}

	q := strings.ToLower(f.Query)
	out := make([]Book, 0, len(books))
	for _, b := range books {
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.Year != 0 && b.Year != f.Year {
			continue
		}
		if q != "" && !queryMatches(b, q, f.Field) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func queryMatches(b Book, q string, field SearchField) bool {
	for _, v := range searchedValues(b, field) {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

func searchedValues(b Book, field SearchField) []string {
	switch field {
	case FieldTitle:
		return []string{b.Title}
	case FieldAuthor:
		return []string{b.Author}
	case FieldPublisher:
		return []string{b.Publisher}
	case FieldISBN:
		return []string{b.ISBN}
	case FieldAll, "":
		return []string{b.Title, b.Author, b.Publisher, b.ISBN}
	}
	return nil
}
