package library

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fixedNow is the clock used by tests unless a test moves it.
var fixedNow = time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)

func clockAt(t time.Time) func() time.Time { return func() time.Time { return t } }

func seqIDs(prefix string) IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func newStore() *Store { return NewStore(clockAt(fixedNow), seqIDs("id-")) }

func sampleBook(title string) Book {
	return Book{
		Title:     title,
		Author:    "Frank Herbert",
		Publisher: "Chilton",
		Year:      1965,
		ISBN:      "978-0441013593",
		Location:  DefaultLocation,
		Status:    BookAvailable,
	}
}

func sampleUser(name string) User {
	return User{
		Name:        name,
		Email:       "reader@example.com",
		MemberSince: MustParseDate("2020-01-15"),
		Role:        RoleMember,
	}
}

func tempDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}
