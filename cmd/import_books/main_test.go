package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelfkeeper/library"
)

const sampleCatalog = `books:
  - title: Dune
    author: Frank Herbert
    publisher: Chilton
    isbn: "9780441013593"
    year: 1965
    location: {block: C, row: 2, section: Fiction}
  - title: The Dispossessed
    author: Ursula K. Le Guin
    publisher: Harper & Row
    isbn: "9780060125639"
    status: maintenance
  - title: ""
    author: Nobody
users:
  - name: Alice
    email: alice@example.com
    memberSince: 2020-01-15
  - name: Bob
    email: bob@example.com
    role: librarian
`

func writeCatalog(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestReadCatalogYAML(t *testing.T) {
	cat, err := readCatalog(writeCatalog(t, "catalog.yaml", sampleCatalog))
	require.NoError(t, err)
	require.Len(t, cat.Books, 3)
	require.Len(t, cat.Users, 2)
	assert.Equal(t, library.BookLocation{Block: "C", Row: 2, Section: "Fiction"}, cat.Books[0].Location)
	assert.Equal(t, library.BookMaintenance, cat.Books[1].Status)
	assert.Equal(t, library.MustParseDate("2020-01-15"), cat.Users[0].MemberSince)
	assert.Equal(t, library.RoleLibrarian, cat.Users[1].Role)
}

func TestReadCatalogJSON(t *testing.T) {
	body := `{"books":[{"title":"Dune","author":"Frank Herbert","publisher":"Chilton","isbn":"1","year":1965}]}`
	cat, err := readCatalog(writeCatalog(t, "catalog.json", body))
	require.NoError(t, err)
	require.Len(t, cat.Books, 1)
	assert.Equal(t, 1965, cat.Books[0].Year)
}

func TestReadCatalogRejectsUnknownStatus(t *testing.T) {
	_, err := readCatalog(writeCatalog(t, "bad.yaml", "books:\n  - title: X\n    status: lost\n"))
	assert.ErrorContains(t, err, "unknown book status")
}

func TestImportCatalog(t *testing.T) {
	cat, err := readCatalog(writeCatalog(t, "catalog.yaml", sampleCatalog))
	require.NoError(t, err)

	manager, err := library.NewManager(nil)
	require.NoError(t, err)

	today := library.MustParseDate("2024-05-10")
	var out bytes.Buffer
	require.NoError(t, importCatalog(&out, manager, cat, today))

	assert.Contains(t, out.String(), "Successfully imported: 4 entries")
	assert.Contains(t, out.String(), "Errors: 1")

	books := manager.GetAllBooks()
	require.Len(t, books, 2)
	assert.Equal(t, library.BookAvailable, books[0].Status)
	assert.Equal(t, library.DefaultLocation, books[1].Location)
	assert.Equal(t, 2024, books[1].Year)

	users := manager.GetAllUsers()
	require.Len(t, users, 2)
	assert.Equal(t, library.RoleMember, users[0].Role)
	assert.Equal(t, today, users[1].MemberSince)
}

func TestImportRejectsBorrowedBooks(t *testing.T) {
	manager, err := library.NewManager(nil)
	require.NoError(t, err)

	cat := catalog{Books: []library.Book{{
		Title: "Dune", Author: "Frank Herbert", Publisher: "Chilton", ISBN: "1", Year: 1965,
		Status: library.BookBorrowed,
	}}}
	var out bytes.Buffer
	err = importCatalog(&out, manager, cat, library.MustParseDate("2024-05-10"))
	assert.ErrorContains(t, err, "no entries imported")
	assert.Contains(t, out.String(), "Errors: 1")
	assert.Empty(t, manager.GetAllBooks())
}

func TestRemoveDatabaseRespectsOwnerLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	db, err := library.NewDatabase(path)
	require.NoError(t, err)

	var out bytes.Buffer
	require.ErrorIs(t, removeDatabase(&out, path), library.ErrLocked)
	assert.FileExists(t, path)

	require.NoError(t, db.Close())
	require.NoError(t, removeDatabase(&out, path))
	assert.NoFileExists(t, path)
	assert.Contains(t, out.String(), "Cleaning up existing database files...")
}
