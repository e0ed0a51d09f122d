package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddBookAssignsIDAndKeepsOrder(t *testing.T) {
	s := newStore()

	b := sampleBook("Dune")
	b.ID = "ignored"
	id1, err := s.AddBook(b)
	require.NoError(t, err)
	id2, err := s.AddBook(sampleBook("Hyperion"))
	require.NoError(t, err)

	assert.Equal(t, "id-1", id1)
	assert.Equal(t, "id-2", id2)

	books := s.Books()
	require.Len(t, books, 2)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "Hyperion", books[1].Title)
}

func TestAddBookRejectsInvalidWithoutChange(t *testing.T) {
	s := newStore()
	b := sampleBook("")

	_, err := s.AddBook(b)
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, s.Books())
}

func TestUpdateBookKeepsPosition(t *testing.T) {
	s := newStore()
	id1, _ := s.AddBook(sampleBook("Dune"))
	_, _ = s.AddBook(sampleBook("Hyperion"))
	_, _ = s.AddBook(sampleBook("Solaris"))

	b, ok := s.BookByID(id1)
	require.True(t, ok)
	b.Title = "Dune Messiah"
	require.NoError(t, s.UpdateBook(b))

	books := s.Books()
	assert.Equal(t, []string{"Dune Messiah", "Hyperion", "Solaris"},
		[]string{books[0].Title, books[1].Title, books[2].Title})
}

func TestUpdateAndRemoveUnknownIDAreNoOps(t *testing.T) {
	s := newStore()
	_, _ = s.AddBook(sampleBook("Dune"))
	_, _ = s.AddUser(sampleUser("Ada"))

	ghost := sampleBook("Ghost")
	ghost.ID = "missing"
	require.NoError(t, s.UpdateBook(ghost))
	s.RemoveBook("missing")

	ghostUser := sampleUser("Nobody")
	ghostUser.ID = "missing"
	require.NoError(t, s.UpdateUser(ghostUser))
	s.RemoveUser("missing")

	assert.Len(t, s.Books(), 1)
	assert.Len(t, s.Users(), 1)
	_, ok := s.BookByID("missing")
	assert.False(t, ok)
}

func TestRemoveUser(t *testing.T) {
	s := newStore()
	id, err := s.AddUser(sampleUser("Ada"))
	require.NoError(t, err)
	_, _ = s.AddUser(sampleUser("Grace"))

	s.RemoveUser(id)

	users := s.Users()
	require.Len(t, users, 1)
	assert.Equal(t, "Grace", users[0].Name)
}

func TestUpdateUserValidates(t *testing.T) {
	s := newStore()
	id, _ := s.AddUser(sampleUser("Ada"))

	u, _ := s.UserByID(id)
	u.Email = "nope"
	require.ErrorIs(t, s.UpdateUser(u), ErrValidation)

	stored, _ := s.UserByID(id)
	assert.Equal(t, "reader@example.com", stored.Email)
}

func TestReturnedCollectionsAreCopies(t *testing.T) {
	s := newStore()
	_, _ = s.AddBook(sampleBook("Dune"))

	books := s.Books()
	books[0].Title = "changed"

	assert.Equal(t, "Dune", s.Books()[0].Title)
}

func TestSeedFallsBackToLightTheme(t *testing.T) {
	s := newStore()
	s.Seed(Snapshot{Theme: "sepia"})
	assert.Equal(t, ThemeLight, s.Theme())

	s.SetTheme(ThemeDark)
	assert.Equal(t, ThemeDark, s.Theme())
}
