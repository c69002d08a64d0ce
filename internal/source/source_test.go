package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, src Source) []string {
	t.Helper()
	var out []string
	err := src.Each(context.Background(), func(item []byte) error {
		out = append(out, string(item))
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestTokenize(t *testing.T) {
	var words []string
	err := Tokenize("Hello, WORLD! it's déjà-vu_42 ...", func(w string) error {
		words = append(words, w)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"hello", "world", "it", "s", "déjà", "vu_42"}, words)

	stop := errors.New("stop")
	err = Tokenize("a b c", func(string) error { return stop })
	require.ErrorIs(t, err, stop)
}

func TestLines(t *testing.T) {
	require.Equal(t, []string{"a", "b", "a"}, collect(t, Lines{"a", "b", "a"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Lines{"a"}.Each(ctx, func([]byte) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("The quick brown fox\njumps over the lazy dog.\n\nTHE END\n"), 0o600))

	src := NewFile(path)
	require.Equal(t, path, src.Name())
	require.Equal(t, []string{
		"the", "quick", "brown", "fox",
		"jumps", "over", "the", "lazy", "dog",
		"the", "end",
	}, collect(t, src))
}

func TestFile_Missing(t *testing.T) {
	err := NewFile(filepath.Join(t.TempDir(), "nope.txt")).Each(context.Background(), func([]byte) error { return nil })
	require.ErrorIs(t, err, os.ErrNotExist)
}

func newTestDB(t *testing.T, values ...any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlx.Connect("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	db.MustExec(`CREATE TABLE posts (id INTEGER PRIMARY KEY, body TEXT)`)
	for _, v := range values {
		db.MustExec(`INSERT INTO posts (body) VALUES (?)`, v)
	}
	return path
}

func TestSQLite(t *testing.T) {
	path := newTestDB(t, "Hello world", nil, "", "hello again", "one more row", "World")

	for _, batch := range []int{1, 2, 5, 1000} {
		src, err := OpenSQLite(path, "posts", "body", batch)
		require.NoError(t, err)
		require.Equal(t, "posts.body", src.Name())
		require.Equal(t, []string{"hello", "world", "hello", "again", "one", "more", "row", "world"}, collect(t, src), "batch %d", batch)
		require.NoError(t, src.Close())
	}
}

func TestSQLite_RowidOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ordered.db")
	db, err := sqlx.Connect("sqlite", path)
	require.NoError(t, err)
	db.MustExec(`CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)`)
	db.MustExec(`CREATE INDEX notes_body ON notes (body)`)
	for _, row := range []struct {
		id   int
		body string
	}{{5, "echo"}, {1, "zulu"}, {3, "alpha"}, {2, "mike"}, {4, "bravo"}} {
		db.MustExec(`INSERT INTO notes (id, body) VALUES (?, ?)`, row.id, row.body)
	}
	require.NoError(t, db.Close())

	src, err := OpenSQLite(path, "notes", "body", 2)
	require.NoError(t, err)
	defer src.Close()
	require.Equal(t, []string{"zulu", "mike", "alpha", "bravo", "echo"}, collect(t, src))
}

func TestSQLite_InvalidIdentifier(t *testing.T) {
	path := newTestDB(t)
	_, err := OpenSQLite(path, "posts; DROP TABLE posts", "body", 0)
	require.ErrorIs(t, err, ErrInvalidIdentifier)
	_, err = OpenSQLite(path, "posts", `body"`, 0)
	require.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestSQLite_MissingTable(t *testing.T) {
	src, err := OpenSQLite(newTestDB(t), "comments", "body", 0)
	require.NoError(t, err)
	defer src.Close()
	require.Error(t, src.Each(context.Background(), func([]byte) error { return nil }))
}
