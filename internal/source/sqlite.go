package source

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DefaultBatchSize is the number of rows fetched per query.
const DefaultBatchSize = 1000

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLite streams the words of a text column, one page of rows at a time.
type SQLite struct {
	db        *sqlx.DB
	table     string
	column    string
	batchSize int
}

// OpenSQLite opens the database at path and prepares to read column of
// table. The caller must Close the source.
func OpenSQLite(path, table, column string, batchSize int) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	s, err := NewSQLite(sqlx.NewDb(db, "sqlite"), table, column, batchSize)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLite reads column of table from an already open database.
func NewSQLite(db *sqlx.DB, table, column string, batchSize int) (*SQLite, error) {
	for _, ident := range []string{table, column} {
		if !identRe.MatchString(ident) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, ident)
		}
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &SQLite{db: db, table: table, column: column, batchSize: batchSize}, nil
}

// Each implements Source. Rows are paged in rowid order, so the table must
// have a rowid. NULL and empty values are skipped.
func (s *SQLite) Each(ctx context.Context, fn func([]byte) error) error {
	query := fmt.Sprintf(`SELECT "%s" FROM "%s" ORDER BY rowid LIMIT ? OFFSET ?`, s.column, s.table)
	for offset := 0; ; offset += s.batchSize {
		var rows []sql.NullString
		if err := s.db.SelectContext(ctx, &rows, query, s.batchSize, offset); err != nil {
			return fmt.Errorf("select %s.%s at offset %d: %w", s.table, s.column, offset, err)
		}
		for _, row := range rows {
			if !row.Valid || row.String == "" {
				continue
			}
			err := Tokenize(row.String, func(w string) error {
				return fn([]byte(w))
			})
			if err != nil {
				return err
			}
		}
		if len(rows) < s.batchSize {
			return nil
		}
	}
}

// Name implements Source.
func (s *SQLite) Name() string { return s.table + "." + s.column }

// Close closes the underlying database.
func (s *SQLite) Close() error { return s.db.Close() }
