package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/iguales-labs/policykb-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/iguales-labs/policykb-cli/internal/core/domain"
	"github.com/iguales-labs/policykb-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.KBStore = (*Store)(nil)

// Store is a SQLite-backed KB document store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.policykb/data/policykb.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".policykb", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "policykb.db")

	// WAL mode for concurrent readers during loads
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveDocument stores or updates a document. Saving text with an
// existing content hash updates that row in place, keeping its ID.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.KBDocument) error {
	storedAt := doc.StoredAt
	if storedAt.IsZero() {
		storedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kb_documents (id, name, hash, text, updated_at, stored_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO UPDATE SET
			name = excluded.name,
			text = excluded.text,
			updated_at = excluded.updated_at,
			stored_at = excluded.stored_at
	`, doc.ID, doc.Name, doc.Hash, doc.Text, doc.UpdatedAt, storedAt)
	if err != nil {
		return fmt.Errorf("saving kb document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.KBDocument, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, hash, text, updated_at, stored_at
		FROM kb_documents WHERE id = ?
	`, id)
	return scanDocument(row)
}

// GetDocumentByHash retrieves a document by content hash.
func (s *Store) GetDocumentByHash(ctx context.Context, hash string) (*domain.KBDocument, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, hash, text, updated_at, stored_at
		FROM kb_documents WHERE hash = ?
	`, hash)
	return scanDocument(row)
}

// ListDocuments returns all stored documents, most recent first.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.KBDocument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, hash, text, updated_at, stored_at
		FROM kb_documents ORDER BY stored_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing kb documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.KBDocument
	for rows.Next() {
		var doc domain.KBDocument
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Hash, &doc.Text, &doc.UpdatedAt, &doc.StoredAt); err != nil {
			return nil, fmt.Errorf("scanning kb document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating kb documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes a document by ID.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kb_documents WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting kb document: %w", err)
	}
	return nil
}

func scanDocument(row *sql.Row) (*domain.KBDocument, error) {
	var doc domain.KBDocument
	err := row.Scan(&doc.ID, &doc.Name, &doc.Hash, &doc.Text, &doc.UpdatedAt, &doc.StoredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning kb document: %w", err)
	}
	return &doc, nil
}
