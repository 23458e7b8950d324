package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/relist-labs/relist-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/relist-labs/relist-cli/internal/core/domain"
	"github.com/relist-labs/relist-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CatalogStore = (*Store)(nil)

// Store is a SQLite-backed catalog store holding the cached category
// tree and the built embedding corpus.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.relist/data/catalog.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".relist", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "catalog.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
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

// ReplaceTree atomically replaces the cached category tree.
func (s *Store) ReplaceTree(ctx context.Context, categories []domain.Category, treeVersion string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM categories"); err != nil {
		return fmt.Errorf("clearing categories: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO categories (id, name, path, depth, leaf, parent_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range categories {
		pathJSON, err := json.Marshal(c.Path)
		if err != nil {
			return fmt.Errorf("marshalling path for %s: %w", c.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.Name, string(pathJSON),
			c.Depth, boolToInt(c.Leaf), nullString(c.ParentID)); err != nil {
			return fmt.Errorf("inserting category %s: %w", c.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tree_meta (id, version, fetched_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET version = excluded.version, fetched_at = excluded.fetched_at
	`, treeVersion, time.Now().UTC()); err != nil {
		return fmt.Errorf("saving tree version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Tree returns all cached categories.
func (s *Store) Tree(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, path, depth, leaf, parent_id FROM categories
	`)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}
	return categories, nil
}

// TreeVersion returns the cached tree's version string, or empty.
func (s *Store) TreeVersion(ctx context.Context) (string, error) {
	var version string
	row := s.db.QueryRowContext(ctx, "SELECT version FROM tree_meta WHERE id = 1")
	if err := row.Scan(&version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("scanning tree version: %w", err)
	}
	return version, nil
}

// Category looks up one category by id.
func (s *Store) Category(ctx context.Context, id string) (domain.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, path, depth, leaf, parent_id FROM categories WHERE id = ?
	`, id)

	var c domain.Category
	var pathJSON string
	var leaf int
	var parentID sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &pathJSON, &c.Depth, &leaf, &parentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Category{}, domain.ErrNotFound
		}
		return domain.Category{}, fmt.Errorf("scanning category: %w", err)
	}
	if err := json.Unmarshal([]byte(pathJSON), &c.Path); err != nil {
		return domain.Category{}, fmt.Errorf("unmarshaling path: %w", err)
	}
	c.Leaf = leaf != 0
	c.ParentID = parentID.String
	return c, nil
}

// SaveCorpus atomically replaces the persisted corpus.
func (s *Store) SaveCorpus(ctx context.Context, info domain.CorpusInfo, records []domain.EmbeddingRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM corpus_embeddings"); err != nil {
		return fmt.Errorf("clearing corpus: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO corpus_embeddings (category_id, vector, source_text) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.CategoryID,
			float32SliceToBytes(rec.Vector), rec.SourceText); err != nil {
			return fmt.Errorf("inserting embedding %s: %w", rec.CategoryID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO corpus_meta (id, model_name, dimensions, tree_version, size, built_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			model_name = excluded.model_name,
			dimensions = excluded.dimensions,
			tree_version = excluded.tree_version,
			size = excluded.size,
			built_at = excluded.built_at
	`, info.ModelName, info.Dimensions, info.TreeVersion, info.Size, info.BuiltAt.UTC()); err != nil {
		return fmt.Errorf("saving corpus metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadCorpus returns the persisted corpus.
func (s *Store) LoadCorpus(ctx context.Context) (domain.CorpusInfo, []domain.EmbeddingRecord, error) {
	info, err := s.CorpusInfo(ctx)
	if err != nil {
		return domain.CorpusInfo{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id, vector, source_text FROM corpus_embeddings
	`)
	if err != nil {
		return domain.CorpusInfo{}, nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	records := make([]domain.EmbeddingRecord, 0, info.Size)
	for rows.Next() {
		var rec domain.EmbeddingRecord
		var blob []byte
		if err := rows.Scan(&rec.CategoryID, &blob, &rec.SourceText); err != nil {
			return domain.CorpusInfo{}, nil, fmt.Errorf("scanning embedding: %w", err)
		}
		rec.Vector = bytesToFloat32Slice(blob)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return domain.CorpusInfo{}, nil, fmt.Errorf("iterating embeddings: %w", err)
	}

	return info, records, nil
}

// CorpusInfo returns the persisted corpus metadata without the vectors.
func (s *Store) CorpusInfo(ctx context.Context) (domain.CorpusInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT model_name, dimensions, tree_version, size, built_at FROM corpus_meta WHERE id = 1
	`)

	var info domain.CorpusInfo
	if err := row.Scan(&info.ModelName, &info.Dimensions, &info.TreeVersion,
		&info.Size, &info.BuiltAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CorpusInfo{}, domain.ErrNotFound
		}
		return domain.CorpusInfo{}, fmt.Errorf("scanning corpus metadata: %w", err)
	}
	return info, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Helper Functions ====================

// scanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

// scanCategory scans one category row.
func scanCategory(row scanner) (domain.Category, error) {
	var c domain.Category
	var pathJSON string
	var leaf int
	var parentID sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &pathJSON, &c.Depth, &leaf, &parentID); err != nil {
		return domain.Category{}, fmt.Errorf("scanning category: %w", err)
	}
	if err := json.Unmarshal([]byte(pathJSON), &c.Path); err != nil {
		return domain.Category{}, fmt.Errorf("unmarshaling path: %w", err)
	}
	c.Leaf = leaf != 0
	c.ParentID = parentID.String
	return c, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// nullString returns a sql.NullString that is NULL for empty strings.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// boolToInt converts a bool to SQLite's integer representation.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
