package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/clearcut-labs/clearcut/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/clearcut-labs/clearcut/internal/core/domain"
	"github.com/clearcut-labs/clearcut/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// document and chat stores through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.clearcut/data/clearcut.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".clearcut", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "clearcut.db")

	// Open database with WAL mode for better concurrency. Foreign keys go
	// in the DSN so every pooled connection enforces them.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
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

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// ChatStore returns a ChatStore interface backed by this store.
func (s *Store) ChatStore() driven.ChatStore {
	return &chatStore{store: s}
}

// migrate applies pending schema migrations in version order.
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
	}

	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// CreateDocument stores a new document.
func (s *documentStore) CreateDocument(ctx context.Context, doc *domain.Document) error {
	fastJSON, err := rawToNullString(doc.FastAnalysis)
	if err != nil {
		return fmt.Errorf("marshalling fast analysis: %w", err)
	}
	deepJSON, err := deepToNullString(doc.DeepAnalysis)
	if err != nil {
		return fmt.Errorf("marshalling deep analysis: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, owner_id, file_name, file_size, mime_type, doc_type,
			raw_text, status, fast_analysis, deep_analysis, indexed, chunk_count,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.OwnerID, doc.FileName, doc.FileSize, doc.MimeType, string(doc.DocType),
		doc.RawText, string(doc.Status), fastJSON, deepJSON, doc.Indexed, doc.ChunkCount,
		doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("creating document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, owner_id, file_name, file_size, mime_type, doc_type,
			raw_text, status, fast_analysis, deep_analysis, indexed, chunk_count,
			created_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	return scanDocument(row)
}

// ListDocuments returns an owner's documents, newest first.
func (s *documentStore) ListDocuments(ctx context.Context, ownerID string) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, owner_id, file_name, file_size, mime_type, doc_type,
			raw_text, status, fast_analysis, deep_analysis, indexed, chunk_count,
			created_at, updated_at
		FROM documents WHERE owner_id = ?
		ORDER BY created_at DESC, id DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// SetFastAnalysis writes the fast-path result and the final status.
func (s *documentStore) SetFastAnalysis(ctx context.Context, id string, analysis json.RawMessage, status domain.DocStatus) error {
	fastJSON, err := rawToNullString(analysis)
	if err != nil {
		return fmt.Errorf("marshalling fast analysis: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE documents SET fast_analysis = ?, status = ?, updated_at = ?
		WHERE id = ?
	`, fastJSON, string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating fast analysis: %w", err)
	}

	return requireRow(res)
}

// SetDeepAnalysis writes the settled capability aggregate.
func (s *documentStore) SetDeepAnalysis(ctx context.Context, id string, analysis *domain.DeepAnalysis) error {
	deepJSON, err := deepToNullString(analysis)
	if err != nil {
		return fmt.Errorf("marshalling deep analysis: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE documents SET deep_analysis = ?, updated_at = ?
		WHERE id = ?
	`, deepJSON, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating deep analysis: %w", err)
	}

	return requireRow(res)
}

// SetIndexState marks the document indexed with its chunk count.
func (s *documentStore) SetIndexState(ctx context.Context, id string, chunkCount int) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE documents SET indexed = 1, chunk_count = ?, updated_at = ?
		WHERE id = ?
	`, chunkCount, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating index state: %w", err)
	}

	return requireRow(res)
}

// DeleteDocument removes a document; chat messages cascade.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ==================== Chat Store ====================

// chatStore implements driven.ChatStore.
type chatStore struct {
	store *Store
}

var _ driven.ChatStore = (*chatStore)(nil)

// AppendMessage stores one conversation turn.
func (s *chatStore) AppendMessage(ctx context.Context, msg *domain.ChatMessage) error {
	citationsJSON, err := citationsToNullString(msg.Citations)
	if err != nil {
		return fmt.Errorf("marshalling citations: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO chat_messages (id, document_id, owner_id, role, content,
			citations, retrieved_chunks, response_time_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.DocumentID, msg.OwnerID, string(msg.Role), msg.Content,
		citationsJSON, msg.RetrievedChunks, msg.ResponseTime.Milliseconds(), msg.CreatedAt)

	if err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	return nil
}

// ListMessages returns a document's turns in creation order.
func (s *chatStore) ListMessages(ctx context.Context, documentID string) ([]domain.ChatMessage, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, owner_id, role, content,
			citations, retrieved_chunks, response_time_ms, created_at
		FROM chat_messages WHERE document_id = ?
		ORDER BY created_at, id
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.ChatMessage //nolint:prealloc // size unknown from query
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	return msgs, nil
}

// ==================== Scanning helpers ====================

// scannable covers both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanDocument(row scannable) (*domain.Document, error) {
	var (
		doc      domain.Document
		docType  string
		status   string
		fastJSON sql.NullString
		deepJSON sql.NullString
	)

	err := row.Scan(&doc.ID, &doc.OwnerID, &doc.FileName, &doc.FileSize, &doc.MimeType,
		&docType, &doc.RawText, &status, &fastJSON, &deepJSON, &doc.Indexed,
		&doc.ChunkCount, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.DocType = domain.DocType(docType)
	doc.Status = domain.DocStatus(status)

	if fastJSON.Valid && fastJSON.String != "" {
		doc.FastAnalysis = json.RawMessage(fastJSON.String)
	}
	if deepJSON.Valid && deepJSON.String != "" {
		var deep domain.DeepAnalysis
		if err := json.Unmarshal([]byte(deepJSON.String), &deep); err != nil {
			return nil, fmt.Errorf("unmarshalling deep analysis: %w", err)
		}
		doc.DeepAnalysis = &deep
	}

	return &doc, nil
}

func scanMessage(row scannable) (*domain.ChatMessage, error) {
	var (
		msg           domain.ChatMessage
		role          string
		citationsJSON sql.NullString
		responseMS    int64
	)

	err := row.Scan(&msg.ID, &msg.DocumentID, &msg.OwnerID, &role, &msg.Content,
		&citationsJSON, &msg.RetrievedChunks, &responseMS, &msg.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning message: %w", err)
	}

	msg.Role = domain.Role(role)
	msg.ResponseTime = time.Duration(responseMS) * time.Millisecond

	if citationsJSON.Valid && citationsJSON.String != "" {
		if err := json.Unmarshal([]byte(citationsJSON.String), &msg.Citations); err != nil {
			return nil, fmt.Errorf("unmarshalling citations: %w", err)
		}
	}

	return &msg, nil
}

// requireRow maps a zero-row UPDATE onto domain.ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func rawToNullString(raw json.RawMessage) (sql.NullString, error) {
	if len(raw) == 0 {
		return sql.NullString{}, nil
	}
	if !json.Valid(raw) {
		return sql.NullString{}, fmt.Errorf("invalid JSON payload")
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func deepToNullString(deep *domain.DeepAnalysis) (sql.NullString, error) {
	if deep == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(deep)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func citationsToNullString(citations []domain.Citation) (sql.NullString, error) {
	if len(citations) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(citations)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
