// internal/store/sqlite.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/session"
)

// SQLiteStore implements DescriptorStore on a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates the parent directory if needed, opens the database and
// applies the schema.
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenDB wraps an existing database handle (used by tests).
func OpenDB(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
CREATE TABLE IF NOT EXISTS project_descriptors (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    customer_name TEXT NOT NULL,
    product_type TEXT NOT NULL,
    community_url TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Save inserts or replaces the descriptor for a project.
func (s *SQLiteStore) Save(ctx context.Context, desc session.Descriptor) error {
	query := `
		INSERT INTO project_descriptors (id, name, customer_name, product_type, community_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			customer_name = excluded.customer_name,
			product_type = excluded.product_type,
			community_url = excluded.community_url
	`

	_, err := s.db.ExecContext(ctx, query,
		desc.ID,
		desc.Name,
		desc.CustomerName,
		desc.ProductType,
		desc.CommunityURL,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save descriptor: %w", err)
	}
	return nil
}

// Get retrieves the descriptor for a project id.
func (s *SQLiteStore) Get(ctx context.Context, projectID string) (*session.Descriptor, error) {
	query := `
		SELECT id, name, customer_name, product_type, community_url
		FROM project_descriptors
		WHERE id = ?
	`

	var desc session.Descriptor
	var communityURL sql.NullString
	err := s.db.QueryRowContext(ctx, query, projectID).Scan(
		&desc.ID,
		&desc.Name,
		&desc.CustomerName,
		&desc.ProductType,
		&communityURL,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get descriptor: %w", err)
	}

	desc.CommunityURL = communityURL.String
	return &desc, nil
}

// List returns all saved descriptors, oldest first.
func (s *SQLiteStore) List(ctx context.Context) ([]session.Descriptor, error) {
	query := `
		SELECT id, name, customer_name, product_type, community_url
		FROM project_descriptors
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list descriptors: %w", err)
	}
	defer rows.Close()

	var descs []session.Descriptor
	for rows.Next() {
		var desc session.Descriptor
		var communityURL sql.NullString
		if err := rows.Scan(&desc.ID, &desc.Name, &desc.CustomerName, &desc.ProductType, &communityURL); err != nil {
			return nil, fmt.Errorf("failed to scan descriptor: %w", err)
		}
		desc.CommunityURL = communityURL.String
		descs = append(descs, desc)
	}
	return descs, rows.Err()
}

// Delete removes a descriptor, typically after the project is deleted
// server-side.
func (s *SQLiteStore) Delete(ctx context.Context, projectID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM project_descriptors WHERE id = ?`, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete descriptor: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
