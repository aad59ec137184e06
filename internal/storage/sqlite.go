package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Storage handles the SQLite export of the community graph
type Storage struct {
	db *sql.DB
}

// NewStorage creates a new Storage instance, opening/creating the DB and initializing schema
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	storage := &Storage{db: db}

	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// initSchema creates tables and indices if they don't exist
func (s *Storage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS communities (
		community_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL,
		visited INTEGER NOT NULL DEFAULT 0,
		reference_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS edges (
		edge_id INTEGER PRIMARY KEY AUTOINCREMENT,
		from_id INTEGER NOT NULL,
		to_id INTEGER NOT NULL,
		FOREIGN KEY (from_id) REFERENCES communities(community_id),
		FOREIGN KEY (to_id) REFERENCES communities(community_id),
		UNIQUE(from_id, to_id)
	);

	CREATE INDEX IF NOT EXISTS idx_communities_name ON communities(name);
	CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_id);
	CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// UpsertCommunity inserts a community or updates it if the name exists.
// A community once marked visited stays visited. Returns the community_id.
func (s *Storage) UpsertCommunity(name string, visited bool, referenceCount int) (int, error) {
	_, err := s.db.Exec(`
		INSERT INTO communities (name, visited, reference_count)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			visited = MAX(communities.visited, EXCLUDED.visited),
			reference_count = CASE WHEN EXCLUDED.visited = 1
				THEN EXCLUDED.reference_count
				ELSE communities.reference_count END
	`, name, visited, referenceCount)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert community: %w", err)
	}

	var communityID int
	err = s.db.QueryRow("SELECT community_id FROM communities WHERE name = ?", name).Scan(&communityID)
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve community_id: %w", err)
	}

	return communityID, nil
}

// GetCommunity retrieves a community by name, returns nil if not found
func (s *Storage) GetCommunity(name string) (*Community, error) {
	var c Community
	err := s.db.QueryRow(`
		SELECT community_id, name, visited, reference_count, created_at
		FROM communities
		WHERE name = ?
	`, name).Scan(&c.CommunityID, &c.Name, &c.Visited, &c.ReferenceCount, &c.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get community: %w", err)
	}

	return &c, nil
}

// UpsertEdge records a reference, ignoring duplicates
func (s *Storage) UpsertEdge(fromID, toID int) error {
	_, err := s.db.Exec(`
		INSERT INTO edges (from_id, to_id)
		VALUES (?, ?)
		ON CONFLICT(from_id, to_id) DO NOTHING
	`, fromID, toID)
	if err != nil {
		return fmt.Errorf("failed to upsert edge: %w", err)
	}
	return nil
}

// References returns the names referenced by a community, sorted
func (s *Storage) References(name string) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT t.name
		FROM edges e
		JOIN communities f ON f.community_id = e.from_id
		JOIN communities t ON t.community_id = e.to_id
		WHERE f.name = ?
		ORDER BY t.name ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load references: %w", err)
	}
	defer rows.Close()

	refs := []string{}
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("failed to scan reference: %w", err)
		}
		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating references: %w", err)
	}

	return refs, nil
}

// Stats returns the number of stored communities and edges
func (s *Storage) Stats() (communities, edges int, err error) {
	if err := s.db.QueryRow("SELECT COUNT(*) FROM communities").Scan(&communities); err != nil {
		return 0, 0, fmt.Errorf("failed to count communities: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM edges").Scan(&edges); err != nil {
		return 0, 0, fmt.Errorf("failed to count edges: %w", err)
	}
	return communities, edges, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}
