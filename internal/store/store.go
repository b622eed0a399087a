package store

import (
	"database/sql"
	"fmt"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	sqlite_vec.Auto()
}

// Store provides persistence for indexed files, chunks, and embeddings.
type Store interface {
	// GetFileHash returns the stored whole-file hash for a path, or "" if
	// the file is not indexed.
	GetFileHash(path string) (string, error)
	// ReplaceFileChunks atomically replaces a file's record and every chunk
	// it owns. Readers never observe the file half-replaced.
	ReplaceFileChunks(f FileRecord, chunks []Chunk) error
	// UpsertChunk inserts or fully replaces a chunk by ID.
	UpsertChunk(c Chunk) error
	// DeleteFile removes a file record and all chunks it owns.
	DeleteFile(path string) error
	// DeleteAll clears every file, chunk, and embedding.
	DeleteAll() error
	// Search returns chunks scoring at least threshold against the query
	// vector, best first, capped at limit. Filters are applied before the
	// limit. An empty index yields an empty result, not an error.
	Search(queryVec []float32, limit int, threshold float64, f Filters) ([]SearchResult, error)
	// FindByName returns chunks whose name matches the identifier exactly,
	// or failing that by case-insensitive substring, ordered by
	// (file_path, start_line).
	FindByName(identifier string) ([]Chunk, error)
	// ChunksForFile returns a file's chunks ordered by start line.
	ChunksForFile(path string) ([]Chunk, error)
	// ListFiles returns all file records with their chunk counts.
	ListFiles() ([]FileRecord, error)
	// Stats summarizes the index contents.
	Stats() (*IndexStats, error)
	// GetMeta returns a metadata value by key, or "" if unset.
	GetMeta(key string) (string, error)
	// SetMeta sets a metadata key-value pair.
	SetMeta(key, value string) error
	// Close closes the underlying database.
	Close() error
}

// SQLiteStore implements Store backed by SQLite + sqlite-vec. WAL mode gives
// the single-writer/multi-reader model: readers see the last committed state
// while an indexing pass writes.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and initializes
// the schema.
func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := Init(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) GetFileHash(path string) (string, error) {
	var hash string
	err := s.db.QueryRow("SELECT hash FROM files WHERE path = ?", path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return hash, err
}

func (s *SQLiteStore) ReplaceFileChunks(f FileRecord, chunks []Chunk) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM chunks WHERE file_path = ?", f.Path); err != nil {
		return fmt.Errorf("delete old chunks for %s: %w", f.Path, err)
	}

	_, err = tx.Exec(`
		INSERT INTO files (path, hash, language, indexed_at, size_bytes)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, ?)
		ON CONFLICT(path) DO UPDATE SET
			hash = excluded.hash,
			language = excluded.language,
			indexed_at = CURRENT_TIMESTAMP,
			size_bytes = excluded.size_bytes
	`, f.Path, f.Hash, f.Language, f.SizeBytes)
	if err != nil {
		return fmt.Errorf("upsert file %s: %w", f.Path, err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO chunks
			(id, file_path, language, kind, name, start_line, end_line, content, docstring, content_hash, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range chunks {
		blob, err := sqlite_vec.SerializeFloat32(c.Embedding)
		if err != nil {
			return fmt.Errorf("serialize embedding for chunk %s: %w", c.ID, err)
		}
		_, err = stmt.Exec(c.ID, c.FilePath, c.Language, c.Kind, c.Name,
			c.StartLine, c.EndLine, c.Content, c.Docstring, c.ContentHash, blob)
		if err != nil {
			return fmt.Errorf("insert chunk %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) UpsertChunk(c Chunk) error {
	blob, err := sqlite_vec.SerializeFloat32(c.Embedding)
	if err != nil {
		return fmt.Errorf("serialize embedding for chunk %s: %w", c.ID, err)
	}
	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO chunks
			(id, file_path, language, kind, name, start_line, end_line, content, docstring, content_hash, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.FilePath, c.Language, c.Kind, c.Name,
		c.StartLine, c.EndLine, c.Content, c.Docstring, c.ContentHash, blob)
	return err
}

func (s *SQLiteStore) DeleteFile(path string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM chunks WHERE file_path = ?", path); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM files WHERE path = ?", path); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) DeleteAll() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM chunks"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM files"); err != nil {
		return err
	}
	return tx.Commit()
}

const chunkColumns = "id, file_path, language, kind, name, start_line, end_line, content, docstring, content_hash"

func (s *SQLiteStore) Search(queryVec []float32, limit int, threshold float64, f Filters) ([]SearchResult, error) {
	if limit <= 0 {
		return nil, nil
	}
	blob, err := sqlite_vec.SerializeFloat32(queryVec)
	if err != nil {
		return nil, fmt.Errorf("serialize query embedding: %w", err)
	}

	// Distance is computed in SQL; metadata predicates are part of the WHERE
	// clause so the limit counts only matching chunks.
	query := `
		SELECT ` + chunkColumns + `,
		       1.0 - vec_distance_cosine(embedding, ?) AS score
		FROM chunks
		WHERE 1.0 - vec_distance_cosine(embedding, ?) >= ?
	`
	args := []any{blob, blob, threshold}
	if f.Language != "" {
		query += " AND language = ?"
		args = append(args, f.Language)
	}
	if f.Kind != "" {
		query += " AND kind = ?"
		args = append(args, f.Kind)
	}
	query += " ORDER BY score DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := scanChunk(rows, &r.Chunk, &r.Score); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) FindByName(identifier string) ([]Chunk, error) {
	chunks, err := s.queryChunks(
		"SELECT "+chunkColumns+" FROM chunks WHERE name = ? ORDER BY file_path, start_line",
		identifier,
	)
	if err != nil || len(chunks) > 0 {
		return chunks, err
	}
	return s.queryChunks(
		"SELECT "+chunkColumns+" FROM chunks WHERE name != '' AND instr(lower(name), lower(?)) > 0 ORDER BY file_path, start_line",
		identifier,
	)
}

func (s *SQLiteStore) ChunksForFile(path string) ([]Chunk, error) {
	return s.queryChunks(
		"SELECT "+chunkColumns+" FROM chunks WHERE file_path = ? ORDER BY start_line, end_line DESC",
		path,
	)
}

func (s *SQLiteStore) queryChunks(query string, args ...any) ([]Chunk, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		if err := scanChunk(rows, &c, nil); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func scanChunk(rows *sql.Rows, c *Chunk, score *float64) error {
	dest := []any{
		&c.ID, &c.FilePath, &c.Language, &c.Kind, &c.Name,
		&c.StartLine, &c.EndLine, &c.Content, &c.Docstring, &c.ContentHash,
	}
	if score != nil {
		dest = append(dest, score)
	}
	return rows.Scan(dest...)
}

func (s *SQLiteStore) ListFiles() ([]FileRecord, error) {
	rows, err := s.db.Query(`
		SELECT f.path, f.hash, f.language, f.indexed_at, f.size_bytes,
		       (SELECT COUNT(*) FROM chunks c WHERE c.file_path = f.path)
		FROM files f
		ORDER BY f.path
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		if err := rows.Scan(&f.Path, &f.Hash, &f.Language, &f.IndexedAt, &f.SizeBytes, &f.Chunks); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (s *SQLiteStore) Stats() (*IndexStats, error) {
	stats := &IndexStats{
		ByLanguage: make(map[string]int),
		ByKind:     make(map[string]int),
	}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&stats.ChunkCount); err != nil {
		return nil, err
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM files").Scan(&stats.FileCount); err != nil {
		return nil, err
	}

	if err := s.countBy("language", stats.ByLanguage); err != nil {
		return nil, err
	}
	if err := s.countBy("kind", stats.ByKind); err != nil {
		return nil, err
	}

	if raw, err := s.GetMeta(MetaLastIndexedAt); err == nil && raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			stats.LastIndexedAt = t
		}
	}
	return stats, nil
}

func (s *SQLiteStore) countBy(column string, into map[string]int) error {
	rows, err := s.db.Query("SELECT " + column + ", COUNT(*) FROM chunks GROUP BY " + column)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		into[key] = n
	}
	return rows.Err()
}

func (s *SQLiteStore) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (s *SQLiteStore) SetMeta(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
