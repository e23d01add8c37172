package index

import (
	"encoding/json"
	"fmt"
	"time"
)

// ContentRow represents a row in the content table.
type ContentRow struct {
	Path      string
	Section   string
	Slug      string
	Title     string
	Checksum  string
	Status    string
	Tags      []string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// UpsertContent inserts or replaces a content row and its FTS entry within
// a transaction.
func (db *DB) UpsertContent(c ContentRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(c.Tags)

	// Upsert content table (includes body for fallback search).
	_, err = tx.Exec(`
		INSERT INTO content (path, section, slug, title, checksum, status, tags, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			section    = excluded.section,
			slug       = excluded.slug,
			title      = excluded.title,
			checksum   = excluded.checksum,
			status     = excluded.status,
			tags       = excluded.tags,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, c.Path, c.Section, c.Slug, c.Title, c.Checksum, c.Status, string(tagsJSON), body, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert content: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, c.Path, c.Title, body, c.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteContent removes a content row and its FTS entry.
func (db *DB) DeleteContent(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM content WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a path, or empty string if
// not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM content WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed file.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM content`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// ListContent returns paginated rows with optional section and tag filters.
// sort is one of updated_at (default, newest first), title, path.
func (db *DB) ListContent(limit, offset int, section, tag, sort string) ([]ContentRow, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	where := "1=1"
	args := []any{}
	if section != "" {
		where += " AND section = ?"
		args = append(args, section)
	}
	if tag != "" {
		// Tags are stored as a JSON array of strings.
		where += ` AND tags LIKE ?`
		args = append(args, `%"`+tag+`"%`)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM content WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count content: %w", err)
	}

	order := "updated_at DESC"
	switch sort {
	case "title":
		order = "title COLLATE NOCASE ASC"
	case "path":
		order = "path ASC"
	}

	query := fmt.Sprintf(`
		SELECT path, section, slug, title, checksum, status, tags, updated_at
		FROM content
		WHERE %s
		ORDER BY %s
		LIMIT ? OFFSET ?
	`, where, order)
	rows, err := db.conn.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list content: %w", err)
	}
	defer rows.Close()

	var out []ContentRow
	for rows.Next() {
		var r ContentRow
		var tagsJSON string
		if err := rows.Scan(&r.Path, &r.Section, &r.Slug, &r.Title, &r.Checksum, &r.Status, &tagsJSON, &r.UpdatedAt); err != nil {
			return nil, 0, err
		}
		_ = json.Unmarshal([]byte(tagsJSON), &r.Tags)
		out = append(out, r)
	}
	return out, total, rows.Err()
}
