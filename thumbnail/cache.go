package thumbnail

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// InitCache initializes the thumbnail cache database. Cached renders are
// keyed by source path, bounding box and source modification time, so a
// re-edited file naturally misses and gets re-rendered.
func InitCache(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS thumbnails (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		max_width INTEGER NOT NULL,
		max_height INTEGER NOT NULL,
		modified_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		data BLOB NOT NULL,
		UNIQUE(path, max_width, max_height)
	);
	CREATE INDEX IF NOT EXISTS idx_thumb_path ON thumbnails(path);`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot create thumbnail cache schema: %v", err)
	}

	return db, nil
}

// lookupThumb returns a cached render if one exists for this key and the
// source file has not changed since it was stored
func lookupThumb(db *sql.DB, path string, maxW, maxH int, modifiedAt string) ([]byte, bool, error) {
	var (
		storedModTime string
		data          []byte
	)
	err := db.QueryRow(
		"SELECT modified_at, data FROM thumbnails WHERE path = ? AND max_width = ? AND max_height = ?",
		path, maxW, maxH,
	).Scan(&storedModTime, &data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("thumbnail cache lookup failed for %s: %v", path, err)
	}

	if storedModTime != modifiedAt {
		return nil, false, nil
	}
	return data, true, nil
}

// storeThumb saves a render, replacing any stale entry for the same key
func storeThumb(db *sql.DB, path string, maxW, maxH int, modifiedAt string, data []byte) error {
	stmt, err := db.Prepare(`
		INSERT OR REPLACE INTO thumbnails (
			path, max_width, max_height, modified_at, created_at, data
		) VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("cannot prepare thumbnail insert for %s: %v", path, err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(path, maxW, maxH, modifiedAt, time.Now().Format(time.RFC3339), data)
	if err != nil {
		return fmt.Errorf("cannot store thumbnail for %s: %v", path, err)
	}
	return nil
}
