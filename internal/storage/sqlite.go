package storage

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements SessionStore on SQLite. It is an optional backing
// for deployments that want the language preference and vision cache to
// survive restarts; the contract is identical to MemoryStore.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// WAL mode and a busy timeout for better concurrency
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	userPrefsQuery := `
	CREATE TABLE IF NOT EXISTS user_prefs (
		telegram_id INTEGER PRIMARY KEY,
		language TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(userPrefsQuery); err != nil {
		return fmt.Errorf("failed to create user_prefs table: %w", err)
	}

	visionCacheQuery := `
	CREATE TABLE IF NOT EXISTS vision_cache (
		image_hash TEXT PRIMARY KEY,
		product_name TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(visionCacheQuery); err != nil {
		return fmt.Errorf("failed to create vision_cache table: %w", err)
	}

	return nil
}

// GetLanguage returns the stored language code for a user.
// Returns "" if the user has never selected a language.
func (s *SQLiteStore) GetLanguage(telegramID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var code string
	err := s.db.QueryRow(
		"SELECT language FROM user_prefs WHERE telegram_id = ?",
		telegramID,
	).Scan(&code)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query language: %w", err)
	}

	return code, nil
}

// SetLanguage creates or overwrites the user's language preference.
func (s *SQLiteStore) SetLanguage(telegramID int64, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO user_prefs (telegram_id, language)
		VALUES (?, ?)
		ON CONFLICT(telegram_id) DO UPDATE SET
			language = excluded.language,
			updated_at = CURRENT_TIMESTAMP
	`, telegramID, code)

	if err != nil {
		return fmt.Errorf("failed to set language: %w", err)
	}
	return nil
}

// GetVisionCache retrieves a cached product name by image hash.
// Returns "" if no cache entry exists.
func (s *SQLiteStore) GetVisionCache(imageHash string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var productName string
	err := s.db.QueryRow(
		"SELECT product_name FROM vision_cache WHERE image_hash = ?",
		imageHash,
	).Scan(&productName)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query vision cache: %w", err)
	}

	return productName, nil
}

// SetVisionCache stores a vision analysis result in the cache.
func (s *SQLiteStore) SetVisionCache(imageHash string, productName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO vision_cache (image_hash, product_name)
		VALUES (?, ?)
		ON CONFLICT(image_hash) DO UPDATE SET
			product_name = excluded.product_name,
			created_at = CURRENT_TIMESTAMP
	`, imageHash, productName)

	if err != nil {
		return fmt.Errorf("failed to cache vision result: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
