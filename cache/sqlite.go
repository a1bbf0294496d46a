package cache

import (
	"database/sql"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteStore is a Store backed by an embedded sqlite database, used when
// the memo tables should persist across moves and processes. Every error is
// downgraded to a cache miss; the engine only loses speed, never
// correctness, when the database is unavailable or corrupt.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Info().Str("path", path).Msg("opened-persistent-cache")
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(key string) ([]byte, bool) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		log.Warn().Err(err).Msg("cache-get-failed-treating-as-miss")
		return nil, false
	}
	return value, true
}

func (s *SQLiteStore) Set(key string, value []byte) {
	_, err := s.db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		log.Warn().Err(err).Msg("cache-set-failed")
	}
}

func (s *SQLiteStore) Delete(key string) {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		log.Warn().Err(err).Msg("cache-delete-failed")
	}
}

func (s *SQLiteStore) Keys() []string {
	rows, err := s.db.Query(`SELECT key FROM kv`)
	if err != nil {
		log.Warn().Err(err).Msg("cache-keys-failed")
		return nil
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			log.Warn().Err(err).Msg("cache-keys-scan-failed")
			return keys
		}
		keys = append(keys, k)
	}
	return keys
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
