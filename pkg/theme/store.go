package theme

import (
	"fmt"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	bucketName = "preferences"
	themeKey   = "theme"
)

// BoltStore persists the preference in a bbolt database.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens or creates the database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open theme store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Get returns the stored theme.
func (s *BoltStore) Get() (Theme, bool, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(bucketName)).Get([]byte(themeKey)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || raw == nil {
		return "", false, err
	}

	t, err := Parse(string(raw))
	if err != nil {
		return "", false, err
	}
	return t, true, nil
}

// Set stores the theme.
func (s *BoltStore) Set(t Theme) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(themeKey), []byte(t))
	})
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// MemoryStore keeps the preference for the lifetime of the process.
type MemoryStore struct {
	mu    sync.Mutex
	theme Theme
	set   bool
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the stored theme.
func (s *MemoryStore) Get() (Theme, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme, s.set, nil
}

// Set stores the theme.
func (s *MemoryStore) Set(t Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = t
	s.set = true
	return nil
}
