package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Fixed logical keys of the persistent identity store. Only the session
// manager and the notification center write these; cart and orders belong
// to external collaborators but are purged here on logout.
const (
	KeyToken       = "token"
	KeyUser        = "user"
	KeyDriverToken = "driverToken"
	KeyDriver      = "driver"
	KeyCart        = "cart"
	KeyOrders      = "orders"
)

// ErrMalformed signals that a persisted snapshot exists but does not
// parse. The raw value is retained; callers treat the key as "no value
// available" for this session.
var ErrMalformed = errors.New("malformed persisted value")

type entry struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (entry) TableName() string { return "session_store" }

// Store is durable key-value storage for session state. Values are whole
// serialized records; no partial patching happens at this layer.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the sqlite-backed store at path.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("migrate session store: %w", err)
	}
	return &Store{db: db}, nil
}

// Put writes a whole value under key, replacing any previous value.
func (s *Store) Put(key, value string) error {
	e := entry{Key: key, Value: value}
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&e).Error; err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// Get returns the value under key. The second return is false when the
// key is absent.
func (s *Store) Get(key string) (string, bool, error) {
	var e entry
	err := s.db.First(&e, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return e.Value, true, nil
}

// Delete removes the given keys. Missing keys are not an error, so the
// session manager's logout stays idempotent.
func (s *Store) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.db.Delete(&entry{}, "key IN ?", keys).Error; err != nil {
		return fmt.Errorf("delete %v: %w", keys, err)
	}
	return nil
}

// PutJSON serializes v and stores it whole under key.
func (s *Store) PutJSON(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}
	return s.Put(key, string(raw))
}

// GetJSON loads the value under key into v. A present-but-unparseable
// value returns ErrMalformed and is left in place.
func (s *Store) GetJSON(key string, v any) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return true, fmt.Errorf("%w: key %q: %v", ErrMalformed, key, err)
	}
	return true, nil
}
