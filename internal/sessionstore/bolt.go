package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"

	"goalwidget/internal/identity"
)

const sessionBucket = "sessions"

// BoltStore persists sessions in a single BoltDB file. This is the
// default backend: no external database process, survives restarts.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the database file and ensures the
// sessions bucket exists.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(sessionBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create session bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Create(_ context.Context, data Data) (string, Data, error) {
	id := identity.NewID()
	data.Normalize(time.Now())
	if err := s.write(id, data); err != nil {
		return "", Data{}, err
	}
	return id, data, nil
}

func (s *BoltStore) Get(_ context.Context, id string) (Data, error) {
	var data Data
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(sessionBucket)).Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &data)
	})
	if err != nil {
		return Data{}, err
	}
	return data, nil
}

func (s *BoltStore) Put(_ context.Context, id string, data Data) (Data, error) {
	data.Normalize(time.Now())
	if err := s.write(id, data); err != nil {
		return Data{}, err
	}
	return data, nil
}

func (s *BoltStore) DeleteExpired(_ context.Context, cutoff time.Time) (int, error) {
	limit := cutoff.UnixMilli()
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(sessionBucket))
		var expired [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var data Data
			if err := json.Unmarshal(v, &data); err != nil {
				// Unreadable blobs count as expired.
				expired = append(expired, append([]byte(nil), k...))
				return nil
			}
			if data.LastUpdated < limit {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range expired {
			if err := b.Delete(k); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

func (s *BoltStore) Close() error { return s.db.Close() }

func (s *BoltStore) write(id string, data Data) error {
	buf, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(sessionBucket)).Put([]byte(id), buf)
	})
}

var _ Store = (*BoltStore)(nil)
