package cart

import (
	"context"
	"errors"

	"github.com/syndtr/goleveldb/leveldb"

	"storefront/internal/domain"
)

const levelKeyPrefix = "cart:"

// LevelDB keeps cart records in an on-disk LevelDB, the same kind of store browsers
// use behind localStorage.
type LevelDB struct {
	db *leveldb.DB
}

func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}

func (l *LevelDB) Read(_ context.Context, key string) ([]byte, error) {
	payload, err := l.db.Get([]byte(levelKeyPrefix+key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	return payload, err
}

func (l *LevelDB) Write(_ context.Context, key string, payload []byte) error {
	return l.db.Put([]byte(levelKeyPrefix+key), payload, nil)
}

func (l *LevelDB) Delete(_ context.Context, key string) error {
	return l.db.Delete([]byte(levelKeyPrefix+key), nil)
}
