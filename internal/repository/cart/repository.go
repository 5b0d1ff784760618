package cart

import (
	"context"
)

// Repository stores serialized carts, one record per key. Read returns
// domain.ErrNotFound when no record exists for key.
type Repository interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, key string) error
}

// Record is a Repository bound to a single key. It is the persistence port a cart
// store writes through; the store never knows which key or backend it uses.
type Record struct {
	repo Repository
	key  string
}

func Bind(repo Repository, key string) *Record {
	return &Record{repo: repo, key: key}
}

func (r *Record) Key() string {
	return r.key
}

func (r *Record) Read(ctx context.Context) ([]byte, error) {
	return r.repo.Read(ctx, r.key)
}

func (r *Record) Write(ctx context.Context, payload []byte) error {
	return r.repo.Write(ctx, r.key, payload)
}

func (r *Record) Delete(ctx context.Context) error {
	return r.repo.Delete(ctx, r.key)
}
