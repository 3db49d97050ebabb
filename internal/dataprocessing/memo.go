package dataprocessing

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"

	"salespulse/internal/infrastructure"
	"salespulse/pkg/contracts/domain"
)

// Store caches loaded datasets by content key.
// *lru.Cache[string, *domain.Dataset] satisfies it.
type Store interface {
	Get(key string) (*domain.Dataset, bool)
	Add(key string, value *domain.Dataset) bool
}

// NewLRUStore returns a Store holding at most size datasets.
func NewLRUStore(size int) (Store, error) {
	cache, err := lru.New[string, *domain.Dataset](size)
	if err != nil {
		return nil, err
	}
	return cache, nil
}

// Key hashes file names and contents with BLAKE2b-256. Identical upload sets
// in the same order produce the same key.
func Key(uploads []Upload) string {
	h, _ := blake2b.New256(nil)
	var size [8]byte
	for _, u := range uploads {
		binary.BigEndian.PutUint64(size[:], uint64(len(u.Name)))
		h.Write(size[:])
		h.Write([]byte(u.Name))
		binary.BigEndian.PutUint64(size[:], uint64(len(u.Data)))
		h.Write(size[:])
		h.Write(u.Data)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Memo memoizes Loader results by content key. Concurrent loads of the
// same content share one parse.
type Memo struct {
	loader *Loader
	store  Store
	group  singleflight.Group
	logger *slog.Logger
}

// NewMemo wraps loader with store.
func NewMemo(loader *Loader, store Store, logger *slog.Logger) *Memo {
	if logger == nil {
		logger = slog.Default()
	}
	return &Memo{
		loader: loader,
		store:  store,
		logger: infrastructure.WithComponent(logger, "memo"),
	}
}

// Load returns the dataset for uploads and whether it came from the cache.
// The returned dataset is shared and must not be modified.
func (m *Memo) Load(ctx context.Context, uploads []Upload) (*domain.Dataset, bool, error) {
	key := Key(uploads)
	if ds, ok := m.store.Get(key); ok {
		m.logger.DebugContext(ctx, "dataset cache hit", slog.String("key", key))
		return ds, true, nil
	}

	v, err, shared := m.group.Do(key, func() (interface{}, error) {
		ds, err := m.loader.Load(ctx, uploads)
		if err != nil {
			return nil, err
		}
		ds.Key = key
		m.store.Add(key, ds)
		return ds, nil
	})
	if err != nil {
		return nil, false, err
	}
	if shared {
		m.logger.DebugContext(ctx, "dataset load shared with concurrent request", slog.String("key", key))
	}
	return v.(*domain.Dataset), false, nil
}

// Lookup returns a previously loaded dataset.
func (m *Memo) Lookup(key string) (*domain.Dataset, bool) {
	return m.store.Get(key)
}
