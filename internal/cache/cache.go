package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/crewsheet/internal/common"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

// Cache stores finished extraction results. Get returns common.ErrCacheMiss
// when the key is absent or expired.
type Cache interface {
	Get(ctx context.Context, key string) (*entity.ExtractionResult, error)
	Set(ctx context.Context, key string, res *entity.ExtractionResult, ttl time.Duration) error
}

// Key is sha256 over the text and the JSON form of the options.
func Key(text string, opts entity.Options) string {
	h := sha256.New()
	h.Write([]byte(text))
	h.Write([]byte{0})
	b, _ := json.Marshal(opts)
	h.Write(b)
	return hex.EncodeToString(h.Sum(nil))
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) (*entity.ExtractionResult, error) {
	return nil, common.ErrCacheMiss
}

func (Noop) Set(context.Context, string, *entity.ExtractionResult, time.Duration) error {
	return nil
}

// New builds the backend named by cfg.Backend.
func New(cfg common.CacheConfig, logger *slog.Logger) (Cache, error) {
	switch cfg.Backend {
	case "", "none":
		return Noop{}, nil
	case "memory":
		return NewMemory(cfg.TTL), nil
	case "redis":
		return NewRedis(NewRedisClient(cfg), logger, WithPrefix(cfg.Prefix), WithDefaultTTL(cfg.TTL)), nil
	}
	return nil, fmt.Errorf("%w: cache backend %q", common.ErrInvalidInput, cfg.Backend)
}
