// internal/workflow/store.go
package workflow

import (
	"encoding/json"
	"fmt"

	gocache "github.com/patrickmn/go-cache"

	"remoteflow/internal/common/logger"
)

// Store parses workflow graphs and caches them keyed by their exact raw
// text. Cached entries are immutable snapshots; Load hands out a fresh
// deep copy on every call so in-place injection by one invocation can
// never leak into another.
type Store struct {
	cache *gocache.Cache
	log   logger.Logger
}

func NewStore(log logger.Logger) *Store {
	return &Store{
		cache: gocache.New(gocache.NoExpiration, gocache.NoExpiration),
		log:   log,
	}
}

// Load parses raw workflow text into a graph. The text must be a JSON
// object of node objects; structural violations are reported before
// decoding so callers get a stable error instead of a partial graph.
func (s *Store) Load(raw string) (Graph, error) {
	if cached, ok := s.cache.Get(raw); ok {
		return cached.(Graph).Clone(), nil
	}

	if err := validateAgainst(graphSchemaLoader, raw); err != nil {
		return nil, fmt.Errorf("workflow rejected: %w", err)
	}

	var g Graph
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		return nil, fmt.Errorf("workflow decode: %w", err)
	}

	s.cache.Set(raw, g, gocache.NoExpiration)
	s.log.Debug("workflow cached", map[string]interface{}{"nodes": len(g)})
	return g.Clone(), nil
}
