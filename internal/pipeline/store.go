package pipeline

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/jonathan/candidate-ranker/internal/types"
)

// KeyPrefix prefixes every enrichment store key.
const KeyPrefix = "enriched:"

// EnrichmentStore caches enriched candidates between queries so that a jittered score,
// once computed for a record, stays stable. Implementations must tolerate missing keys.
type EnrichmentStore interface {
	GetMany(ctx context.Context, keys []string) (map[string]types.EnrichedCandidate, error)
	SetMany(ctx context.Context, entries map[string]types.EnrichedCandidate) error
}

// CacheKey identifies a record by the scorer's jitter name, its id and a fingerprint of its
// attributes, so neither an edited record nor a different jitter mode reuses a stored score.
func CacheKey(jitter string, rec *types.CandidateRecord) string {
	return KeyPrefix + jitter + ":" + strconv.FormatInt(rec.ID, 10) + ":" + Fingerprint(rec)
}

func (e *Engine) cacheKey(rec *types.CandidateRecord) string {
	return CacheKey(e.scorer.JitterName(), rec)
}

// Fingerprint is a short hex digest of the record's JSON encoding.
func Fingerprint(rec *types.CandidateRecord) string {
	data, err := json.Marshal(rec)
	if err != nil {
		return "0"
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

func (e *Engine) lookup(ctx context.Context, records []types.CandidateRecord) map[string]types.EnrichedCandidate {
	if e.store == nil {
		return nil
	}

	keys := make([]string, len(records))
	for i := range records {
		keys[i] = e.cacheKey(&records[i])
	}

	found, err := e.store.GetMany(ctx, keys)
	if err != nil {
		e.logger.Warn("enrichment store lookup failed", zap.Error(err))
		return nil
	}
	e.logger.Debug("enrichment store lookup", zap.Int("keys", len(keys)), zap.Int("hits", len(found)))
	return found
}

func (e *Engine) save(ctx context.Context, records []types.CandidateRecord, enriched []types.EnrichedCandidate, cached map[string]types.EnrichedCandidate) {
	if e.store == nil {
		return
	}

	entries := make(map[string]types.EnrichedCandidate)
	for i := range records {
		key := e.cacheKey(&records[i])
		if _, ok := cached[key]; ok {
			continue
		}
		entry := enriched[i]
		// labels and display names depend on the caller, only scores are stored
		entry.AnonymizedLabel = ""
		entry.DisplayName = ""
		entries[key] = entry
	}
	if len(entries) == 0 {
		return
	}

	if err := e.store.SetMany(ctx, entries); err != nil {
		e.logger.Warn("enrichment store save failed", zap.Error(err), zap.Int("entries", len(entries)))
	}
}

// MemoryStore is an in-process EnrichmentStore.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]types.EnrichedCandidate
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]types.EnrichedCandidate)}
}

// GetMany returns the stored entries among keys.
func (m *MemoryStore) GetMany(_ context.Context, keys []string) (map[string]types.EnrichedCandidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]types.EnrichedCandidate)
	for _, k := range keys {
		if v, ok := m.entries[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// SetMany stores entries.
func (m *MemoryStore) SetMany(_ context.Context, entries map[string]types.EnrichedCandidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range entries {
		m.entries[k] = v
	}
	return nil
}

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
