package usecase

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/collabmatch/backend/internal/domain"
)

// CollabService owns the current collaboration snapshot and answers
// resolve/verify queries against it. Reloading swaps the snapshot atomically;
// a partially built snapshot is never visible to readers.
type CollabService struct {
	ingest   *IngestService
	matching *MatchingService
	cache    domain.CacheRepository
	cacheTTL time.Duration
	logger   *zap.Logger

	current atomic.Pointer[domain.Snapshot]
}

// NewCollabService creates the collaboration query service.
func NewCollabService(
	ingest *IngestService,
	matching *MatchingService,
	cache domain.CacheRepository,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *CollabService {
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CollabService{
		ingest:   ingest,
		matching: matching,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Reload ingests the directory and swaps in the fresh snapshot. Verification
// results cached against the old snapshot are flushed.
func (s *CollabService) Reload(dir string, patterns []string) (*domain.Snapshot, error) {
	snapshot, err := s.ingest.Ingest(dir, patterns)
	if err != nil {
		return nil, err
	}

	s.current.Store(snapshot)
	if s.cache != nil {
		s.cache.Clear()
	}

	return snapshot, nil
}

// Current returns the active snapshot, or nil before the first load.
func (s *CollabService) Current() *domain.Snapshot {
	return s.current.Load()
}

// Resolve finds the best matching canonical identity for a name.
func (s *CollabService) Resolve(name string) (*domain.Match, error) {
	snapshot := s.current.Load()
	if snapshot == nil {
		return nil, domain.ErrNotLoaded
	}
	return s.matching.ResolveIdentity(name, identityList(snapshot))
}

// GetProducts returns the de-duplicated product history of the identity the
// name resolves to; empty when unresolved.
func (s *CollabService) GetProducts(name string) ([]string, error) {
	snapshot := s.current.Load()
	if snapshot == nil {
		return nil, domain.ErrNotLoaded
	}

	match, err := s.matching.ResolveIdentity(name, identityList(snapshot))
	if err != nil {
		return []string{}, nil
	}
	return uniqueProducts(snapshot.Identities[match.Name]), nil
}

// Verify checks one assignment against the current snapshot. Results are
// cached per (name, product) pair until the next reload.
func (s *CollabService) Verify(ctx context.Context, name, product string) (*domain.VerificationResult, error) {
	snapshot := s.current.Load()
	if snapshot == nil {
		return nil, domain.ErrNotLoaded
	}

	cacheKey := verifyCacheKey(name, product)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			if result, ok := cached.(*domain.VerificationResult); ok {
				return result, nil
			}
		}
	}

	result := s.matching.VerifyAssignment(snapshot, name, product)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache verification result", zap.Error(err))
		}
	}

	return result, nil
}

// VerifyBatch verifies every pair independently, preserving input order, and
// aggregates counts for reporting.
func (s *CollabService) VerifyBatch(ctx context.Context, assignments []domain.Assignment) ([]domain.BatchRow, domain.BatchStats, error) {
	snapshot := s.current.Load()
	if snapshot == nil {
		return nil, domain.BatchStats{}, domain.ErrNotLoaded
	}

	rows, stats := s.matching.VerifyBatch(snapshot, assignments)
	return rows, stats, nil
}

// Stats describes the current snapshot for the stats endpoint.
type Stats struct {
	Loaded        bool     `json:"loaded"`
	TotalContacts int      `json:"total_contacts"`
	TotalProducts int      `json:"total_products"`
	Products      []string `json:"products"`
}

// Stats returns load state and sorted product inventory.
func (s *CollabService) Stats() Stats {
	snapshot := s.current.Load()
	if snapshot == nil {
		return Stats{}
	}

	products := make([]string, 0, len(snapshot.KnownProducts))
	for p := range snapshot.KnownProducts {
		products = append(products, p)
	}
	sort.Strings(products)

	return Stats{
		Loaded:        true,
		TotalContacts: snapshot.IdentityCount(),
		TotalProducts: snapshot.ProductCount(),
		Products:      products,
	}
}

// verifyCacheKey builds a stable cache key from the normalized pair.
func verifyCacheKey(name, product string) string {
	return "verify:" + NormalizeName(name) + "|" + strings.ToLower(strings.TrimSpace(product))
}
