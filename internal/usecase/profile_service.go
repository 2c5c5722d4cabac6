package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/collabmatch/backend/internal/domain"
)

// notionTokenSetting is the settings key holding the workspace token.
const notionTokenSetting = "notion_token"

// ProfileService manages enrichment data (ratings, notes, AI summaries,
// Notion fields) persisted against canonical identities. Names are resolved
// through the collaboration service first so enrichment attaches to the
// deduplicated identity, not the raw spelling.
type ProfileService struct {
	repo       domain.ProfileRepository
	settings   domain.SettingsRepository
	collab     *CollabService
	notion     domain.NotionClient
	summarizer domain.Summarizer
	cache      domain.CacheRepository
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewProfileService creates the profile enrichment service.
func NewProfileService(
	repo domain.ProfileRepository,
	settings domain.SettingsRepository,
	collab *CollabService,
	notion domain.NotionClient,
	summarizer domain.Summarizer,
	cache domain.CacheRepository,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *ProfileService {
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{
		repo:       repo,
		settings:   settings,
		collab:     collab,
		notion:     notion,
		summarizer: summarizer,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// CanonicalName resolves a raw name to its canonical identity where
// possible, falling back to the normalized form when no history matches.
func (s *ProfileService) CanonicalName(name string) string {
	if match, err := s.collab.Resolve(name); err == nil {
		return match.Name
	}
	return NormalizeName(name)
}

// GetProfile fetches the enrichment profile for a name, keyed canonically.
func (s *ProfileService) GetProfile(ctx context.Context, name string) (*domain.Profile, error) {
	canonical := s.CanonicalName(name)
	if canonical == "" {
		return nil, domain.ErrInvalidRequest
	}
	return s.repo.GetProfile(ctx, canonical)
}

// UpsertProfile creates or updates the enrichment profile for a name.
// The caller supplies display fields and ratings; the canonical name is the
// storage key.
func (s *ProfileService) UpsertProfile(ctx context.Context, name string, profile *domain.Profile) (*domain.Profile, error) {
	canonical := s.CanonicalName(name)
	if canonical == "" {
		return nil, domain.ErrInvalidRequest
	}

	profile.Name = canonical
	if profile.DisplayName == "" {
		profile.DisplayName = name
	}
	return s.repo.UpsertProfile(ctx, profile)
}

// ListProfiles returns all profiles ordered by display name.
func (s *ProfileService) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	return s.repo.ListProfiles(ctx)
}

// SearchProfiles returns profiles whose name or display name contains the
// query.
func (s *ProfileService) SearchProfiles(ctx context.Context, query string) ([]domain.Profile, error) {
	return s.repo.SearchProfiles(ctx, query)
}

// LogCollaboration records a planned or completed collaboration.
func (s *ProfileService) LogCollaboration(ctx context.Context, entry domain.CollaborationEntry) error {
	entry.Influencer = s.CanonicalName(entry.Influencer)
	if entry.Influencer == "" || entry.Product == "" {
		return domain.ErrInvalidRequest
	}
	if entry.Status == "" {
		entry.Status = "planned"
	}
	return s.repo.AddCollaboration(ctx, entry)
}

// GetCollaborations lists logged collaborations for a name, newest first.
func (s *ProfileService) GetCollaborations(ctx context.Context, name string) ([]domain.CollaborationEntry, error) {
	return s.repo.GetCollaborations(ctx, s.CanonicalName(name))
}

// GenerateSummary produces and persists a short AI profile summary from the
// collaboration history and ratings. Cached per profile between reloads.
func (s *ProfileService) GenerateSummary(ctx context.Context, name string) (string, error) {
	canonical := s.CanonicalName(name)
	if canonical == "" {
		return "", domain.ErrInvalidRequest
	}

	cacheKey := "summary:" + canonical
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			if summary, ok := cached.(string); ok {
				return summary, nil
			}
		}
	}

	profile, err := s.repo.GetProfile(ctx, canonical)
	if err != nil {
		if !errors.Is(err, domain.ErrProfileNotFound) {
			return "", err
		}
		profile = &domain.Profile{Name: canonical, DisplayName: name}
	}

	products, err := s.collab.GetProducts(canonical)
	if err != nil && !errors.Is(err, domain.ErrNotLoaded) {
		return "", err
	}

	summary, err := s.summarizer.SummarizeProfile(ctx, profile, products)
	if err != nil {
		return "", fmt.Errorf("generate summary for %q: %w", canonical, err)
	}

	profile.AISummary = summary
	profile.AISummaryUpdatedAt = time.Now()
	if _, err := s.repo.UpsertProfile(ctx, profile); err != nil {
		s.logger.Warn("failed to persist AI summary", zap.String("name", canonical), zap.Error(err))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summary, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache AI summary", zap.Error(err))
		}
	}

	return summary, nil
}

// NotionSyncResult reports one workspace sync run.
type NotionSyncResult struct {
	Fetched  int `json:"fetched"`
	Attached int `json:"attached"`
	Created  int `json:"created"`
}

// SyncNotion pulls every entry from the workspace database and attaches it to
// the matching canonical identity, creating profiles for entries with no
// local match.
func (s *ProfileService) SyncNotion(ctx context.Context) (*NotionSyncResult, error) {
	token, err := s.settings.GetSetting(ctx, notionTokenSetting)
	if err != nil || token == "" {
		return nil, domain.ErrNotionNotConnected
	}

	entries, err := s.notion.FetchAllEntries(ctx, token)
	if err != nil {
		return nil, err
	}

	result := &NotionSyncResult{Fetched: len(entries)}
	for _, entry := range entries {
		if entry.Name == "" {
			continue
		}

		canonical := s.CanonicalName(entry.Name)
		if canonical == "" {
			continue
		}

		if _, err := s.repo.GetProfile(ctx, canonical); errors.Is(err, domain.ErrProfileNotFound) {
			if _, err := s.repo.UpsertProfile(ctx, &domain.Profile{
				Name:        canonical,
				DisplayName: entry.Name,
			}); err != nil {
				s.logger.Warn("failed to create profile from notion entry",
					zap.String("name", canonical), zap.Error(err))
				continue
			}
			result.Created++
		}

		if err := s.repo.UpdateNotionData(ctx, canonical, entry); err != nil {
			s.logger.Warn("failed to attach notion data",
				zap.String("name", canonical), zap.Error(err))
			continue
		}
		result.Attached++
	}

	s.logger.Info("notion sync complete",
		zap.Int("fetched", result.Fetched),
		zap.Int("attached", result.Attached),
		zap.Int("created", result.Created))

	return result, nil
}

// NotionStatus describes the integration connection state.
type NotionStatus struct {
	Connected    bool   `json:"connected"`
	TokenPreview string `json:"token_preview,omitempty"`
}

// GetNotionStatus reports whether a workspace token is stored.
func (s *ProfileService) GetNotionStatus(ctx context.Context) NotionStatus {
	token, err := s.settings.GetSetting(ctx, notionTokenSetting)
	if err != nil || token == "" {
		return NotionStatus{}
	}

	preview := "***"
	if len(token) > 12 {
		preview = token[:8] + "..." + token[len(token)-4:]
	}
	return NotionStatus{Connected: true, TokenPreview: preview}
}

// SaveNotionToken validates and stores the workspace token.
func (s *ProfileService) SaveNotionToken(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrInvalidRequest
	}
	if err := s.notion.TestConnection(ctx, token); err != nil {
		return err
	}
	return s.settings.SetSetting(ctx, notionTokenSetting, token)
}

// ClearNotionToken disconnects the workspace integration.
func (s *ProfileService) ClearNotionToken(ctx context.Context) error {
	return s.settings.DeleteSetting(ctx, notionTokenSetting)
}
