package domain

import (
	"context"
	"time"
)

// TableSource defines the interface for reading tabular files from a
// directory. A missing directory is the only error; unreadable files are
// reported per file inside the results.
type TableSource interface {
	ReadDir(dir string, patterns []string) ([]FileResult, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear()
}

// ProfileRepository defines the interface for influencer profile persistence
type ProfileRepository interface {
	GetProfile(ctx context.Context, name string) (*Profile, error)
	UpsertProfile(ctx context.Context, profile *Profile) (*Profile, error)
	ListProfiles(ctx context.Context) ([]Profile, error)
	SearchProfiles(ctx context.Context, query string) ([]Profile, error)
	UpdateNotionData(ctx context.Context, name string, entry NotionEntry) error
	AddCollaboration(ctx context.Context, entry CollaborationEntry) error
	GetCollaborations(ctx context.Context, influencer string) ([]CollaborationEntry, error)
}

// SettingsRepository defines the interface for key-value app settings
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}

// NotionClient defines the interface for the read-only workspace database sync
type NotionClient interface {
	TestConnection(ctx context.Context, token string) error
	FetchAllEntries(ctx context.Context, token string) ([]NotionEntry, error)
}

// Summarizer defines the interface for AI profile summary generation
type Summarizer interface {
	SummarizeProfile(ctx context.Context, profile *Profile, products []string) (string, error)
}
