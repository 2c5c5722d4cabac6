package domain

import (
	"strconv"
	"time"
)

// CellKind classifies a tabular cell value at the ingestion boundary.
// Downstream logic only ever sees the stringified form.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

// Cell is a single value from a parsed CSV/Excel row.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

// String returns the cell content as it participates in row text.
// Empty cells contribute nothing.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return formatNumber(c.Number)
	default:
		return ""
	}
}

// IsEmpty reports whether the cell carries no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty || (c.Kind == CellText && c.Text == "")
}

// formatNumber renders a numeric cell the way it participates in row text.
// Whole numbers drop the decimal part ("3", not "3.000000").
func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Row is one parsed spreadsheet row.
type Row []Cell

// Table is a parsed tabular file: a header row plus data rows.
// Column layout is unknown and inconsistent across files.
type Table struct {
	Name    string // source filename, for logging
	Headers []string
	Rows    []Row
}

// FileResult is the outcome of reading one candidate file: either a parsed
// table or a skip reason. One bad file never aborts a batch.
type FileResult struct {
	File       string
	Table      *Table
	SkipReason string
}

// Skipped reports whether the file was excluded from the batch.
func (r FileResult) Skipped() bool {
	return r.Table == nil
}

// Snapshot is the immutable result of one ingestion run: every canonical
// identity mapped to the multiset of products it collaborated on, plus the
// set of all products seen. A new ingest produces a new snapshot; callers
// must never mutate one.
type Snapshot struct {
	Identities    map[string][]string
	KnownProducts map[string]bool
	LoadedAt      time.Time
	FilesLoaded   int
	FilesSkipped  int
}

// IdentityCount returns the number of unique contacts in the snapshot.
func (s *Snapshot) IdentityCount() int {
	if s == nil {
		return 0
	}
	return len(s.Identities)
}

// ProductCount returns the number of unique products seen during ingestion.
func (s *Snapshot) ProductCount() int {
	if s == nil {
		return 0
	}
	return len(s.KnownProducts)
}

// Match is a resolved identity with its similarity score (0-100).
type Match struct {
	Name  string `json:"matched_name"`
	Score int    `json:"score"`
}

// VerificationStatus classifies a single name-product assignment check.
type VerificationStatus string

const (
	StatusVerified   VerificationStatus = "VERIFIED"
	StatusMismatch   VerificationStatus = "MISMATCH"
	StatusNoProducts VerificationStatus = "NO_PRODUCTS"
	StatusNoData     VerificationStatus = "NO_DATA"
)

// VerificationResult is the outcome of verifying one assignment.
// Products holds the de-duplicated collaboration history of the matched
// identity; it is empty when no identity resolved.
type VerificationResult struct {
	Status      VerificationStatus `json:"status"`
	MatchedName string             `json:"matched_name"`
	Score       int                `json:"score"`
	Products    []string           `json:"products"`
	Message     string             `json:"message"`
	Verified    bool               `json:"verified"`
}

// Assignment is one name-product pair submitted for verification.
type Assignment struct {
	Name    string `json:"name" binding:"required"`
	Product string `json:"product" binding:"required"`
}

// BatchRow is one row of a batch verification report, in input order.
type BatchRow struct {
	Name            string             `json:"name"`
	AssignedProduct string             `json:"assigned_product"`
	Status          VerificationStatus `json:"status"`
	Verified        bool               `json:"verified"`
	Score           int                `json:"score"`
	Products        []string           `json:"products"`
	Message         string             `json:"message"`
}

// BatchStats aggregates a batch verification run.
type BatchStats struct {
	Total      int `json:"total"`
	Verified   int `json:"verified"`
	Mismatches int `json:"mismatches"`
	NoData     int `json:"no_data"`
}

// Profile is the persisted enrichment record for a canonical identity.
// Ratings are 0 (unset) to 5.
type Profile struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	DisplayName         string    `json:"display_name"`
	InstagramHandle     string    `json:"instagram_handle"`
	RatingReliability   int       `json:"rating_reliability"`
	RatingContentQual   int       `json:"rating_content_quality"`
	RatingCommunication int       `json:"rating_communication"`
	Notes               string    `json:"notes"`
	AISummary           string    `json:"ai_summary"`
	AISummaryUpdatedAt  time.Time `json:"ai_summary_updated_at,omitempty"`
	NotionPageID        string    `json:"notion_page_id"`
	NotionStatus        string    `json:"notion_status"`
	NotionProdukt       string    `json:"notion_produkt"`
	NotionFollower      int64     `json:"notion_follower"`
	NotionSyncedAt      time.Time `json:"notion_synced_at,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// CollaborationEntry is one logged collaboration for a profile.
type CollaborationEntry struct {
	ID           int64     `json:"id"`
	Influencer   string    `json:"influencer_name"`
	Product      string    `json:"product"`
	CampaignName string    `json:"campaign_name"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
}

// NotionEntry is one flattened row from the workspace database.
type NotionEntry struct {
	PageID   string `json:"page_id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Produkt  string `json:"produkt"`
	Follower int64  `json:"follower"`
}
