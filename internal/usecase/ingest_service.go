package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/collabmatch/backend/internal/domain"
)

// nameHeaderHints are header fragments that mark the name-bearing column,
// matched case-insensitively against the first header line. German/English
// business usage from the office spreadsheets this feeds on.
var nameHeaderHints = []string{"name", "ig name", "mit wem", "influencer", "person"}

// latinLetterPattern detects text cells for the column heuristic; umlauts
// count as letters.
var latinLetterPattern = regexp.MustCompile(`[a-zA-ZäöüÄÖÜß]`)

// minNameLength is the shortest normalized name accepted as an identity.
const minNameLength = 3

// maxDetectionColumns caps the text heuristic to the leading columns.
const maxDetectionColumns = 5

// IngestService builds collaboration snapshots from directories of messy
// spreadsheet exports. Best-effort: unreadable files and unusable rows are
// skipped, never fatal to the batch.
type IngestService struct {
	source  domain.TableSource
	catalog domain.Catalog
	logger  *zap.Logger
}

// NewIngestService creates an ingest service over the given table source and
// product catalog.
func NewIngestService(source domain.TableSource, catalog domain.Catalog, logger *zap.Logger) *IngestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestService{
		source:  source,
		catalog: catalog,
		logger:  logger,
	}
}

// Ingest reads every file matched by patterns (default: all CSV and xlsx
// directly in dir) and builds a fresh snapshot. A missing directory fails the
// call; an empty directory yields an empty snapshot.
func (s *IngestService) Ingest(dir string, patterns []string) (*domain.Snapshot, error) {
	results, err := s.source.ReadDir(dir, patterns)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", dir, err)
	}

	snapshot := &domain.Snapshot{
		Identities:    make(map[string][]string),
		KnownProducts: make(map[string]bool),
		LoadedAt:      time.Now(),
	}

	for _, result := range results {
		if result.Skipped() {
			snapshot.FilesSkipped++
			s.logger.Warn("skipping file",
				zap.String("file", result.File),
				zap.String("reason", result.SkipReason))
			continue
		}

		s.ingestTable(snapshot, result.Table)
		snapshot.FilesLoaded++
		s.logger.Info("loaded file", zap.String("file", result.File))
	}

	s.logger.Info("ingestion complete",
		zap.Int("files_loaded", snapshot.FilesLoaded),
		zap.Int("files_skipped", snapshot.FilesSkipped),
		zap.Int("contacts", snapshot.IdentityCount()),
		zap.Int("products", snapshot.ProductCount()))

	return snapshot, nil
}

// ingestTable extracts one identity and zero or more product tags per row.
func (s *IngestService) ingestTable(snapshot *domain.Snapshot, table *domain.Table) {
	nameCol := s.findNameColumn(table)

	for _, row := range table.Rows {
		if nameCol >= len(row) {
			continue
		}

		name := NormalizeName(FirstLine(row[nameCol].String()))
		if name == "" || utf8.RuneCountInString(name) < minNameLength {
			continue
		}

		products := TagProducts(BuildRowText(row), s.catalog)

		// Duplicates are kept on purpose: repeat collaborations count
		snapshot.Identities[name] = append(snapshot.Identities[name], products...)
		for _, p := range products {
			snapshot.KnownProducts[p] = true
		}
	}
}

// findNameColumn locates the name-bearing column with a three-tier fallback:
// header hints, then the leading column with the most text cells, then
// column 0.
func (s *IngestService) findNameColumn(table *domain.Table) int {
	// Tier 1: header hints; multiline headers only count their first line
	for colIdx, header := range table.Headers {
		headerLower := strings.ToLower(strings.TrimSpace(header))
		headerLower = strings.TrimSpace(FirstLine(headerLower))
		for _, hint := range nameHeaderHints {
			if strings.Contains(headerLower, hint) {
				return colIdx
			}
		}
	}

	// Tier 2: among the first columns, pick the one with the most non-empty
	// text cells longer than 2 characters that contain a Latin letter
	bestCol := 0
	bestCount := 0
	limit := len(table.Headers)
	if limit > maxDetectionColumns {
		limit = maxDetectionColumns
	}
	for colIdx := 0; colIdx < limit; colIdx++ {
		textCount := 0
		for _, row := range table.Rows {
			if colIdx >= len(row) {
				continue
			}
			cell := row[colIdx]
			if cell.Kind != domain.CellText {
				continue
			}
			value := strings.TrimSpace(cell.Text)
			if len(value) > 2 && latinLetterPattern.MatchString(value) {
				textCount++
			}
		}
		if textCount > bestCount {
			bestCount = textCount
			bestCol = colIdx
		}
	}
	if bestCount > 0 {
		return bestCol
	}

	// Tier 3: give up and take the first column
	s.logger.Warn("could not determine name column, using column 0",
		zap.String("file", table.Name))
	return 0
}

// BuildRowText concatenates every non-empty cell of a row into the lowercased,
// space-padded form the product tagger matches against. The padding lets
// boundary-anchored fragments like " rus " match without word-boundary regex.
func BuildRowText(row domain.Row) string {
	parts := make([]string, 0, len(row))
	for _, cell := range row {
		if cell.IsEmpty() {
			continue
		}
		parts = append(parts, cell.String())
	}
	return " " + strings.ToLower(strings.Join(parts, " ")) + " "
}

// TagProducts maps row text to catalog products by exact substring
// containment of any keyword fragment. Deterministic and catalog-driven; a
// row may tag zero, one, or many products. Catalog order only affects output
// order, never membership.
func TagProducts(rowText string, catalog domain.Catalog) []string {
	var products []string
	for _, entry := range catalog {
		for _, keyword := range entry.Keywords {
			if strings.Contains(rowText, keyword) {
				products = append(products, entry.Product)
				break
			}
		}
	}
	return products
}
