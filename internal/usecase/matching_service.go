package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"

	"github.com/collabmatch/backend/internal/domain"
)

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	MinResolveScore       int // minimum similarity for identity resolution (0-100)
	ProductMatchThreshold int // minimum partial similarity for product history match
}

// MatchingService resolves free-text names against known canonical identities
// and verifies name-product assignments against collaboration history.
type MatchingService struct {
	minResolveScore       int
	productMatchThreshold int
	logger                *zap.Logger
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(config MatchConfig, logger *zap.Logger) *MatchingService {
	minScore := config.MinResolveScore
	if minScore <= 0 {
		minScore = 70
	}

	productThreshold := config.ProductMatchThreshold
	if productThreshold <= 0 {
		productThreshold = 80
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &MatchingService{
		minResolveScore:       minScore,
		productMatchThreshold: productThreshold,
		logger:                logger,
	}
}

// ResolveIdentity finds the best-scoring known identity for a query name.
// The scan is linear over all identities; fine for hundreds to low thousands
// of contacts. Equal top scores resolve to the lexicographically smaller
// identity so the result does not depend on map iteration order.
// Returns ErrNoMatch when nothing reaches the minimum score.
func (s *MatchingService) ResolveIdentity(queryName string, identities []string) (*domain.Match, error) {
	normalized := NormalizeName(queryName)
	if normalized == "" {
		return nil, domain.ErrNoMatch
	}

	bestName := ""
	bestScore := -1

	for _, candidate := range identities {
		score := TokenSetRatio(normalized, candidate)
		if score > bestScore || (score == bestScore && candidate < bestName) {
			bestScore = score
			bestName = candidate
		}
	}

	if bestName == "" || bestScore < s.minResolveScore {
		return nil, domain.ErrNoMatch
	}

	s.logger.Debug("identity resolved",
		zap.String("query", queryName),
		zap.String("matched", bestName),
		zap.Int("score", bestScore))

	return &domain.Match{Name: bestName, Score: bestScore}, nil
}

// VerifyAssignment checks one name-product assignment against the snapshot.
// Always returns a classified result; resolution misses surface as NO_DATA,
// never as an error.
func (s *MatchingService) VerifyAssignment(snapshot *domain.Snapshot, name, product string) *domain.VerificationResult {
	match, err := s.ResolveIdentity(name, identityList(snapshot))
	if err != nil {
		return &domain.VerificationResult{
			Status:   domain.StatusNoData,
			Message:  "No collaboration history found",
			Products: []string{},
		}
	}

	history := uniqueProducts(snapshot.Identities[match.Name])

	// Partial similarity tolerates naming variants like
	// "Kakao Nibs" vs "GMF Kakao Nibs 250g".
	matched := false
	for _, p := range history {
		if PartialRatio(strings.ToLower(product), strings.ToLower(p)) > s.productMatchThreshold {
			matched = true
			break
		}
	}

	switch {
	case matched:
		return &domain.VerificationResult{
			Status:      domain.StatusVerified,
			Message:     fmt.Sprintf("✓ Product matches history (score: %d)", match.Score),
			MatchedName: match.Name,
			Score:       match.Score,
			Products:    history,
			Verified:    true,
		}
	case len(history) > 0:
		alternatives := history
		if len(alternatives) > 3 {
			alternatives = alternatives[:3]
		}
		return &domain.VerificationResult{
			Status:      domain.StatusMismatch,
			Message:     fmt.Sprintf("⚠ Product not in history. Alternatives: %s", strings.Join(alternatives, ", ")),
			MatchedName: match.Name,
			Score:       match.Score,
			Products:    history,
		}
	default:
		return &domain.VerificationResult{
			Status:      domain.StatusNoProducts,
			Message:     "Contact found but no product history",
			MatchedName: match.Name,
			Score:       match.Score,
			Products:    []string{},
		}
	}
}

// VerifyBatch verifies assignments independently, one result row per input
// pair, preserving input order.
func (s *MatchingService) VerifyBatch(snapshot *domain.Snapshot, assignments []domain.Assignment) ([]domain.BatchRow, domain.BatchStats) {
	rows := make([]domain.BatchRow, 0, len(assignments))
	stats := domain.BatchStats{Total: len(assignments)}

	for _, a := range assignments {
		result := s.VerifyAssignment(snapshot, a.Name, a.Product)
		rows = append(rows, domain.BatchRow{
			Name:            a.Name,
			AssignedProduct: a.Product,
			Status:          result.Status,
			Verified:        result.Verified,
			Score:           result.Score,
			Products:        result.Products,
			Message:         result.Message,
		})

		switch result.Status {
		case domain.StatusVerified:
			stats.Verified++
		case domain.StatusMismatch:
			stats.Mismatches++
		case domain.StatusNoData:
			stats.NoData++
		}
	}

	return rows, stats
}

// identityList flattens the snapshot's identity keys for the linear scan.
func identityList(snapshot *domain.Snapshot) []string {
	if snapshot == nil {
		return nil
	}
	names := make([]string, 0, len(snapshot.Identities))
	for name := range snapshot.Identities {
		names = append(names, name)
	}
	return names
}

// uniqueProducts de-duplicates a product multiset, keeping first-seen order
// for stable output.
func uniqueProducts(products []string) []string {
	seen := make(map[string]bool, len(products))
	out := make([]string, 0, len(products))
	for _, p := range products {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// TokenSetRatio scores two strings 0-100 using token-set similarity: both
// sides are tokenized on whitespace and compared via their sorted
// intersection and sorted unions. Robust to word reordering and to one name
// being a token subset of the other ("maria schmidt" vs
// "schmidt maria fitness" scores high).
func TokenSetRatio(s1, s2 string) int {
	tokens1 := tokenSet(s1)
	tokens2 := tokenSet(s2)

	if len(tokens1) == 0 || len(tokens2) == 0 {
		return 0
	}

	var intersection, rest1, rest2 []string
	for t := range tokens1 {
		if tokens2[t] {
			intersection = append(intersection, t)
		} else {
			rest1 = append(rest1, t)
		}
	}
	for t := range tokens2 {
		if !tokens1[t] {
			rest2 = append(rest2, t)
		}
	}

	sort.Strings(intersection)
	sort.Strings(rest1)
	sort.Strings(rest2)

	base := strings.Join(intersection, " ")
	combined1 := strings.TrimSpace(base + " " + strings.Join(rest1, " "))
	combined2 := strings.TrimSpace(base + " " + strings.Join(rest2, " "))

	score := ratio(base, combined1)
	if r := ratio(base, combined2); r > score {
		score = r
	}
	if r := ratio(combined1, combined2); r > score {
		score = r
	}
	return score
}

// PartialRatio scores the best alignment of the shorter string against every
// equally long window of the longer one, 0-100. Substring-tolerant: a short
// product name contained in a longer variant scores 100.
func PartialRatio(s1, s2 string) int {
	shorter := []rune(s1)
	longer := []rune(s2)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		return 0
	}

	best := 0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		window := string(longer[i : i+len(shorter)])
		if r := ratio(string(shorter), window); r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

// ratio is the Levenshtein similarity of two strings as a 0-100 score,
// normalized by the longer length.
func ratio(s1, s2 string) int {
	if s1 == s2 {
		return 100
	}
	len1 := len([]rune(s1))
	len2 := len([]rune(s2))
	longest := len1
	if len2 > longest {
		longest = len2
	}
	if longest == 0 {
		return 100
	}

	dist := levenshtein.ComputeDistance(s1, s2)
	return int(float64(longest-dist) / float64(longest) * 100)
}

// tokenSet splits a string into its set of whitespace-separated tokens.
func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(s) {
		set[t] = true
	}
	return set
}
