package usecase

import (
	"errors"
	"strings"
	"testing"

	"github.com/collabmatch/backend/internal/domain"
)

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		name string
		s1   string
		s2   string
		want int
	}{
		{
			name: "identical strings",
			s1:   "anna schmidt",
			s2:   "anna schmidt",
			want: 100,
		},
		{
			name: "word order ignored",
			s1:   "doe jane",
			s2:   "jane doe",
			want: 100,
		},
		{
			name: "token subset scores full",
			s1:   "maria schmidt",
			s2:   "maria schmidt fitness",
			want: 100,
		},
		{
			name: "empty side scores zero",
			s1:   "",
			s2:   "jane doe",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TokenSetRatio(tt.s1, tt.s2)
			if got != tt.want {
				t.Errorf("TokenSetRatio(%q, %q) = %d, want %d", tt.s1, tt.s2, got, tt.want)
			}
		})
	}

	t.Run("different surnames score below resolve threshold", func(t *testing.T) {
		got := TokenSetRatio("anna mueller", "anna schmidt")
		if got >= 70 {
			t.Errorf("TokenSetRatio(anna mueller, anna schmidt) = %d, want < 70", got)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		a := TokenSetRatio("jane doe", "doe jane fitness")
		b := TokenSetRatio("doe jane fitness", "jane doe")
		if a != b {
			t.Errorf("TokenSetRatio not symmetric: %d vs %d", a, b)
		}
	})
}

func TestPartialRatio(t *testing.T) {
	t.Run("substring scores full", func(t *testing.T) {
		if got := PartialRatio("kakao", "rohkakao peru"); got != 100 {
			t.Errorf("PartialRatio(kakao, rohkakao peru) = %d, want 100", got)
		}
	})

	t.Run("argument order does not matter", func(t *testing.T) {
		a := PartialRatio("matcha", "gmf matcha 30g")
		b := PartialRatio("gmf matcha 30g", "matcha")
		if a != b {
			t.Errorf("PartialRatio not symmetric: %d vs %d", a, b)
		}
		if a != 100 {
			t.Errorf("PartialRatio(matcha, gmf matcha 30g) = %d, want 100", a)
		}
	})

	t.Run("unrelated products score low", func(t *testing.T) {
		if got := PartialRatio("matcha", "sencha"); got > 80 {
			t.Errorf("PartialRatio(matcha, sencha) = %d, want <= 80", got)
		}
	})

	t.Run("empty string scores zero", func(t *testing.T) {
		if got := PartialRatio("", "matcha"); got != 0 {
			t.Errorf("PartialRatio(empty, matcha) = %d, want 0", got)
		}
	})
}

func TestResolveIdentity(t *testing.T) {
	service := NewMatchingService(MatchConfig{}, nil)
	identities := []string{"jane doe", "john roe", "anna schmidt"}

	t.Run("exact name resolves at full score", func(t *testing.T) {
		match, err := service.ResolveIdentity("Jane Doe", identities)
		if err != nil {
			t.Fatalf("ResolveIdentity() error = %v, want nil", err)
		}
		if match.Name != "jane doe" {
			t.Errorf("match.Name = %q, want jane doe", match.Name)
		}
		if match.Score != 100 {
			t.Errorf("match.Score = %d, want 100", match.Score)
		}
	})

	t.Run("handle resolves to contact", func(t *testing.T) {
		match, err := service.ResolveIdentity("@jane.doe", identities)
		if err != nil {
			t.Fatalf("ResolveIdentity() error = %v, want nil", err)
		}
		if match.Name != "jane doe" {
			t.Errorf("match.Name = %q, want jane doe", match.Name)
		}
	})

	t.Run("reordered tokens resolve", func(t *testing.T) {
		match, err := service.ResolveIdentity("Schmidt Anna", identities)
		if err != nil {
			t.Fatalf("ResolveIdentity() error = %v, want nil", err)
		}
		if match.Name != "anna schmidt" {
			t.Errorf("match.Name = %q, want anna schmidt", match.Name)
		}
	})

	t.Run("no identity above threshold", func(t *testing.T) {
		_, err := service.ResolveIdentity("Completely Unrelated", identities)
		if !errors.Is(err, domain.ErrNoMatch) {
			t.Errorf("ResolveIdentity() error = %v, want ErrNoMatch", err)
		}
	})

	t.Run("empty query", func(t *testing.T) {
		_, err := service.ResolveIdentity("   ", identities)
		if !errors.Is(err, domain.ErrNoMatch) {
			t.Errorf("ResolveIdentity() error = %v, want ErrNoMatch", err)
		}
	})

	t.Run("equal scores pick lexicographically smaller identity", func(t *testing.T) {
		// "anna" is a token subset of both, so both score 100
		match, err := service.ResolveIdentity("Anna", []string{"anna walter", "anna berg"})
		if err != nil {
			t.Fatalf("ResolveIdentity() error = %v, want nil", err)
		}
		if match.Name != "anna berg" {
			t.Errorf("match.Name = %q, want anna berg", match.Name)
		}
	})
}

func testSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Identities: map[string][]string{
			"jane doe": {"rohkakao peru", "matcha", "rohkakao peru"},
			"john roe": {},
		},
		KnownProducts: map[string]bool{
			"rohkakao peru": true,
			"matcha":        true,
		},
	}
}

func TestVerifyAssignment(t *testing.T) {
	service := NewMatchingService(MatchConfig{}, nil)

	t.Run("product in history is verified", func(t *testing.T) {
		result := service.VerifyAssignment(testSnapshot(), "Jane Doe", "Rohkakao")
		if result.Status != domain.StatusVerified {
			t.Fatalf("Status = %s, want %s", result.Status, domain.StatusVerified)
		}
		if !result.Verified {
			t.Error("Verified = false, want true")
		}
		if result.MatchedName != "jane doe" {
			t.Errorf("MatchedName = %q, want jane doe", result.MatchedName)
		}
		if !strings.Contains(result.Message, "Product matches history") {
			t.Errorf("Message = %q, want match confirmation", result.Message)
		}
	})

	t.Run("history is de-duplicated in first-seen order", func(t *testing.T) {
		result := service.VerifyAssignment(testSnapshot(), "Jane Doe", "Rohkakao")
		want := []string{"rohkakao peru", "matcha"}
		if len(result.Products) != len(want) {
			t.Fatalf("Products = %v, want %v", result.Products, want)
		}
		for i := range want {
			if result.Products[i] != want[i] {
				t.Errorf("Products[%d] = %q, want %q", i, result.Products[i], want[i])
			}
		}
	})

	t.Run("unknown product reports mismatch with alternatives", func(t *testing.T) {
		result := service.VerifyAssignment(testSnapshot(), "Jane Doe", "Sencha")
		if result.Status != domain.StatusMismatch {
			t.Fatalf("Status = %s, want %s", result.Status, domain.StatusMismatch)
		}
		if result.Verified {
			t.Error("Verified = true, want false")
		}
		if !strings.Contains(result.Message, "rohkakao peru") {
			t.Errorf("Message = %q, want alternatives listed", result.Message)
		}
	})

	t.Run("contact without history", func(t *testing.T) {
		result := service.VerifyAssignment(testSnapshot(), "John Roe", "Matcha")
		if result.Status != domain.StatusNoProducts {
			t.Fatalf("Status = %s, want %s", result.Status, domain.StatusNoProducts)
		}
		if result.Message != "Contact found but no product history" {
			t.Errorf("Message = %q", result.Message)
		}
	})

	t.Run("unknown contact", func(t *testing.T) {
		result := service.VerifyAssignment(testSnapshot(), "Unknown Person", "Matcha")
		if result.Status != domain.StatusNoData {
			t.Fatalf("Status = %s, want %s", result.Status, domain.StatusNoData)
		}
		if result.Message != "No collaboration history found" {
			t.Errorf("Message = %q", result.Message)
		}
		if result.MatchedName != "" {
			t.Errorf("MatchedName = %q, want empty", result.MatchedName)
		}
	})
}

func TestVerifyBatch(t *testing.T) {
	service := NewMatchingService(MatchConfig{}, nil)

	assignments := []domain.Assignment{
		{Name: "Jane Doe", Product: "Rohkakao"},
		{Name: "Jane Doe", Product: "Sencha"},
		{Name: "John Roe", Product: "Matcha"},
		{Name: "Unknown Person", Product: "Matcha"},
	}

	rows, stats := service.VerifyBatch(testSnapshot(), assignments)

	if len(rows) != 4 {
		t.Fatalf("len(rows) = %d, want 4", len(rows))
	}

	// Rows come back in input order
	wantStatus := []domain.VerificationStatus{
		domain.StatusVerified,
		domain.StatusMismatch,
		domain.StatusNoProducts,
		domain.StatusNoData,
	}
	for i, want := range wantStatus {
		if rows[i].Status != want {
			t.Errorf("rows[%d].Status = %s, want %s", i, rows[i].Status, want)
		}
		if rows[i].Name != assignments[i].Name {
			t.Errorf("rows[%d].Name = %q, want %q", i, rows[i].Name, assignments[i].Name)
		}
	}

	if stats.Total != 4 {
		t.Errorf("stats.Total = %d, want 4", stats.Total)
	}
	if stats.Verified != 1 {
		t.Errorf("stats.Verified = %d, want 1", stats.Verified)
	}
	if stats.Mismatches != 1 {
		t.Errorf("stats.Mismatches = %d, want 1", stats.Mismatches)
	}
	if stats.NoData != 1 {
		t.Errorf("stats.NoData = %d, want 1", stats.NoData)
	}
}
