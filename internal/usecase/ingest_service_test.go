package usecase

import (
	"errors"
	"testing"

	"github.com/collabmatch/backend/internal/domain"
)

// fakeSource feeds canned file results into the ingest service.
type fakeSource struct {
	results []domain.FileResult
	err     error
}

func (f *fakeSource) ReadDir(dir string, patterns []string) ([]domain.FileResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func textCell(s string) domain.Cell {
	return domain.Cell{Kind: domain.CellText, Text: s}
}

func numberCell(n float64) domain.Cell {
	return domain.Cell{Kind: domain.CellNumber, Number: n}
}

func testCatalog() domain.Catalog {
	return domain.Catalog{
		{Product: "Rohkakao Peru", Keywords: []string{"peru", "rohkakao per"}},
		{Product: "Matcha", Keywords: []string{"matcha"}},
		{Product: "Rise Up & Shine", Keywords: []string{"rise up", " rus "}},
	}
}

func TestIngest(t *testing.T) {
	t.Run("builds snapshot from loaded tables", func(t *testing.T) {
		source := &fakeSource{results: []domain.FileResult{
			{
				File: "contacts.csv",
				Table: &domain.Table{
					Name:    "contacts.csv",
					Headers: []string{"Name", "Produkt"},
					Rows: []domain.Row{
						{textCell("Jane Doe"), textCell("Rohkakao Peru 250g")},
						{textCell("Jane Doe"), textCell("Matcha")},
						{textCell("John Roe"), textCell("nur Anfrage")},
					},
				},
			},
		}}

		service := NewIngestService(source, testCatalog(), nil)
		snapshot, err := service.Ingest("data", nil)
		if err != nil {
			t.Fatalf("Ingest() error = %v, want nil", err)
		}

		if snapshot.FilesLoaded != 1 {
			t.Errorf("FilesLoaded = %d, want 1", snapshot.FilesLoaded)
		}
		if snapshot.IdentityCount() != 2 {
			t.Errorf("IdentityCount() = %d, want 2", snapshot.IdentityCount())
		}

		products := snapshot.Identities["jane doe"]
		if len(products) != 2 || products[0] != "Rohkakao Peru" || products[1] != "Matcha" {
			t.Errorf("jane doe products = %v, want [Rohkakao Peru Matcha]", products)
		}
		if len(snapshot.Identities["john roe"]) != 0 {
			t.Errorf("john roe products = %v, want empty", snapshot.Identities["john roe"])
		}
		if !snapshot.KnownProducts["Matcha"] {
			t.Error("KnownProducts missing Matcha")
		}
	})

	t.Run("skipped files are counted, not fatal", func(t *testing.T) {
		source := &fakeSource{results: []domain.FileResult{
			{File: "broken.csv", SkipReason: "parse error"},
			{
				File: "good.csv",
				Table: &domain.Table{
					Headers: []string{"Name"},
					Rows:    []domain.Row{{textCell("Jane Doe")}},
				},
			},
		}}

		service := NewIngestService(source, testCatalog(), nil)
		snapshot, err := service.Ingest("data", nil)
		if err != nil {
			t.Fatalf("Ingest() error = %v, want nil", err)
		}
		if snapshot.FilesSkipped != 1 {
			t.Errorf("FilesSkipped = %d, want 1", snapshot.FilesSkipped)
		}
		if snapshot.FilesLoaded != 1 {
			t.Errorf("FilesLoaded = %d, want 1", snapshot.FilesLoaded)
		}
	})

	t.Run("missing directory fails", func(t *testing.T) {
		source := &fakeSource{err: domain.ErrDataDirMissing}
		service := NewIngestService(source, testCatalog(), nil)

		_, err := service.Ingest("nope", nil)
		if !errors.Is(err, domain.ErrDataDirMissing) {
			t.Errorf("Ingest() error = %v, want ErrDataDirMissing", err)
		}
	})

	t.Run("repeat collaborations keep the duplicate", func(t *testing.T) {
		source := &fakeSource{results: []domain.FileResult{
			{
				File: "contacts.csv",
				Table: &domain.Table{
					Headers: []string{"Name", "Produkt"},
					Rows: []domain.Row{
						{textCell("Jane Doe"), textCell("Matcha")},
						{textCell("Jane Doe"), textCell("Matcha Nachschub")},
					},
				},
			},
		}}

		service := NewIngestService(source, testCatalog(), nil)
		snapshot, err := service.Ingest("data", nil)
		if err != nil {
			t.Fatalf("Ingest() error = %v, want nil", err)
		}

		products := snapshot.Identities["jane doe"]
		if len(products) != 2 {
			t.Fatalf("products = %v, want two Matcha entries", products)
		}
	})

	t.Run("short and empty names are dropped", func(t *testing.T) {
		source := &fakeSource{results: []domain.FileResult{
			{
				File: "contacts.csv",
				Table: &domain.Table{
					Headers: []string{"Name"},
					Rows: []domain.Row{
						{textCell("Jo")},
						{textCell("")},
						{textCell("(Werbung)")},
						{textCell("Ute")},
					},
				},
			},
		}}

		service := NewIngestService(source, testCatalog(), nil)
		snapshot, err := service.Ingest("data", nil)
		if err != nil {
			t.Fatalf("Ingest() error = %v, want nil", err)
		}
		if snapshot.IdentityCount() != 1 {
			t.Errorf("IdentityCount() = %d, want only ute", snapshot.IdentityCount())
		}
	})

	t.Run("multiline cells use only their first line as the name", func(t *testing.T) {
		source := &fakeSource{results: []domain.FileResult{
			{
				File: "contacts.csv",
				Table: &domain.Table{
					Headers: []string{"Name"},
					Rows: []domain.Row{
						{textCell("Jane Doe\n@jane.doe\n3.2K Follower")},
					},
				},
			},
		}}

		service := NewIngestService(source, testCatalog(), nil)
		snapshot, err := service.Ingest("data", nil)
		if err != nil {
			t.Fatalf("Ingest() error = %v, want nil", err)
		}
		if _, ok := snapshot.Identities["jane doe"]; !ok {
			t.Errorf("identities = %v, want jane doe", snapshot.Identities)
		}
	})
}

func TestFindNameColumn(t *testing.T) {
	service := NewIngestService(&fakeSource{}, testCatalog(), nil)

	t.Run("header hint wins", func(t *testing.T) {
		table := &domain.Table{
			Headers: []string{"Datum", "Mit wem", "Produkt"},
			Rows: []domain.Row{
				{textCell("01.02."), textCell("Jane Doe"), textCell("Matcha")},
			},
		}
		if got := service.findNameColumn(table); got != 1 {
			t.Errorf("findNameColumn() = %d, want 1", got)
		}
	})

	t.Run("most texty leading column wins without header hint", func(t *testing.T) {
		table := &domain.Table{
			Headers: []string{"A", "B", "C"},
			Rows: []domain.Row{
				{numberCell(1), textCell("Jane Doe"), numberCell(50)},
				{numberCell(2), textCell("John Roe"), textCell("x")},
				{numberCell(3), textCell("Anna Schmidt"), numberCell(12)},
			},
		}
		if got := service.findNameColumn(table); got != 1 {
			t.Errorf("findNameColumn() = %d, want 1", got)
		}
	})

	t.Run("falls back to column 0", func(t *testing.T) {
		table := &domain.Table{
			Headers: []string{"A", "B"},
			Rows: []domain.Row{
				{numberCell(1), numberCell(2)},
			},
		}
		if got := service.findNameColumn(table); got != 0 {
			t.Errorf("findNameColumn() = %d, want 0", got)
		}
	})
}

func TestBuildRowText(t *testing.T) {
	row := domain.Row{
		textCell("Jane Doe"),
		domain.Cell{Kind: domain.CellEmpty},
		textCell("Rohkakao Peru"),
		numberCell(3),
	}

	got := BuildRowText(row)
	want := " jane doe rohkakao peru 3 "
	if got != want {
		t.Errorf("BuildRowText() = %q, want %q", got, want)
	}
}

func TestTagProducts(t *testing.T) {
	catalog := testCatalog()

	tests := []struct {
		name    string
		rowText string
		want    []string
	}{
		{
			name:    "single keyword",
			rowText: " jane doe matcha 30g ",
			want:    []string{"Matcha"},
		},
		{
			name:    "multiple products in one row",
			rowText: " jane doe rohkakao peru und matcha ",
			want:    []string{"Rohkakao Peru", "Matcha"},
		},
		{
			name:    "padded abbreviation needs its spaces",
			rowText: " paket rus versendet ",
			want:    []string{"Rise Up & Shine"},
		},
		{
			name:    "abbreviation inside a word does not match",
			rowText: " virus probe ",
			want:    nil,
		},
		{
			name:    "one product tagged once despite two keywords",
			rowText: " rohkakao peru aus peru ",
			want:    []string{"Rohkakao Peru"},
		},
		{
			name:    "no products",
			rowText: " nur eine anfrage ",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TagProducts(tt.rowText, catalog)
			if len(got) != len(tt.want) {
				t.Fatalf("TagProducts() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("TagProducts()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
