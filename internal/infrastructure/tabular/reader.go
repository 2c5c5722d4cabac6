package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/collabmatch/backend/internal/domain"
)

// utf8BOM is the byte-order mark some office exports prepend to CSV files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// defaultPatterns matches every CSV and xlsx file directly in the directory.
var defaultPatterns = []string{"*.csv", "*.xlsx"}

// Reader parses heterogeneous CSV/Excel exports into domain tables.
// Per-file failures are reported as skip results, never as errors.
type Reader struct {
	logger *zap.Logger
}

// NewReader creates a tabular file reader.
func NewReader(logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{logger: logger}
}

// ReadDir reads every file matched by the glob patterns, non-recursively.
// Only a missing or unreadable directory fails the call; everything else is
// best-effort per file.
func (r *Reader) ReadDir(dir string, patterns []string) ([]domain.FileResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDataDirMissing, dir)
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrDataDirMissing, dir)
	}

	if len(patterns) == 0 {
		patterns = defaultPatterns
	}

	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			// Only malformed patterns fail Glob
			return nil, fmt.Errorf("bad file pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)

	results := make([]domain.FileResult, 0, len(files))
	for _, file := range files {
		results = append(results, r.readFile(file))
	}
	return results, nil
}

// readFile dispatches on extension. Unknown extensions cannot be matched by
// the default patterns but callers may pass their own, so they skip cleanly.
func (r *Reader) readFile(path string) domain.FileResult {
	var table *domain.Table
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		table, err = r.readExcel(path)
	case ".csv":
		table, err = r.readCSV(path)
	default:
		err = fmt.Errorf("unsupported file type")
	}

	if err != nil {
		return domain.FileResult{File: filepath.Base(path), SkipReason: err.Error()}
	}
	return domain.FileResult{File: filepath.Base(path), Table: table}
}

// readExcel parses the first sheet of an xlsx workbook. Excel gets a single
// parser attempt; a corrupt workbook skips the file.
func (r *Reader) readExcel(path string) (*domain.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open excel: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets in workbook")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	return buildTable(filepath.Base(path), rows)
}

// readCSV parses a CSV file, trying UTF-8 with BOM, plain UTF-8, then
// Latin-1, stopping at the first encoding that decodes cleanly.
func (r *Reader) readCSV(path string) (*domain.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	decoded, encoding, err := decodeWithFallback(data)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("decoded csv",
		zap.String("file", filepath.Base(path)),
		zap.String("encoding", encoding))

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		records = append(records, record)
	}

	return buildTable(filepath.Base(path), records)
}

// decodeWithFallback returns UTF-8 bytes for the raw file content.
// Latin-1 decodes any byte sequence, so it is the terminal fallback; files
// only skip on structural CSV errors after this point.
func decodeWithFallback(data []byte) ([]byte, string, error) {
	if bytes.HasPrefix(data, utf8BOM) {
		stripped := data[len(utf8BOM):]
		if utf8.Valid(stripped) {
			return stripped, "utf-8-sig", nil
		}
	}

	if utf8.Valid(data) {
		return data, "utf-8", nil
	}

	decoded, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
	if err != nil {
		return nil, "", fmt.Errorf("decode latin-1: %w", err)
	}
	return decoded, "latin-1", nil
}

// buildTable converts raw string records into a typed table: the first record
// is the header row, the rest are data rows with cells classified as
// text, number, or empty exactly once at this boundary.
func buildTable(name string, records [][]string) (*domain.Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	table := &domain.Table{
		Name:    name,
		Headers: records[0],
		Rows:    make([]domain.Row, 0, len(records)-1),
	}

	for _, record := range records[1:] {
		row := make(domain.Row, len(record))
		for i, value := range record {
			row[i] = classifyCell(value)
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// classifyCell decides the tagged-union kind of one raw cell value.
func classifyCell(value string) domain.Cell {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return domain.Cell{Kind: domain.CellEmpty}
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return domain.Cell{Kind: domain.CellNumber, Number: n, Text: trimmed}
	}
	return domain.Cell{Kind: domain.CellText, Text: value}
}
