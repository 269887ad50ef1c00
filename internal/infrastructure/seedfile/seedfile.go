// Package seedfile reads catalog import files. A file is either a JSON array
// of raw food records or a CSV table with a header row.
package seedfile

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nutridiary/backend/internal/domain"
)

// CSV columns. Macros are per 100 g; aliases are separated by "|".
const (
	colName          = "name"
	colNameLocalized = "name_localized"
	colBrand         = "brand"
	colBarcode       = "barcode"
	colCategory      = "category"
	colAliases       = "aliases"
	colCalories      = "calories"
	colProtein       = "protein"
	colFat           = "fat"
	colCarbs         = "carbs"
)

// Load reads path, picking the format by extension (.json or .csv)
func Load(path string) ([]domain.RawFood, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return DecodeJSON(f)
	case ".csv":
		return DecodeCSV(f)
	default:
		return nil, fmt.Errorf("unsupported seed file extension %q", ext)
	}
}

// DecodeJSON decodes a JSON array of raw food records
func DecodeJSON(r io.Reader) ([]domain.RawFood, error) {
	var raws []domain.RawFood
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, fmt.Errorf("decode seed json: %w", err)
	}
	return raws, nil
}

// DecodeCSV decodes a CSV table. Only the name column is required; unknown
// columns are ignored and unparsable numbers read as zero.
func DecodeCSV(r io.Reader) ([]domain.RawFood, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read seed csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("seed csv has no header row")
	}

	headers := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		headers[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := headers[colName]; !ok {
		return nil, fmt.Errorf("seed csv: missing required column %q", colName)
	}

	raws := make([]domain.RawFood, 0, len(records)-1)
	for _, row := range records[1:] {
		cell := func(name string) string {
			if i, ok := headers[name]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		number := func(name string) float64 {
			v, err := strconv.ParseFloat(strings.ReplaceAll(cell(name), ",", "."), 64)
			if err != nil {
				return 0
			}
			return v
		}

		raw := domain.RawFood{
			Name:          cell(colName),
			NameLocalized: cell(colNameLocalized),
			Brand:         cell(colBrand),
			Barcode:       cell(colBarcode),
			Category:      cell(colCategory),
			Per100: &domain.Macros{
				Calories: number(colCalories),
				Protein:  number(colProtein),
				Fat:      number(colFat),
				Carbs:    number(colCarbs),
			},
		}
		if aliases := cell(colAliases); aliases != "" {
			raw.Aliases = strings.Split(aliases, "|")
		}
		raws = append(raws, raw)
	}
	return raws, nil
}
