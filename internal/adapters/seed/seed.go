// Package seed produces the initial ladder, either from a spreadsheet
// column or by shuffling the competitor pool.
package seed

import (
	"fmt"
	"math/rand/v2"

	"github.com/okian/autoleague/internal/domain/model"
	"github.com/xuri/excelize/v2"
)

// Range locates the ladder inside a workbook: Length cells downwards from
// Column:StartRow. Each Week shifts the column two to the right, as one
// spacer column sits between weekly ladders.
type Range struct {
	Sheet    string // empty selects the first sheet
	Column   string
	StartRow int
	Length   int
	Week     int
}

// DefaultRange is D4:D48 of the first sheet.
var DefaultRange = Range{Column: "D", StartRow: 4, Length: 45}

// Cells renders the range as a cell reference, e.g. "D4:D48".
func (r Range) Cells() (string, error) {
	col, err := r.column()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d:%s%d", col, r.StartRow, col, r.StartRow+r.Length-1), nil
}

func (r Range) column() (string, error) {
	n, err := excelize.ColumnNameToNumber(r.Column)
	if err != nil {
		return "", fmt.Errorf("seed column %q: %w", r.Column, err)
	}
	return excelize.ColumnNumberToName(n + 2*r.Week)
}

// FromWorkbook reads ladder identifiers from the .xlsx file at path.
// Empty cells are skipped; duplicates are rejected.
func FromWorkbook(path string, r Range) ([]string, error) {
	if r.StartRow <= 0 || r.Length <= 0 {
		return nil, fmt.Errorf("seed range needs a positive start row and length, got %d and %d", r.StartRow, r.Length)
	}
	col, err := r.column()
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := r.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("XLSX file %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	var bots []string
	seen := make(map[string]int)
	for row := r.StartRow; row < r.StartRow+r.Length; row++ {
		cell := fmt.Sprintf("%s%d", col, row)
		v, err := f.GetCellValue(sheet, cell)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s!%s: %w", sheet, cell, err)
		}
		name := model.Normalize(v)
		if name == "" {
			continue
		}
		if prev, dup := seen[name]; dup {
			return nil, &model.LadderFormatError{
				Resource: path,
				Line:     row,
				Reason:   fmt.Sprintf("%s: %q already listed in row %d", cell, name, prev),
			}
		}
		seen[name] = row
		bots = append(bots, name)
	}
	if len(bots) == 0 {
		return nil, &model.LadderFormatError{Resource: path, Reason: fmt.Sprintf("no identifiers in sheet %q column %s", sheet, col)}
	}
	return bots, nil
}

// Shuffled returns the pool's identifiers in random order.
func Shuffled(pool *model.Pool, rng *rand.Rand) []string {
	names := pool.Names()
	rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })
	return names
}
