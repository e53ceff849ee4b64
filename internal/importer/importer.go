// Package importer reads placed-object records from CSV, Excel and DXF
// files. CSV delimiters are detected automatically and columns are mapped
// by case-insensitive header names.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/Aquarium/internal/model"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Objects  []model.PlacedObject
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	ID        int
	Sprite    int
	Col       int
	Row       int
	Footprint int
	Layer     int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"id":        {"id", "object id", "object_id", "object"},
	"sprite":    {"sprite", "sprite ref", "sprite_ref", "image", "asset", "name", "label"},
	"col":       {"col", "column", "origin col", "origin_col", "x"},
	"row":       {"row", "origin row", "origin_row", "y"},
	"footprint": {"footprint", "size", "tiles", "n"},
	"layer":     {"layer", "z", "order", "depth"},
}

// positional is the column order assumed when no header is present.
var positional = ColumnMapping{ID: -1, Sprite: 0, Col: 1, Row: 2, Footprint: 3, Layer: 4}

// DetectCSVDelimiter determines the most likely CSV delimiter. It tries
// comma, semicolon, tab and pipe; the one giving the most consistent
// multi-column rows wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		records, err := readCSV(bytes.NewReader(data), delim)
		if err != nil || len(records) < 1 {
			continue
		}
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}
		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}
	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// It returns the positional mapping and false when the row is not a header.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{ID: -1, Sprite: -1, Col: -1, Row: -1, Footprint: -1, Layer: -1}
	slots := map[string]*int{
		"id":        &mapping.ID,
		"sprite":    &mapping.Sprite,
		"col":       &mapping.Col,
		"row":       &mapping.Row,
		"footprint": &mapping.Footprint,
		"layer":     &mapping.Layer,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					if slot := slots[role]; *slot == -1 {
						*slot = i
					}
				}
			}
		}
	}
	if !isHeader {
		return positional, false
	}
	return mapping, true
}

// getCell safely retrieves a trimmed cell value; out-of-range indices give "".
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseInt reads a required or optional integer cell.
func parseInt(row []string, idx int, name, rowLabel string, required bool) (int, bool, string) {
	s := getCell(row, idx)
	if s == "" {
		if required {
			return 0, false, fmt.Sprintf("%s: Missing %s value", rowLabel, name)
		}
		return 0, false, ""
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, name, s)
	}
	return v, true, ""
}

// parseRow extracts an object record from a row. It returns the record,
// an error message and a warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (model.PlacedObject, string, string) {
	col, _, errMsg := parseInt(row, mapping.Col, "column", rowLabel, true)
	if errMsg != "" {
		return model.PlacedObject{}, errMsg, ""
	}
	r, _, errMsg := parseInt(row, mapping.Row, "row", rowLabel, true)
	if errMsg != "" {
		return model.PlacedObject{}, errMsg, ""
	}
	if col < 0 || r < 0 {
		return model.PlacedObject{}, fmt.Sprintf("%s: Column and row must not be negative", rowLabel), ""
	}

	footprint, hasFootprint, errMsg := parseInt(row, mapping.Footprint, "footprint", rowLabel, false)
	if errMsg != "" {
		return model.PlacedObject{}, errMsg, ""
	}
	if hasFootprint && footprint <= 0 {
		return model.PlacedObject{}, fmt.Sprintf("%s: Footprint must be positive", rowLabel), ""
	}

	layer, _, errMsg := parseInt(row, mapping.Layer, "layer", rowLabel, false)
	if errMsg != "" {
		return model.PlacedObject{}, errMsg, ""
	}

	var warning string
	if !hasFootprint {
		warning = fmt.Sprintf("%s: No footprint given, using default", rowLabel)
	}

	return model.PlacedObject{
		ID:        getCell(row, mapping.ID),
		SpriteRef: getCell(row, mapping.Sprite),
		OriginCol: col,
		OriginRow: r,
		Footprint: footprint,
		Layer:     layer,
	}, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func readCSV(r io.Reader, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// ImportCSV imports object records from a CSV file with delimiter detection.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}
	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, err := readCSV(bytes.NewReader(data), delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}
	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}
	return importFromRows(records, "Line", warnings)
}

// ImportCSVFromReader imports object records from a reader with a known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	records, err := readCSV(reader, delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}
	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}
	return importFromRows(records, "Line", nil)
}

// ImportExcel imports object records from the first sheet of an Excel file.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}
	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{Warnings: initialWarnings}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		var missing []string
		if mapping.Col == -1 {
			missing = append(missing, "Col")
		}
		if mapping.Row == -1 {
			missing = append(missing, "Row")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		// Unrecognised header: the column slot is not numeric
		if _, err := strconv.Atoi(strings.TrimSpace(rows[0][positional.Col])); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	seen := map[string]bool{}
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		obj, errMsg, warning := parseRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if obj.ID != "" {
			if seen[obj.ID] {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: Duplicate id '%s'", rowLabel, obj.ID))
				continue
			}
			seen[obj.ID] = true
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		result.Objects = append(result.Objects, obj)
	}
	return result
}
