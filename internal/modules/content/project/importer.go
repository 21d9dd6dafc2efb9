package project

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/studyaid/core/internal/models"
	"github.com/xuri/excelize/v2"
)

// ImportConfig describes where project rows live in a spreadsheet.
// Columns are fixed: A=id, B=title, C=studyMaterial.
type ImportConfig struct {
	FilePath  string
	SheetName string // xlsx only; empty means the first sheet
	StartRow  int    // 1-based
}

func DefaultImportConfig() ImportConfig {
	return ImportConfig{StartRow: 2}
}

// ReadResult holds the parsed rows and one message per rejected row.
type ReadResult struct {
	Rows   []models.StudyProjectModel
	Errors []string
}

// ReadRows parses an .xlsx or .csv file into projects.
func ReadRows(cfg ImportConfig) (*ReadResult, error) {
	if cfg.StartRow < 1 {
		cfg.StartRow = 1
	}

	var (
		records [][]string
		err     error
	)
	if strings.EqualFold(filepath.Ext(cfg.FilePath), ".csv") {
		records, err = readCSV(cfg.FilePath)
	} else {
		records, err = readExcel(cfg.FilePath, cfg.SheetName)
	}
	if err != nil {
		return nil, err
	}

	result := &ReadResult{Rows: []models.StudyProjectModel{}, Errors: []string{}}
	seen := make(map[int64]int)
	for i, record := range records {
		rowNum := i + 1
		if rowNum < cfg.StartRow || blankRecord(record) {
			continue
		}
		p, err := parseRecord(record)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		if prev, ok := seen[p.ID]; ok {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: duplicate id %d (first seen in row %d)", rowNum, p.ID, prev))
			continue
		}
		seen[p.ID] = rowNum
		result.Rows = append(result.Rows, p)
	}
	return result, nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

func parseRecord(record []string) (models.StudyProjectModel, error) {
	cell := func(i int) string {
		if i < len(record) {
			return record[i]
		}
		return ""
	}

	rawID := strings.TrimSpace(cell(0))
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return models.StudyProjectModel{}, fmt.Errorf("invalid id %q", rawID)
	}
	title := strings.TrimSpace(cell(1))
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return models.StudyProjectModel{}, ErrTitleTooLong
	}
	return models.StudyProjectModel{ID: id, Title: title, StudyMaterial: cell(2)}, nil
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
