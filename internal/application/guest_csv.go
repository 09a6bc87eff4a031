package application

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// GuestImportRow is one parsed line of a guest CSV import.
type GuestImportRow struct {
	Name     string
	Category GuestCategory
}

// ParseGuestCSV reads a header row followed by one guest per line. The name
// column is the first header containing "name" (case-insensitive) and the
// optional category column the first containing "category". Unknown
// categories become regular. Lines without a name or that cannot be parsed
// are skipped. Stray quotes inside unquoted fields are kept literally.
func ParseGuestCSV(r io.Reader) ([]GuestImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, newValidationError("file", "CSV file is empty")
	}
	if err != nil {
		return nil, newValidationError("file", fmt.Sprintf("CSV file could not be parsed: %v", err))
	}

	nameCol, categoryCol := -1, -1
	for i, column := range header {
		column = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(column, "\ufeff")))
		if nameCol < 0 && strings.Contains(column, "name") {
			nameCol = i
		}
		if categoryCol < 0 && strings.Contains(column, "category") {
			categoryCol = i
		}
	}
	if nameCol < 0 {
		return nil, newValidationError("file", `CSV header must contain a "name" column`)
	}

	var rows []GuestImportRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			continue
		}
		if err != nil {
			return nil, newValidationError("file", fmt.Sprintf("CSV file could not be parsed: %v", err))
		}
		if nameCol >= len(record) {
			continue
		}
		name := strings.TrimSpace(record[nameCol])
		if name == "" {
			continue
		}

		category := CategoryRegular
		if categoryCol >= 0 && categoryCol < len(record) {
			if parsed, ok := ParseGuestCategory(strings.ToLower(strings.TrimSpace(record[categoryCol]))); ok {
				category = parsed
			}
		}
		rows = append(rows, GuestImportRow{Name: name, Category: category})
	}

	if len(rows) == 0 {
		return nil, newValidationError("file", "CSV file contains no guests")
	}
	return rows, nil
}

// WriteAccessCodesCSV writes a single "Access Code" column with one code per line.
func WriteAccessCodesCSV(w io.Writer, codes []string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Access Code"}); err != nil {
		return err
	}
	for _, code := range codes {
		if err := writer.Write([]string{code}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
