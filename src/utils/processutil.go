package utils

import (
	"fmt"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// HasColumn reports whether the DataFrame carries the named column.
func HasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// MissingColumns returns the subset of names absent from the DataFrame.
func MissingColumns(df dataframe.DataFrame, names ...string) []string {
	var missing []string
	for _, n := range names {
		if !HasColumn(df, n) {
			missing = append(missing, n)
		}
	}
	return missing
}

// ParseTime parses a series element in the dataset's timestamp layout.
// Empty and NA elements map to the zero time without error.
func ParseTime(s series.Element) (time.Time, error) {
	if s.IsNA() || s.String() == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02 15:04:05", s.String())
}

// WriteSheet writes a DataFrame onto a sheet of an open workbook,
// header row first, one cell at a time.
func WriteSheet(f *excelize.File, sheetName string, df dataframe.DataFrame) error {
	colNames := df.Names()
	for i, name := range colNames {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("header cell for column %q: %w", name, err)
		}
		f.SetCellValue(sheetName, cell, name)
	}

	for rowIdx := 0; rowIdx < df.Nrow(); rowIdx++ {
		for colIdx, colName := range colNames {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return fmt.Errorf("cell (%d,%d): %w", rowIdx, colIdx, err)
			}
			elem := df.Col(colName).Elem(rowIdx)
			if elem.IsNA() {
				continue
			}
			f.SetCellValue(sheetName, cell, elem.Val())
		}
	}
	return nil
}

// SaveToExcel dumps a single DataFrame into a fresh workbook.
func SaveToExcel(df dataframe.DataFrame, filePath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := WriteSheet(f, "Sheet1", df); err != nil {
		return err
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
