package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/jszwec/csvutil"
	"github.com/tealeg/xlsx"
)

// ReadWorkbook loads both tables from an xlsx workbook, one sheet per
// table. The first row of each sheet must carry the column headers;
// headers found in the alias map are renamed to their canonical column
// names before decoding.
func ReadWorkbook(filePath, flightsSheet, weatherSheet string, aliases map[string]string) (dataframe.DataFrame, dataframe.DataFrame, error) {
	xlFile, err := xlsx.OpenFile(filePath)
	if err != nil {
		return dataframe.DataFrame{}, dataframe.DataFrame{}, fmt.Errorf("open workbook %s: %w", filePath, err)
	}
	return framesFromWorkbook(xlFile, flightsSheet, weatherSheet, aliases)
}

// ReadWorkbookBytes is ReadWorkbook for an in-memory workbook, e.g. a
// mail attachment.
func ReadWorkbookBytes(data []byte, flightsSheet, weatherSheet string, aliases map[string]string) (dataframe.DataFrame, dataframe.DataFrame, error) {
	xlFile, err := xlsx.OpenBinary(data)
	if err != nil {
		return dataframe.DataFrame{}, dataframe.DataFrame{}, fmt.Errorf("open workbook bytes: %w", err)
	}
	return framesFromWorkbook(xlFile, flightsSheet, weatherSheet, aliases)
}

func framesFromWorkbook(xlFile *xlsx.File, flightsSheet, weatherSheet string, aliases map[string]string) (dataframe.DataFrame, dataframe.DataFrame, error) {
	var flights []FlightRecord
	if err := decodeSheet(xlFile, flightsSheet, aliases, &flights); err != nil {
		return dataframe.DataFrame{}, dataframe.DataFrame{}, err
	}

	var weather []WeatherRecord
	if err := decodeSheet(xlFile, weatherSheet, aliases, &weather); err != nil {
		return dataframe.DataFrame{}, dataframe.DataFrame{}, err
	}

	fdf := FlightsFrame(flights)
	if err := validateTimeHour(fdf, flightsSheet); err != nil {
		return dataframe.DataFrame{}, dataframe.DataFrame{}, err
	}
	wdf := WeatherFrame(weather)
	if err := validateTimeHour(wdf, weatherSheet); err != nil {
		return dataframe.DataFrame{}, dataframe.DataFrame{}, err
	}

	return fdf, wdf, nil
}

// decodeSheet funnels a sheet through the same csv decoding path the
// bundled data uses, so both sources produce identically typed columns.
func decodeSheet(xlFile *xlsx.File, sheetName string, aliases map[string]string, v interface{}) error {
	sheet, ok := xlFile.Sheet[sheetName]
	if !ok {
		return fmt.Errorf("workbook has no sheet %q", sheetName)
	}
	if len(sheet.Rows) < 2 {
		return fmt.Errorf("sheet %q has no data rows", sheetName)
	}

	data, err := sheetToCSV(sheet, aliases)
	if err != nil {
		return fmt.Errorf("sheet %q: %w", sheetName, err)
	}

	if err := csvutil.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode sheet %q: %w", sheetName, err)
	}
	return nil
}

func sheetToCSV(sheet *xlsx.Sheet, aliases map[string]string) ([]byte, error) {
	header := sheet.Rows[0]
	width := len(header.Cells)
	if width == 0 {
		return nil, fmt.Errorf("empty header row")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	record := make([]string, width)
	for i, cell := range header.Cells {
		name := cell.Value
		if canonical, ok := aliases[name]; ok {
			name = canonical
		}
		record[i] = name
	}
	if err := w.Write(record); err != nil {
		return nil, err
	}

	for _, row := range sheet.Rows[1:] {
		for i := range record {
			record[i] = ""
			if i < len(row.Cells) {
				record[i] = row.Cells[i].Value
			}
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
