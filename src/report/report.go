// Package report renders one analysis into an xlsx workbook: grouped
// count tables, summary statistics, bar/line charts, model coefficient
// tables, and a short narrative sheet. Presentation only.
package report

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"DelayInsight/src/model"
	"DelayInsight/src/processor"
	"DelayInsight/src/storage"
	"DelayInsight/src/utils"
)

const (
	sheetSummary   = "Summary"
	sheetOrigin    = "By Origin"
	sheetDest      = "By Destination"
	sheetMonth     = "By Month"
	sheetRates     = "Delay Rates"
	sheetModels    = "Models"
	sheetNarrative = "Narrative"
)

type Renderer struct {
	logger *storage.Logger
}

func NewRenderer(logger *storage.Logger) *Renderer {
	return &Renderer{logger: logger}
}

// Save renders the analysis into outputDir and returns the workbook path.
func (r *Renderer) Save(a *processor.Analysis, outputDir string) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetSummary)
	for _, name := range []string{sheetOrigin, sheetDest, sheetMonth, sheetRates, sheetModels, sheetNarrative} {
		if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("create sheet %q: %w", name, err)
		}
	}

	if err := utils.WriteSheet(f, sheetSummary, summaryFrame(a.Summary)); err != nil {
		return "", err
	}
	if err := utils.WriteSheet(f, sheetOrigin, a.ByOrigin); err != nil {
		return "", err
	}
	if err := utils.WriteSheet(f, sheetDest, a.ByDest); err != nil {
		return "", err
	}
	if err := utils.WriteSheet(f, sheetMonth, a.ByMonthOriginDelay); err != nil {
		return "", err
	}
	if err := utils.WriteSheet(f, sheetRates, ratesFrame(a.MonthlyRates)); err != nil {
		return "", err
	}

	if err := r.addOriginChart(f, a); err != nil {
		return "", err
	}
	if err := r.addRateChart(f, a); err != nil {
		return "", err
	}

	if err := writeModels(f, a); err != nil {
		return "", err
	}
	writeNarrative(f, a)

	path := filepath.Join(outputDir, fmt.Sprintf("delay_report_%s.xlsx", time.Now().Format("20060102_150405")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save report workbook: %w", err)
	}

	if r.logger != nil {
		r.logger.Info("report written to " + path)
	}
	return path, nil
}

// addOriginChart draws a bar chart of flight counts per origin airport.
func (r *Renderer) addOriginChart(f *excelize.File, a *processor.Analysis) error {
	rows := a.ByOrigin.Nrow()
	if rows == 0 {
		return nil
	}
	err := f.AddChart(sheetOrigin, "D2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$B$1", sheetOrigin),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheetOrigin, rows+1),
			Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", sheetOrigin, rows+1),
		}},
		Title: []excelize.RichTextRun{{Text: "Flights by origin airport"}},
	})
	if err != nil {
		return fmt.Errorf("origin chart: %w", err)
	}
	return nil
}

// addRateChart draws a line chart of the monthly delay rate.
func (r *Renderer) addRateChart(f *excelize.File, a *processor.Analysis) error {
	rows := len(a.MonthlyRates)
	if rows == 0 {
		return nil
	}
	err := f.AddChart(sheetRates, "F2", &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$D$1", sheetRates),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheetRates, rows+1),
			Values:     fmt.Sprintf("'%s'!$D$2:$D$%d", sheetRates, rows+1),
		}},
		Title: []excelize.RichTextRun{{Text: "Share of delayed departures by month"}},
	})
	if err != nil {
		return fmt.Errorf("rate chart: %w", err)
	}
	return nil
}

func summaryFrame(summaries []processor.ColumnSummary) dataframe.DataFrame {
	n := len(summaries)
	column := make([]string, n)
	count := make([]int, n)
	mean := make([]float64, n)
	median := make([]float64, n)
	std := make([]float64, n)
	min := make([]float64, n)
	max := make([]float64, n)
	for i, s := range summaries {
		column[i] = s.Column
		count[i] = s.N
		mean[i] = s.Mean
		median[i] = s.Median
		std[i] = s.Std
		min[i] = s.Min
		max[i] = s.Max
	}
	return dataframe.New(
		series.New(column, series.String, "column"),
		series.New(count, series.Int, "n"),
		series.New(mean, series.Float, "mean"),
		series.New(median, series.Float, "median"),
		series.New(std, series.Float, "sd"),
		series.New(min, series.Float, "min"),
		series.New(max, series.Float, "max"),
	)
}

func ratesFrame(rates []processor.GroupRate) dataframe.DataFrame {
	n := len(rates)
	group := make([]string, n)
	total := make([]int, n)
	delayed := make([]int, n)
	rate := make([]float64, n)
	for i, r := range rates {
		group[i] = r.Group
		total[i] = r.Total
		delayed[i] = r.Delayed
		rate[i] = r.Rate
	}
	return dataframe.New(
		series.New(group, series.String, "month"),
		series.New(total, series.Int, "n"),
		series.New(delayed, series.Int, "delayed"),
		series.New(rate, series.Float, "rate"),
	)
}

// writeModels lays the three coefficient tables out as stacked blocks.
func writeModels(f *excelize.File, a *processor.Analysis) error {
	row := 1
	var err error

	header := fmt.Sprintf("OLS: %s ~ weather (n=%d, R²=%.4f)", a.OLS.Response, a.OLS.N, a.OLS.RSquared)
	if row, err = writeCoefBlock(f, row, header, a.OLS.Coefficients); err != nil {
		return err
	}
	header = fmt.Sprintf("Logistic: %s ~ visib (n=%d, deviance=%.2f, converged=%v)",
		a.LogitVisib.Response, a.LogitVisib.N, a.LogitVisib.Deviance, a.LogitVisib.Converged)
	if row, err = writeCoefBlock(f, row, header, a.LogitVisib.Coefficients); err != nil {
		return err
	}
	header = fmt.Sprintf("Logistic: %s ~ weather (n=%d, deviance=%.2f, converged=%v)",
		a.LogitFull.Response, a.LogitFull.N, a.LogitFull.Deviance, a.LogitFull.Converged)
	if _, err = writeCoefBlock(f, row, header, a.LogitFull.Coefficients); err != nil {
		return err
	}
	return nil
}

func writeCoefBlock(f *excelize.File, startRow int, header string, coefs []model.Coefficient) (int, error) {
	set := func(row, col int, v interface{}) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheetModels, cell, v)
	}

	if err := set(startRow, 1, header); err != nil {
		return 0, err
	}
	if err := set(startRow+1, 1, "term"); err != nil {
		return 0, err
	}
	if err := set(startRow+1, 2, "estimate"); err != nil {
		return 0, err
	}
	if err := set(startRow+1, 3, "std. error"); err != nil {
		return 0, err
	}
	for i, c := range coefs {
		if err := set(startRow+2+i, 1, c.Term); err != nil {
			return 0, err
		}
		if err := set(startRow+2+i, 2, c.Estimate); err != nil {
			return 0, err
		}
		if err := set(startRow+2+i, 3, c.StdErr); err != nil {
			return 0, err
		}
	}
	return startRow + len(coefs) + 3, nil
}

func writeNarrative(f *excelize.File, a *processor.Analysis) {
	total := a.Flights.Nrow()
	labeled := a.Labeled.Nrow()
	delayed := 0
	for _, r := range a.OriginRates {
		delayed += r.Delayed
	}

	visibCoef := 0.0
	for _, c := range a.LogitVisib.Coefficients {
		if c.Term == "visib" {
			visibCoef = c.Estimate
		}
	}

	lines := []string{
		"Departure delay and weather, one-shot analysis",
		"",
		fmt.Sprintf("The dataset holds %d flight records. Weather observations were attached by a left join on {%s}; the joined table keeps exactly one row per flight.", total, a.Options.Variant),
		fmt.Sprintf("%d cancelled flights (no recorded departure) were excluded before labeling, leaving %d flights.", a.ExcludedCancelled, labeled),
		fmt.Sprintf("A flight counts as delayed when its departure delay is at least %.0f minutes. %d of %d flights (%.1f%%) were delayed.", a.Options.DelayThresholdMin, delayed, labeled, pct(delayed, labeled)),
		fmt.Sprintf("The linear model of departure delay on the seven weather predictors used %d complete rows and explains %.1f%% of the variance.", a.OLS.N, a.OLS.RSquared*100),
		fmt.Sprintf("In the single-predictor logistic model, the visibility coefficient is %.4f: each mile of visibility shifts the log-odds of a long delay by that amount.", visibCoef),
		fmt.Sprintf("The full logistic model used %d rows and reached deviance %.2f.", a.LogitFull.N, a.LogitFull.Deviance),
	}

	for i, line := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			continue
		}
		f.SetCellValue(sheetNarrative, cell, line)
	}
}

func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
