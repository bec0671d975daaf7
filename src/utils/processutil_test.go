package utils

import (
	"path/filepath"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{"visib", "temp"}, "temp"))
	assert.False(t, Contains([]string{"visib", "temp"}, "dep_delay"))
	assert.True(t, Contains([]int{1, 2, 3}, 2))
	assert.False(t, Contains([]int{}, 1))
}

func TestHasAndMissingColumns(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"JFK"}, series.String, "origin"),
		series.New([]float64{35}, series.Float, "dep_delay"),
	)

	assert.True(t, HasColumn(df, "origin"))
	assert.False(t, HasColumn(df, "dest"))
	assert.Nil(t, MissingColumns(df, "origin", "dep_delay"))
	assert.Equal(t, []string{"dest", "visib"}, MissingColumns(df, "origin", "dest", "visib"))
}

func TestParseTime(t *testing.T) {
	s := series.New([]string{"2013-01-02 05:00:00", "", "January 2nd"}, series.String, "time_hour")

	ts, err := ParseTime(s.Elem(0))
	require.NoError(t, err)
	assert.Equal(t, 2013, ts.Year())
	assert.Equal(t, 2, ts.Day())
	assert.Equal(t, 5, ts.Hour())

	ts, err = ParseTime(s.Elem(1))
	require.NoError(t, err)
	assert.True(t, ts.IsZero())

	_, err = ParseTime(s.Elem(2))
	assert.Error(t, err)
}

func TestSaveToExcel(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"JFK", "EWR"}, series.String, "origin"),
		series.New([]int{2, 1}, series.Int, "n"),
	)
	path := filepath.Join(t.TempDir(), "counts.xlsx")
	require.NoError(t, SaveToExcel(df, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"origin", "n"}, rows[0])
	assert.Equal(t, "JFK", rows[1][0])
	assert.Equal(t, "2", rows[1][1])
}
