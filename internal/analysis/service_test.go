package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRetentionTable(t *testing.T) {
	csv := strings.Join([]string{
		"compound,C18 low pH,HILIC",
		"caffeine,1.25,8.4",
		"naproxen,4.8,2.1",
		"unknown-17,,3.3",
	}, "\n")

	table, err := NewCSVService().ParseRetentionTable(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, []string{"C18 low pH", "HILIC"}, table.Labels)
	assert.Equal(t, []string{"caffeine", "naproxen", "unknown-17"}, table.Compounds)
	assert.Equal(t, []float64{1.25, 4.8}, table.Columns["C18 low pH"][:2])
	assert.True(t, math.IsNaN(table.Columns["C18 low pH"][2]), "empty cell becomes missing")
	assert.Equal(t, []float64{8.4, 2.1, 3.3}, table.Columns["HILIC"])
}

func TestParseRetentionTableNonNumericCellIsMissing(t *testing.T) {
	csv := "compound,A\nx,n.d.\ny,2.5\n"

	table, err := NewCSVService().ParseRetentionTable(strings.NewReader(csv))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(table.Columns["A"][0]))
	assert.Equal(t, 2.5, table.Columns["A"][1])
}

func TestParseRetentionTableLayoutErrors(t *testing.T) {
	svc := NewCSVService()

	_, err := svc.ParseRetentionTable(strings.NewReader("compound\nx\n"))
	assert.Error(t, err, "needs at least one condition column")

	_, err = svc.ParseRetentionTable(strings.NewReader(""))
	assert.Error(t, err, "empty input has no header")
}

func TestParseCapacityTable(t *testing.T) {
	csv := "condition,peak_capacity\nC18 low pH,120\nHILIC, 60.5\n"

	capacities, err := NewCSVService().ParseCapacityTable(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 120.0, capacities["C18 low pH"])
	assert.Equal(t, 60.5, capacities["HILIC"])
}

func TestParseCapacityTableRejectsNonNumeric(t *testing.T) {
	csv := "condition,peak_capacity\nC18,high\n"

	_, err := NewCSVService().ParseCapacityTable(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not numeric")
}

func TestParseCapacityTableRejectsWrongShape(t *testing.T) {
	csv := "condition,peak_capacity,extra\nC18,100,1\n"

	_, err := NewCSVService().ParseCapacityTable(strings.NewReader(csv))
	assert.Error(t, err)
}
