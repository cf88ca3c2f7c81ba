package chart

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/minebench/internal/results"
)

func tableOf(recs ...results.RunRecord) *results.Table {
	table := results.NewTable()
	for _, rec := range recs {
		table.Append(rec)
	}
	return table
}

// plotLines returns the chart rows between the title and the x axis.
func plotLines(t *testing.T, out string, height int) []string {
	t.Helper()
	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), height+5, "chart output is missing sections")
	return lines[1 : 1+height]
}

func countMarker(lines []string, marker rune) int {
	n := 0
	for _, line := range lines {
		n += strings.Count(line, string(marker))
	}
	return n
}

func TestRender_NilTable(t *testing.T) {
	out, err := Render(nil, nil)
	assert.Error(t, err)
	assert.Empty(t, out)
}

func TestRender_NothingToPlot(t *testing.T) {
	table := tableOf(
		results.RunRecord{Algorithm: "apriori", Support: 5, Status: results.StatusFailed, Runtime: time.Second, Output: "out/apriori-s5.out"},
	)

	out, err := Render(table, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to plot")
	assert.Empty(t, out)

	_, err = Render(results.NewTable(), nil)
	assert.Error(t, err)
}

func TestRender_LegendAndTicks(t *testing.T) {
	table := tableOf(
		results.RunRecord{Algorithm: "apriori", Support: 5, Status: results.StatusOK, Runtime: time.Second, Output: "out/apriori-s5.out"},
		results.RunRecord{Algorithm: "apriori", Support: 10, Status: results.StatusOK, Runtime: 2 * time.Second, Output: "out/apriori-s10.out"},
		results.RunRecord{Algorithm: "eclat", Support: 5, Status: results.StatusOK, Runtime: 500 * time.Millisecond, Output: "out/eclat-s5.out"},
	)

	out, err := Render(table, nil)
	require.NoError(t, err)

	assert.Contains(t, out, "runtime (s)")
	assert.Contains(t, out, "support (%)")
	assert.Contains(t, out, "o apriori")
	assert.Contains(t, out, "s eclat")

	lines := strings.Split(out, "\n")
	ticks := lines[DefaultConfig().Height+2]
	assert.Contains(t, ticks, "5")
	assert.Contains(t, ticks, "10")
}

func TestRender_FractionalSupportTick(t *testing.T) {
	table := tableOf(
		results.RunRecord{Algorithm: "gspan", Support: 2.5, Status: results.StatusOK, Runtime: time.Second, Output: "out/gspan-s2.5.out"},
	)

	out, err := Render(table, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "2.5")
}

func TestRender_RuntimeScalesUpward(t *testing.T) {
	table := tableOf(
		results.RunRecord{Algorithm: "apriori", Support: 5, Status: results.StatusOK, Runtime: time.Second, Output: "out/apriori-s5.out"},
		results.RunRecord{Algorithm: "apriori", Support: 95, Status: results.StatusOK, Runtime: 2 * time.Second, Output: "out/apriori-s95.out"},
	)

	out, err := Render(table, nil)
	require.NoError(t, err)

	var markerLines []string
	for _, line := range plotLines(t, out, DefaultConfig().Height) {
		if strings.Contains(line, "o") {
			markerLines = append(markerLines, line)
		}
	}
	require.Len(t, markerLines, 2, "expected two plotted points on distinct rows")

	// The slower run (support 95) plots higher and further right.
	assert.Greater(t, strings.Index(markerLines[0], "o"), strings.Index(markerLines[1], "o"))
}

func TestRender_FailedRunsExcluded(t *testing.T) {
	table := tableOf(
		results.RunRecord{Algorithm: "apriori", Support: 5, Status: results.StatusOK, Runtime: time.Second, Output: "out/apriori-s5.out"},
		results.RunRecord{Algorithm: "apriori", Support: 10, Status: results.StatusFailed, Runtime: 3 * time.Minute, Output: "out/apriori-s10.out"},
	)

	out, err := Render(table, nil)
	require.NoError(t, err)

	lines := plotLines(t, out, DefaultConfig().Height)
	assert.Equal(t, 1, countMarker(lines, 'o'))
}

func TestRender_EmptyRunsPlotNearZero(t *testing.T) {
	table := tableOf(
		results.RunRecord{Algorithm: "apriori", Support: 5, Status: results.StatusOK, Runtime: 2 * time.Second, Output: "out/apriori-s5.out"},
		results.RunRecord{Algorithm: "eclat", Support: 95, Status: results.StatusEmpty, Runtime: 87 * time.Microsecond, Output: "out/eclat-s95.out"},
	)

	out, err := Render(table, nil)
	require.NoError(t, err)

	lines := plotLines(t, out, DefaultConfig().Height)
	assert.Contains(t, lines[0], "o", "slowest run belongs on the top row")
	assert.Contains(t, lines[len(lines)-1], "s", "near-zero run belongs on the bottom row")
}

func TestRender_CustomGeometry(t *testing.T) {
	table := tableOf(
		results.RunRecord{Algorithm: "apriori", Support: 25, Status: results.StatusOK, Runtime: time.Second, Output: "out/apriori-s25.out"},
	)

	out, err := Render(table, &Config{Width: 30, Height: 6})
	require.NoError(t, err)

	lines := plotLines(t, out, 6)
	assert.Equal(t, 1, countMarker(lines, 'o'))
}

func TestRender_ColorEnabled(t *testing.T) {
	table := tableOf(
		results.RunRecord{Algorithm: "apriori", Support: 5, Status: results.StatusOK, Runtime: time.Second, Output: "out/apriori-s5.out"},
		results.RunRecord{Algorithm: "eclat", Support: 10, Status: results.StatusOK, Runtime: 2 * time.Second, Output: "out/eclat-s10.out"},
	)

	// Escape sequences depend on terminal detection, so only assert the
	// chart structure survives colorization.
	out, err := Render(table, &Config{Width: 40, Height: 8, Color: true})
	require.NoError(t, err)
	assert.Contains(t, out, "apriori")
	assert.Contains(t, out, "eclat")
	assert.Contains(t, out, "support (%)")
}

func TestRender_MarkerCycling(t *testing.T) {
	table := results.NewTable()
	names := []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7"}
	for i, name := range names {
		table.Append(results.RunRecord{
			Algorithm: name,
			Support:   float64(5 + i),
			Status:    results.StatusOK,
			Runtime:   time.Duration(i+1) * time.Second,
			Output:    "out/" + name + ".out",
		})
	}

	out, err := Render(table, nil)
	require.NoError(t, err)

	// Seven algorithms wrap around a six-marker set.
	assert.Contains(t, out, "o a1")
	assert.Contains(t, out, "x a6")
	assert.Contains(t, out, "o a7")
}
