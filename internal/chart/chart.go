// Package chart renders a results table as an ASCII scatter chart of runtime
// against support threshold, one marker per algorithm.
package chart

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/dbsmedya/minebench/internal/results"
)

// markers are assigned to algorithms in first-appearance order, cycling when
// a sweep covers more algorithms than there are markers.
var markers = []rune{'o', 's', '^', '*', '+', 'x'}

// palette mirrors the marker assignment when color output is enabled.
var palette = []color.Color{
	color.FgGreen,
	color.FgYellow,
	color.FgCyan,
	color.FgMagenta,
	color.FgBlue,
	color.FgRed,
}

// Config controls chart geometry and decoration.
type Config struct {
	Width  int  // plot area columns
	Height int  // plot area rows
	Color  bool // colorize markers and legend entries
}

// DefaultConfig returns the configuration used when Render receives nil.
func DefaultConfig() *Config {
	return &Config{
		Width:  60,
		Height: 12,
	}
}

type point struct {
	support float64
	seconds float64
}

// Render draws the table as an ASCII chart. Support thresholds are laid out
// as evenly spaced columns; runtime is scaled linearly from zero to the
// slowest plotted run. Failed runs are excluded, empty runs are plotted with
// their (near-zero) runtime. When two points land on the same cell the later
// algorithm's marker wins.
func Render(table *results.Table, config *Config) (string, error) {
	if table == nil {
		return "", fmt.Errorf("results table is nil")
	}
	if config == nil {
		config = DefaultConfig()
	}

	series := orderedmap.NewOrderedMap[string, []point]()
	var supports []float64
	seenSupport := make(map[float64]bool)
	maxSecs := 0.0

	for _, rec := range table.Records() {
		if rec.Status == results.StatusFailed {
			continue
		}
		secs := rec.Runtime.Seconds()
		pts, _ := series.Get(rec.Algorithm)
		series.Set(rec.Algorithm, append(pts, point{support: rec.Support, seconds: secs}))
		if !seenSupport[rec.Support] {
			seenSupport[rec.Support] = true
			supports = append(supports, rec.Support)
		}
		if secs > maxSecs {
			maxSecs = secs
		}
	}
	if series.Len() == 0 {
		return "", fmt.Errorf("nothing to plot: no run finished with a result")
	}
	sort.Float64s(supports)

	width := config.Width
	if width <= 0 {
		width = DefaultConfig().Width
	}
	if width < len(supports) {
		width = len(supports)
	}
	height := config.Height
	if height <= 0 {
		height = DefaultConfig().Height
	}
	if height < 2 {
		height = 2
	}
	// A chart of all-empty runs still needs a usable y scale.
	if maxSecs <= 0 {
		maxSecs = 1
	}

	colFor := make(map[float64]int, len(supports))
	for i, s := range supports {
		if len(supports) == 1 {
			colFor[s] = width / 2
			continue
		}
		colFor[s] = i * (width - 1) / (len(supports) - 1)
	}

	canvas := make([][]rune, height)
	owner := make([][]int, height)
	for r := range canvas {
		canvas[r] = make([]rune, width)
		owner[r] = make([]int, width)
		for c := range canvas[r] {
			canvas[r][c] = ' '
			owner[r][c] = -1
		}
	}

	si := 0
	for el := series.Front(); el != nil; el = el.Next() {
		marker := markers[si%len(markers)]
		for _, pt := range el.Value {
			fromBottom := int(math.Round(pt.seconds / maxSecs * float64(height-1)))
			row := height - 1 - fromBottom
			canvas[row][colFor[pt.support]] = marker
			owner[row][colFor[pt.support]] = si
		}
		si++
	}

	yLabels := make([]string, height)
	labelWidth := 0
	for r := 0; r < height; r++ {
		value := maxSecs * float64(height-1-r) / float64(height-1)
		yLabels[r] = fmt.Sprintf("%.3f", value)
		if w := runewidth.StringWidth(yLabels[r]); w > labelWidth {
			labelWidth = w
		}
	}

	var sb strings.Builder
	sb.WriteString("runtime (s)\n")

	for r := 0; r < height; r++ {
		sb.WriteString(runewidth.FillLeft(yLabels[r], labelWidth))
		sb.WriteString(" |")
		for c := 0; c < width; c++ {
			cell := canvas[r][c]
			if config.Color && owner[r][c] >= 0 {
				sb.WriteString(palette[owner[r][c]%len(palette)].Render(string(cell)))
			} else {
				sb.WriteRune(cell)
			}
		}
		sb.WriteByte('\n')
	}

	sb.WriteString(strings.Repeat(" ", labelWidth))
	sb.WriteString(" +")
	sb.WriteString(strings.Repeat("-", width))
	sb.WriteByte('\n')

	sb.WriteString(strings.Repeat(" ", labelWidth))
	sb.WriteString("  ")
	sb.WriteString(tickRow(supports, colFor, width))
	sb.WriteByte('\n')

	xLabel := "support (%)"
	pad := labelWidth + 2 + (width-runewidth.StringWidth(xLabel))/2
	if pad < 0 {
		pad = 0
	}
	sb.WriteString(strings.Repeat(" ", pad))
	sb.WriteString(xLabel)
	sb.WriteString("\n\n")

	sb.WriteString(legend(series, config.Color))
	sb.WriteByte('\n')

	return sb.String(), nil
}

// tickRow places each support value under its column, left-aligned on the
// column. Labels that would cross the right edge shift left to end on it;
// labels that would run into the previous one are skipped.
func tickRow(supports []float64, colFor map[float64]int, width int) string {
	row := make([]rune, width)
	for i := range row {
		row[i] = ' '
	}
	next := 0
	for _, s := range supports {
		text := []rune(results.FormatSupport(s))
		start := colFor[s]
		if start+len(text) > width {
			start = width - len(text)
		}
		if start < next || start < 0 {
			continue
		}
		copy(row[start:], text)
		next = start + len(text) + 1
	}
	return strings.TrimRight(string(row), " ")
}

func legend(series *orderedmap.OrderedMap[string, []point], colored bool) string {
	var entries []string
	si := 0
	for el := series.Front(); el != nil; el = el.Next() {
		glyph := string(markers[si%len(markers)])
		if colored {
			glyph = palette[si%len(palette)].Render(glyph)
		}
		entries = append(entries, glyph+" "+el.Key)
		si++
	}
	return "  " + strings.Join(entries, "   ")
}
