package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

// Series is a named curve.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight = 8
	minPlotWidth      = 10
	labelWidth        = 9
	plotAxis          = " ┤"
	fallbackWidth     = 80
	ansiReset         = "\x1b[0m"
)

var palette = []string{"\x1b[36m", "\x1b[35m", "\x1b[33m", "\x1b[32m", "\x1b[34m"}

// dot bit for column x (0-1) and row y (0-3) of a braille cell.
var brailleBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// PlotSeries draws the series on one shared vertical scale using braille
// dots. A width <= 0 fits the terminal.
func PlotSeries(w io.Writer, title string, series []Series, width, height int) error {
	return PlotSeriesWithColor(w, title, series, width, height, false)
}

// PlotSeriesWithColor is PlotSeries with colour forced on when forceColor is
// set and NO_COLOR is unset.
func PlotSeriesWithColor(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	kept := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	width = max(width, minPlotWidth)
	if height <= 0 {
		height = defaultPlotHeight
	}

	lo, hi := bounds(kept)
	c := newCanvas(width, height)
	for i, s := range kept {
		points := resample(s.Values, width*2)
		prevY := -1
		for x, v := range points {
			y := c.rowFor(v, lo, hi)
			if prevY >= 0 {
				c.line(x-1, prevY, x, y, i)
			} else {
				c.set(x, y, i)
			}
			prevY = y
		}
	}

	color := useColor(w, forceColor)
	lines := make([]string, 0, height+3)
	if title != "" {
		lines = append(lines, title)
	}
	for y := 0; y < height; y++ {
		label := ""
		switch y {
		case 0:
			label = formatTick(hi)
		case height - 1:
			label = formatTick(lo)
		}
		lines = append(lines, fmt.Sprintf("%*s%s%s", labelWidth, label, plotAxis, c.render(y, color)))
	}
	lines = append(lines, legend(kept, color), "")
	return writeLines(w, lines)
}

// PlotWidthFor returns the plot width that fits a line of totalWidth cells.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	return max(totalWidth-labelWidth-len([]rune(plotAxis)), minPlotWidth)
}

func bounds(series []Series) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s.Values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if hi-lo < 1e-12 {
		lo, hi = lo-1, hi+1
	}
	return lo, hi
}

func formatTick(v float64) string {
	return fmt.Sprintf("%.4g", v)
}

// resample linearly interpolates values onto n points.
func resample(values []float64, n int) []float64 {
	out := make([]float64, n)
	if len(values) == 1 || n == 1 {
		for i := range out {
			out[i] = values[0]
		}
		return out
	}
	step := float64(len(values)-1) / float64(n-1)
	for i := range out {
		pos := float64(i) * step
		idx := int(pos)
		if idx >= len(values)-1 {
			out[i] = values[len(values)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = values[idx] + (values[idx+1]-values[idx])*frac
	}
	return out
}

type canvas struct {
	width, height int
	masks         [][]uint8
	// first series to touch each cell, -1 when empty
	owners [][]int
}

func newCanvas(width, height int) *canvas {
	c := &canvas{width: width, height: height}
	c.masks = make([][]uint8, height)
	c.owners = make([][]int, height)
	for y := range c.masks {
		c.masks[y] = make([]uint8, width)
		c.owners[y] = make([]int, width)
		for x := range c.owners[y] {
			c.owners[y][x] = -1
		}
	}
	return c
}

// rowFor maps v to a dot row, 0 at the top.
func (c *canvas) rowFor(v, lo, hi float64) int {
	dots := c.height * 4
	row := int(math.Round((hi - v) / (hi - lo) * float64(dots-1)))
	return min(max(row, 0), dots-1)
}

func (c *canvas) set(x, y, series int) {
	cx, cy := x/2, y/4
	if cx < 0 || cx >= c.width || cy < 0 || cy >= c.height {
		return
	}
	c.masks[cy][cx] |= brailleBits[y%4][x%2]
	if c.owners[cy][cx] < 0 {
		c.owners[cy][cx] = series
	}
}

// line joins two dots with Bresenham's algorithm.
func (c *canvas) line(x0, y0, x1, y1, series int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		c.set(x0, y0, series)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (c *canvas) render(y int, color bool) string {
	var b strings.Builder
	for x := 0; x < c.width; x++ {
		ch := rune(0x2800 + int(c.masks[y][x]))
		if owner := c.owners[y][x]; color && owner >= 0 {
			b.WriteString(palette[owner%len(palette)])
			b.WriteRune(ch)
			b.WriteString(ansiReset)
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func legend(series []Series, color bool) string {
	parts := make([]string, len(series))
	for i, s := range series {
		label := "⣿ " + s.Name
		if color {
			label = palette[i%len(palette)] + label + ansiReset
		}
		parts[i] = label
	}
	return strings.Repeat(" ", labelWidth) + "  " + strings.Join(parts, "  ")
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackWidth
	}
	return width
}

func useColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
