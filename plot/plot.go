// Package plot renders connectivity summaries as PNG bar charts.
package plot

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/carbocation/brainatlas"
	"github.com/carbocation/brainatlas/connectivity"
	"github.com/wcharczuk/go-chart/v2"
)

const (
	barWidth    = 24
	barSpacing  = 8
	chartHeight = 512
	minWidth    = 512
)

// Hemisphere draws one bar per region for the mean in hemisphere h, strongest
// first. Regions without data in h are left out. If limit is positive, only
// the strongest limit regions are drawn.
func Hemisphere(w io.Writer, title string, summaries []connectivity.Summary, h brainatlas.Hemisphere, limit int) error {
	bars := make([]chart.Value, 0, len(summaries))
	for _, s := range summaries {
		v := s.Mean(h)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		bars = append(bars, chart.Value{Label: s.Acronym, Value: v})
	}

	if len(bars) == 0 {
		return fmt.Errorf("no region has a %s hemisphere value to plot", h)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Value > bars[j].Value })
	if limit > 0 && len(bars) > limit {
		bars = bars[:limit]
	}

	width := len(bars)*(barWidth+barSpacing) + 2*barWidth
	if width < minWidth {
		width = minWidth
	}

	graph := chart.BarChart{
		Title:      title,
		Width:      width,
		Height:     chartHeight,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		XAxis:      chart.Style{TextRotationDegrees: 90},
		Bars:       bars,
	}

	// Render to a byte buffer so a failed render leaves w untouched
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return err
	}

	_, err := buffer.WriteTo(w)
	return err
}

// HemisphereFile is Hemisphere writing to a new file at filename.
func HemisphereFile(filename, title string, summaries []connectivity.Summary, h brainatlas.Hemisphere, limit int) error {
	buffer := bytes.NewBuffer([]byte{})
	if err := Hemisphere(buffer, title, summaries, h, limit); err != nil {
		return err
	}

	outFile, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer outFile.Close()

	if _, err := buffer.WriteTo(outFile); err != nil {
		return err
	}

	return outFile.Close()
}
