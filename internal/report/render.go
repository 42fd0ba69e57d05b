package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/paveg/churnlab/internal/dataframe"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Chart file names written by PlotRenderer.
const (
	HistogramsFile  = "histograms.png"
	ImportancesFile = "feature_importances.png"
)

// HistogramBins is the bin count of every histogram.
const HistogramBins = 30

// Renderer draws the charts of a run.
type Renderer interface {
	// Histograms draws one histogram per numeric column, two per row.
	Histograms(df *dataframe.DataFrame, columns []string) error
	// Importances draws ranked feature importances as horizontal bars.
	Importances(ranked []Importance) error
}

// NopRenderer discards every chart.
type NopRenderer struct{}

// Histograms implements Renderer.
func (NopRenderer) Histograms(*dataframe.DataFrame, []string) error { return nil }

// Importances implements Renderer.
func (NopRenderer) Importances([]Importance) error { return nil }

// PlotRenderer writes PNG charts into Dir using gonum/plot.
type PlotRenderer struct {
	Dir    string
	Width  vg.Length
	Height vg.Length
}

// NewPlotRenderer creates a renderer writing into dir with a 15x10 inch canvas.
func NewPlotRenderer(dir string) *PlotRenderer {
	return &PlotRenderer{Dir: dir, Width: 15 * vg.Inch, Height: 10 * vg.Inch}
}

// Histograms implements Renderer. Null cells are left out of each histogram.
func (r *PlotRenderer) Histograms(df *dataframe.DataFrame, columns []string) error {
	if len(columns) == 0 {
		return nil
	}
	const cols = 2
	rows := (len(columns) + cols - 1) / cols

	plots := make([][]*plot.Plot, rows)
	for j := range plots {
		plots[j] = make([]*plot.Plot, cols)
		for i := range plots[j] {
			k := j*cols + i
			if k >= len(columns) {
				blank := plot.New()
				blank.HideAxes()
				plots[j][i] = blank
				continue
			}
			p, err := histogram(df, columns[k])
			if err != nil {
				return err
			}
			plots[j][i] = p
		}
	}

	img := vgimg.New(r.Width, r.Height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter,
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(4),
	}
	canvases := plot.Align(plots, tiles, dc)
	for j := range plots {
		for i := range plots[j] {
			plots[j][i].Draw(canvases[j][i])
		}
	}

	return r.writePNG(HistogramsFile, img)
}

func histogram(df *dataframe.DataFrame, column string) (*plot.Plot, error) {
	col, err := df.Float64(column)
	if err != nil {
		return nil, err
	}
	values, valid := col.Values(), col.Valid()
	observed := make(plotter.Values, 0, len(values))
	for i, v := range values {
		if valid[i] {
			observed = append(observed, v)
		}
	}

	p := plot.New()
	p.Title.Text = column
	p.Y.Label.Text = "Count"
	if len(observed) == 0 {
		return p, nil
	}
	h, err := plotter.NewHist(observed, HistogramBins)
	if err != nil {
		return nil, fmt.Errorf("histogram of %s: %w", column, err)
	}
	p.Add(h)
	return p, nil
}

// Importances implements Renderer. The most important feature is drawn on top.
func (r *PlotRenderer) Importances(ranked []Importance) error {
	if len(ranked) == 0 {
		return nil
	}
	n := len(ranked)
	values := make(plotter.Values, n)
	names := make([]string, n)
	for i, imp := range ranked {
		values[n-1-i] = imp.Importance
		names[n-1-i] = imp.Feature
	}

	p := plot.New()
	p.Title.Text = "Feature importances"
	p.X.Label.Text = "Importance"
	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return fmt.Errorf("importance chart: %w", err)
	}
	bars.Horizontal = true
	p.Add(bars)
	p.NominalY(names...)

	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return fmt.Errorf("creating plot directory: %w", err)
	}
	return p.Save(10*vg.Inch, 6*vg.Inch, filepath.Join(r.Dir, ImportancesFile))
}

func (r *PlotRenderer) writePNG(name string, img *vgimg.Canvas) (err error) {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return fmt.Errorf("creating plot directory: %w", err)
	}
	path := filepath.Join(r.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
