package report

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/sells-group/sortbench/internal/model"
)

// chartFloorMS is where sub-millisecond timings are drawn; a log axis has no
// zero.
const chartFloorMS = 0.5

// ChartFile renders time against dataset size as a PNG, one line per
// algorithm on a log-scale y axis. Unmeasured algorithms get no line.
type ChartFile struct {
	Path   string
	Width  vg.Length // default 8in
	Height vg.Length // default 5in
}

func (f ChartFile) WriteTable(_ context.Context, table model.ResultTable) error {
	if len(table.Rows) == 0 {
		zap.L().Warn("report: no rows to chart", zap.String("path", f.Path))
		return nil
	}

	p := plot.New()
	p.Title.Text = "Sorting time by dataset size"
	p.X.Label.Text = "size (tickets)"
	p.Y.Label.Text = "time (ms)"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	for i, a := range model.AllAlgorithms() {
		pts := chartSeries(table, a)
		if len(pts) == 0 {
			continue
		}
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return eris.Wrapf(err, "chart: %s series", a)
		}
		line.Color = plotutil.Color(i)
		points.Color = plotutil.Color(i)
		points.Shape = plotutil.Shape(i)
		p.Add(line, points)
		p.Legend.Add(string(a), line, points)
	}

	lo, hi := table.Rows[0].Size, table.Rows[0].Size
	for _, r := range table.Rows[1:] {
		lo = min(lo, r.Size)
		hi = max(hi, r.Size)
	}
	p.X.Min, p.X.Max = float64(lo), float64(hi)
	p.Y.Min = chartFloorMS
	p.Y.Max = max(p.Y.Max, 10*chartFloorMS)

	width, height := f.Width, f.Height
	if width <= 0 {
		width = 8 * vg.Inch
	}
	if height <= 0 {
		height = 5 * vg.Inch
	}
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return eris.Wrap(err, "chart: render")
	}

	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return eris.Wrapf(err, "chart: create dir for %s", f.Path)
	}
	out, err := os.Create(f.Path)
	if err != nil {
		return eris.Wrapf(err, "chart: create %s", f.Path)
	}
	if _, err := wt.WriteTo(out); err != nil {
		out.Close() //nolint:errcheck
		return eris.Wrapf(err, "chart: write %s", f.Path)
	}
	return eris.Wrapf(out.Close(), "chart: close %s", f.Path)
}

// chartSeries returns a's measured (size, ms) points in table order.
func chartSeries(table model.ResultTable, a model.Algorithm) plotter.XYs {
	var pts plotter.XYs
	for _, r := range table.Rows {
		ms, ok := r.Elapsed(a)
		if !ok {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(r.Size), Y: max(float64(ms), chartFloorMS)})
	}
	return pts
}
