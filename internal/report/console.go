package report

import (
	"context"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/sortbench/internal/model"
)

// Console prints an aligned, human-readable table. The fastest algorithm of
// each row is highlighted when color output is enabled.
type Console struct {
	Out io.Writer
}

func (c Console) WriteTable(_ context.Context, table model.ResultTable) error {
	p := message.NewPrinter(language.English)
	bold := color.New(color.Bold)
	fast := color.New(color.FgGreen)

	tw := tabwriter.NewWriter(c.Out, 0, 0, 2, ' ', tabwriter.AlignRight)
	if _, err := bold.Fprintln(tw, strings.Join(columnHeaders(), "\t")+"\t"); err != nil {
		return eris.Wrap(err, "report: write console header")
	}

	for _, r := range table.Rows {
		cells := []string{p.Sprintf("%d", r.Size)}
		best := fastest(r)
		for i, a := range model.AllAlgorithms() {
			ms, ok := r.Elapsed(a)
			if !ok {
				cells = append(cells, NotMeasured)
				continue
			}
			s := p.Sprintf("%d", ms)
			if i == best {
				s = fast.Sprint(s)
			}
			cells = append(cells, s)
		}
		if _, err := io.WriteString(tw, strings.Join(cells, "\t")+"\t\n"); err != nil {
			return eris.Wrap(err, "report: write console row")
		}
	}
	return eris.Wrap(tw.Flush(), "report: flush console")
}

// fastest returns the column index of the smallest measured duration,
// preferring the earlier column on ties, or -1 when nothing was measured.
func fastest(r model.ResultRow) int {
	best, bestMS := -1, int64(0)
	for i, a := range model.AllAlgorithms() {
		ms, ok := r.Elapsed(a)
		if ok && (best < 0 || ms < bestMS) {
			best, bestMS = i, ms
		}
	}
	return best
}
