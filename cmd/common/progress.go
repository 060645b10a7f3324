package common

import (
	"io"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// RowProgress counts rows read from the crawl database. The total is not
// known up front, so the bar completes at whatever count Done sees.
type RowProgress struct {
	p   *mpb.Progress
	bar *mpb.Bar
}

// NewRowProgress starts a progress bar named name on w.
func NewRowProgress(w io.Writer, name string) *RowProgress {
	p := mpb.New(mpb.WithWidth(64), mpb.WithOutput(w))
	barStyle := mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟")
	bar := p.New(0,
		barStyle,
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DindentRight}),
			decor.OnComplete(
				decor.Elapsed(decor.ET_STYLE_GO, decor.WC{W: 4}), "Complete",
			),
		),
		mpb.AppendDecorators(
			decor.CurrentNoUnit("%d rows"),
		),
	)
	return &RowProgress{p: p, bar: bar}
}

// Increment records one row.
func (r *RowProgress) Increment() {
	r.bar.Increment()
}

// Current returns the number of rows recorded.
func (r *RowProgress) Current() int64 {
	return r.bar.Current()
}

// Done completes the bar and waits for it to render.
func (r *RowProgress) Done() {
	r.bar.SetTotal(-1, true)
	r.p.Wait()
}
