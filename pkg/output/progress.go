package output

import (
	"io"
	"os"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/term"

	"github.com/mtakahara/docdiff/pkg/models"
	"github.com/mtakahara/docdiff/pkg/progress"
)

// barTemplate shows count, a bar, percentage and the current file.
const barTemplate = `{{counters . }} {{bar . }} {{percent . }} {{string . "path"}}`

// ProgressFormatter renders a live progress bar, then delegates final
// summaries to the human formatter.
type ProgressFormatter struct {
	human  *HumanFormatter
	writer io.Writer

	mu    sync.Mutex
	bar   *pb.ProgressBar
	total int
}

// NewProgressFormatter creates a progress bar formatter.
func NewProgressFormatter() *ProgressFormatter {
	return &ProgressFormatter{human: NewHumanFormatter()}
}

// Start prints the run header. The bar itself starts lazily on the
// first event, once totals are known.
func (f *ProgressFormatter) Start(writer io.Writer, op *models.CompareOperation) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	return f.human.Start(writer, op)
}

// Progress advances the bar. A new bar starts whenever the stage total
// changes, so compare and copy phases each get their own bar.
func (f *ProgressFormatter) Progress(e progress.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if e.Total <= 0 {
		return nil
	}

	if f.bar == nil || f.total != e.Total {
		if f.bar != nil {
			f.bar.Finish()
		}
		f.bar = pb.ProgressBarTemplate(barTemplate).New(e.Total)
		f.bar.SetWriter(f.writer)
		if file, ok := f.writer.(*os.File); ok {
			if width, _, err := term.GetSize(int(file.Fd())); err == nil && width > 0 {
				f.bar.SetWidth(width)
			}
		}
		f.bar.Start()
		f.total = e.Total
	}

	f.bar.Set("path", e.Path)
	f.bar.SetCurrent(int64(e.Processed))
	return nil
}

// Complete finishes the bar and prints the human summary.
func (f *ProgressFormatter) Complete(result *models.ComparisonResult) error {
	f.finishBar()
	return f.human.Complete(result)
}

// CopySummary finishes the bar and prints the human copy summary.
func (f *ProgressFormatter) CopySummary(report *models.CopyReport) error {
	f.finishBar()
	return f.human.CopySummary(report)
}

// Error finishes the bar and prints the error.
func (f *ProgressFormatter) Error(err error) error {
	f.finishBar()
	return f.human.Error(err)
}

// Name returns the formatter name.
func (f *ProgressFormatter) Name() string {
	return "progress"
}

func (f *ProgressFormatter) finishBar() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bar != nil {
		f.bar.Finish()
		f.bar = nil
	}
}
