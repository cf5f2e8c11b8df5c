package progress

import (
	"fmt"
	"io"
	"strings"

	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/client/units"
)

// Bar is one row of a MultiBar. It renders either a determinate byte
// progress bar or a status word for phases without a known size.
type Bar struct {
	Name      string
	Total     int64 // total bytes, <=0 for indeterminate
	Completed int64
	Width     int
	Status    string
	Done      bool
	mb        *MultiBar
}

func (b *Bar) Write(w io.Writer) {
	if b.Width == 0 {
		b.Width = 40
	}
	var filled int
	var status string
	switch {
	case b.Done:
		filled = b.Width
		status = b.Status
	case b.Total <= 0:
		filled = 0
		status = b.Status
	default:
		filled = int(float64(b.Width) * float64(b.Completed) / float64(b.Total))
		if filled < 0 {
			filled = 0
		}
		if filled > b.Width {
			filled = b.Width
		}
		status = units.HumanSize(float64(b.Completed)) + "/" + units.HumanSize(float64(b.Total))
	}
	fmt.Fprintf(w, "%s [%s%s] %s\n",
		b.Name,
		strings.Repeat("+", filled),
		strings.Repeat("-", b.Width-filled),
		status,
	)
}

func (b *Bar) SetProgress(completed, total int64) {
	b.Completed, b.Total = completed, total
	b.Notify()
}

func (b *Bar) SetStatus(name, status string) {
	b.Name, b.Status = name, status
	b.Notify()
}

func (b *Bar) Notify() {
	if b.mb != nil {
		b.mb.markChanged()
	}
}

// WrapReader returns a reader that advances the bar as it is consumed.
func (b *Bar) WrapReader(rc io.ReadCloser, name string, total int64, onProcess, onComplete, onFailed string) io.ReadCloser {
	b.Name, b.Total, b.Status = name, total, onProcess
	b.Notify()
	return &barReader{rc: rc, b: b, onComplete: onComplete, onFailed: onFailed}
}

type barReader struct {
	rc         io.ReadCloser
	b          *Bar
	onComplete string
	onFailed   string
}

func (r *barReader) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)
	r.b.Completed += int64(n)
	if r.b.Completed >= r.b.Total {
		r.b.Status = r.onComplete
		r.b.Done = true
	}
	r.b.Notify()
	return n, err
}

func (r *barReader) Close() error {
	if r.b.Completed < r.b.Total {
		r.b.Status = r.onFailed
	}
	r.b.Notify()
	return r.rc.Close()
}

// WrapWriter returns a writer that advances the bar as bytes land.
func (b *Bar) WrapWriter(w io.Writer, name string, total int64, onProcess, onComplete, onFailed string) io.Writer {
	b.Name, b.Total, b.Status = name, total, onProcess
	b.Notify()
	return &barWriter{w: w, b: b, onComplete: onComplete, onFailed: onFailed}
}

type barWriter struct {
	w          io.Writer
	b          *Bar
	onComplete string
	onFailed   string
}

func (r *barWriter) Write(p []byte) (int, error) {
	n, err := r.w.Write(p)
	if err != nil {
		r.b.Status = r.onFailed
		r.b.Done = true
		r.b.Notify()
		return n, err
	}
	r.b.Completed += int64(n)
	if r.b.Completed >= r.b.Total {
		r.b.Status = r.onComplete
		r.b.Done = true
	}
	r.b.Notify()
	return n, nil
}
