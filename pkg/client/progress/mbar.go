package progress

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 5

// MultiBar renders a set of progress bars to one terminal region and
// runs the work producing them on a bounded errgroup.
type MultiBar struct {
	w     io.Writer
	width int

	mu              sync.Mutex
	bars            []*Bar
	lastWrittenRows int
	changed         bool

	eg *errgroup.Group
}

func NewMultiBar(dest io.Writer, width int, concurrency int) *MultiBar {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	eg := &errgroup.Group{}
	eg.SetLimit(concurrency)
	return &MultiBar{w: dest, width: width, eg: eg}
}

// Run repaints until ctx is cancelled. Call it on its own goroutine.
func (m *MultiBar) Run(ctx context.Context) {
	t := time.NewTicker(100 * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.mu.Lock()
			changed := m.changed
			m.changed = false
			m.mu.Unlock()
			if changed {
				m.print()
			}
		}
	}
}

// Go adds a bar and schedules fun on the group.
func (m *MultiBar) Go(name string, initstatus string, fun func(b *Bar) error) {
	bar := &Bar{mb: m, Name: name, Status: initstatus, Width: m.width}
	m.mu.Lock()
	m.bars = append(m.bars, bar)
	m.mu.Unlock()
	m.print()

	m.eg.Go(func() error {
		if err := fun(bar); err != nil {
			bar.Status = "failed"
			bar.Notify()
			return err
		}
		bar.Done = true
		bar.Notify()
		return nil
	})
}

func (m *MultiBar) Wait() error {
	err := m.eg.Wait()
	m.print()
	return err
}

func (m *MultiBar) markChanged() {
	m.mu.Lock()
	m.changed = true
	m.mu.Unlock()
}

func (m *MultiBar) print() {
	m.mu.Lock()
	defer m.mu.Unlock()

	buf := &bytes.Buffer{}
	if m.lastWrittenRows > 0 {
		fmt.Fprintf(buf, "\033[%dA\033[J", m.lastWrittenRows)
	}
	for _, b := range m.bars {
		b.Write(buf)
	}
	_, _ = m.w.Write(buf.Bytes())
	m.lastWrittenRows = len(m.bars)
}
