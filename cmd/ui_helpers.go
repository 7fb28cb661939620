package cmd

import (
	"fmt"
	"io"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
)

var spinnerFrames = []string{"-", "\\", "|", "/"}

// startInlineSpinner animates frames followed by text on the current line
// until the returned function is called. The line is blanked on stop.
func startInlineSpinner(w io.Writer, text string, frames []string, interval time.Duration) func() {
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
			select {
			case <-stop:
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s", line)
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
		})
	}
}

// progress shows a live byte counter for a transfer in a pterm area.
type progress struct {
	verb  string
	area  *pterm.AreaPrinter
	stop  chan struct{}
	wg    sync.WaitGroup
	mu    sync.Mutex
	bytes int64
	start time.Time
}

// startProgress begins redrawing the counter. When enabled is false the
// returned progress only counts.
func startProgress(verb string, enabled bool) *progress {
	p := &progress{verb: verb, stop: make(chan struct{}), start: time.Now()}
	if !enabled {
		return p
	}
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		return p
	}
	cursor.Hide()
	p.area = area
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		t := time.NewTicker(120 * time.Millisecond)
		defer t.Stop()
		for i := 0; ; i++ {
			select {
			case <-t.C:
				area.Update(fmt.Sprintf("%s %s %s", spinnerFrames[i%len(spinnerFrames)], p.verb, formatBytes(p.total())))
			case <-p.stop:
				return
			}
		}
	}()
	return p
}

func (p *progress) add(n int) {
	p.mu.Lock()
	p.bytes += int64(n)
	p.mu.Unlock()
}

func (p *progress) total() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bytes
}

// done stops redrawing and returns the byte total and elapsed time.
func (p *progress) done() (int64, time.Duration) {
	if p.area != nil {
		close(p.stop)
		p.wg.Wait()
		p.area.Stop()
		p.area = nil
		cursor.Show()
	}
	return p.total(), time.Since(p.start)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
