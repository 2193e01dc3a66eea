package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
)

// Spinner shows activity while relays are contacted.
type Spinner struct {
	message string
	frames  []string
	index   int
	done    chan struct{}
	wg      sync.WaitGroup
	writer  io.Writer
	active  bool
	mu      sync.Mutex
}

var (
	sunFrames   = []string{"◜", "◝", "◞", "◟"}
	plainFrames = []string{"|", "/", "-", "\\"}
)

// NewSpinner creates a spinner. It stays silent when colors are off or in quiet mode.
func NewSpinner(message string) *Spinner {
	frames := sunFrames
	if NoColor {
		frames = plainFrames
	}
	return &Spinner{
		message: message,
		frames:  frames,
		writer:  statusOut,
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	if NoColor || Verbosity < VerbNormal || Verbosity >= VerbVerbose {
		return
	}

	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.done = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				s.mu.Lock()
				frame := s.frames[s.index]
				s.index = (s.index + 1) % len(s.frames)
				msg := s.message
				s.mu.Unlock()

				fmt.Fprintf(s.writer, "\r%s %s", AccentStyle.Render(frame), msg)
			}
		}
	}()
}

// Stop ends the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	close(s.done)
	s.mu.Unlock()

	s.wg.Wait()
	fmt.Fprint(s.writer, "\r\033[K")
}

// UpdateMessage replaces the spinner message.
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Progress renders an upload progress bar on one line.
type Progress struct {
	message string
	total   int64
	writer  io.Writer
	bar     progress.Model
	mu      sync.Mutex
}

// NewProgress creates a progress bar for total bytes.
func NewProgress(message string, total int64) *Progress {
	opts := []progress.Option{progress.WithWidth(24), progress.WithoutPercentage()}
	if !NoColor {
		opts = append(opts, progress.WithGradient("#d98c5f", "#f0b567"))
	}
	return &Progress{
		message: message,
		total:   total,
		writer:  statusOut,
		bar:     progress.New(opts...),
	}
}

// Update redraws the bar; it matches the blossom progress callback.
func (p *Progress) Update(current, total int64) {
	if Verbosity < VerbNormal {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if total > 0 {
		p.total = total
	}
	pct := 0.0
	if p.total > 0 {
		pct = float64(current) / float64(p.total)
	}
	fmt.Fprintf(p.writer, "\r\033[K%*s  %s %s / %s", VerbWidth, p.message, p.bar.ViewAs(pct), FormatBytes(current), FormatBytes(p.total))
}

// Done clears the bar.
func (p *Progress) Done() {
	if Verbosity < VerbNormal {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.writer, "\r\033[K")
}

// FormatBytes formats a byte count for display.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
