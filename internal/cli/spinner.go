package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// spinnerInterval is the frame redraw rate.
const spinnerInterval = 100 * time.Millisecond

// spinnerFrames cycle while an operation runs.
var spinnerFrames = []string{"◐", "◓", "◑", "◒"}

// Spinner renders an animated status line while a long operation runs.
// It stops on Stop or when the parent context is cancelled, erasing its
// line either way. The message can be swapped mid-run with SetMessage.
type Spinner struct {
	w       io.Writer
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once

	mu      sync.Mutex
	message string
}

// newSpinner creates a spinner writing to stderr.
func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext creates a spinner that also stops when ctx is
// cancelled.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       os.Stderr,
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
		message: message,
	}
}

// Start begins the animation. It must be paired with Stop.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		defer s.eraseLine()

		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for frame := 0; ; frame++ {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.draw(spinnerFrames[frame%len(spinnerFrames)])
			}
		}
	}()
}

// Stop ends the animation and erases the status line. Safe to call more
// than once and after context cancellation.
func (s *Spinner) Stop() {
	s.once.Do(s.cancel)
	<-s.stopped
}

// SetMessage replaces the status text on the next frame.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	msg := s.message
	s.mu.Unlock()
	fmt.Fprintf(s.w, "\r\033[K%s %s", styleIconSpinner.Render(frame), StyleDim.Render(msg))
}

func (s *Spinner) eraseLine() {
	fmt.Fprint(s.w, "\r\033[K")
}
