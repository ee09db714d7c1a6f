package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner animates a one-line status on w until it is stopped or ctx ends.
type spinner struct {
	msg    string
	w      io.Writer
	quit   chan struct{}
	exited chan struct{}
	once   sync.Once
}

// startSpinner draws msg with a rotating frame on w.
func startSpinner(ctx context.Context, w io.Writer, msg string) *spinner {
	s := &spinner{
		msg:    msg,
		w:      w,
		quit:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go s.loop(ctx)
	return s
}

func (s *spinner) loop(ctx context.Context) {
	defer close(s.exited)
	defer s.clear()

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()
	for i := 0; ; i++ {
		fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]), StyleDim.Render(s.msg))
		select {
		case <-ctx.Done():
			return
		case <-s.quit:
			return
		case <-ticker.C:
		}
	}
}

func (s *spinner) clear() {
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len([]rune(s.msg))+2))
}

// Stop clears the line and waits for the animation to end. It may be
// called more than once.
func (s *spinner) Stop() {
	s.once.Do(func() { close(s.quit) })
	<-s.exited
}

// Fail stops the spinner and prints msg as an error.
func (s *spinner) Fail(msg string) {
	s.Stop()
	printError("%s", msg)
}
