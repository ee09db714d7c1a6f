package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestSpinnerStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	var buf bytes.Buffer
	s := startSpinner(context.Background(), &buf, "Settling map...")
	time.Sleep(2 * spinnerInterval)
	s.Stop()
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Settling map...") {
		t.Errorf("spinner output missing message: %q", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("spinner should clear its line on stop: %q", out)
	}
}

func TestSpinnerContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	var buf bytes.Buffer
	s := startSpinner(ctx, &buf, "Working")
	cancel()

	select {
	case <-s.exited:
	case <-time.After(time.Second):
		t.Fatal("spinner did not stop when its context ended")
	}
	s.Stop()
}

func TestSpinnerFail(t *testing.T) {
	var out bytes.Buffer
	prev := output
	output = &out
	defer func() { output = prev }()

	var buf bytes.Buffer
	startSpinner(context.Background(), &buf, "Working").Fail("Layout failed")
	if !strings.Contains(out.String(), "Layout failed") {
		t.Errorf("Fail() output = %q", out.String())
	}
}
