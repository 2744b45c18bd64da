package progress

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/Digital-Shane/bangumi-tidy/internal/core"
	"github.com/Digital-Shane/bangumi-tidy/internal/tui/theme"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/google/go-cmp/cmp"
)

func finalScanProgressModel(t *testing.T, tm *teatest.TestModel) *ScanProgressModel {
	t.Helper()
	final := tm.FinalModel(t, teatest.WithFinalTimeout(2*time.Second))
	model, ok := final.(*ScanProgressModel)
	if !ok {
		t.Fatalf("Final model type = %T, want *ScanProgressModel", final)
	}
	return model
}

func finalOutput(t *testing.T, tm *teatest.TestModel) []byte {
	t.Helper()
	out, err := io.ReadAll(tm.FinalOutput(t, teatest.WithFinalTimeout(2*time.Second)))
	if err != nil {
		t.Fatalf("FinalOutput read error = %v", err)
	}
	return out
}

func newScanProgressTestModel(t *testing.T, model *ScanProgressModel, opts ...teatest.TestOption) *teatest.TestModel {
	t.Helper()
	tm := teatest.NewTestModel(t, model, opts...)
	t.Cleanup(func() {
		_ = tm.Quit()
	})
	return tm
}

// blockingParse reports one directory, then waits for release or cancellation.
func blockingParse(ready chan<- struct{}, release <-chan struct{}) ParseFunc {
	return func(ctx context.Context, opts core.ParseOptions) (*core.ParseResult, core.Library, error) {
		opts.OnScan("/anime/Show", 1)
		close(ready)
		select {
		case <-release:
			return &core.ParseResult{}, core.Library{}, nil
		case <-ctx.Done():
			return nil, core.Library{}, ctx.Err()
		}
	}
}

func TestScanProgressTUICompletes(t *testing.T) {
	result := &core.ParseResult{Root: "/anime", Files: 3}
	lib := core.Library{Shows: []core.BangumiRecord{{Name: "Show"}}}

	run := func(_ context.Context, opts core.ParseOptions) (*core.ParseResult, core.Library, error) {
		opts.OnScan("/anime", 0)
		opts.OnScan("/anime/Show", 2)
		opts.OnScan("/anime/Other", 1)
		for i := 1; i <= 3; i++ {
			opts.OnAnalyze(i, 3)
		}
		return result, lib, nil
	}

	model := NewScanProgressModel("/anime", run, theme.Default())
	tm := newScanProgressTestModel(t, model, teatest.WithInitialTermSize(100, 20))

	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
	final := finalScanProgressModel(t, tm)

	if final.Err() != nil {
		t.Fatalf("Err() = %v, want nil", final.Err())
	}
	if final.Phase() != PhaseDone {
		t.Errorf("Phase() = %v, want Done", final.Phase())
	}
	if final.Result() != result {
		t.Errorf("Result() = %p, want %p", final.Result(), result)
	}
	if diff := cmp.Diff(lib, final.Library()); diff != "" {
		t.Errorf("Library() mismatch (-want +got):\n%s", diff)
	}
	if final.dirs != 3 || final.files != 3 {
		t.Errorf("dirs, files = %d, %d, want 3, 3", final.dirs, final.files)
	}
	if diff := cmp.Diff(1.0, final.progress.Percent()); diff != "" {
		t.Errorf("progress.Percent diff (-want +got):\n%s", diff)
	}
}

func TestScanProgressTUIShowsScanCounters(t *testing.T) {
	ready := make(chan struct{})
	release := make(chan struct{})
	var releaseOnce sync.Once
	releaseClose := func() { releaseOnce.Do(func() { close(release) }) }
	t.Cleanup(releaseClose)

	model := NewScanProgressModel("/anime", blockingParse(ready, release), theme.Default())
	tm := newScanProgressTestModel(t, model, teatest.WithInitialTermSize(100, 20))
	<-ready

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("Video files: 1")) && bytes.Contains(b, []byte("Current: Show"))
	}, teatest.WithDuration(2*time.Second))

	releaseClose()
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
}

func TestScanProgressTUIQuitKeysCancel(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyType
	}{
		{name: "ctrl_c", key: tea.KeyCtrlC},
		{name: "esc", key: tea.KeyEsc},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ready := make(chan struct{})
			release := make(chan struct{})

			model := NewScanProgressModel("/anime", blockingParse(ready, release), theme.Default())
			tm := newScanProgressTestModel(t, model)
			<-ready
			tm.Send(tea.KeyMsg{Type: tc.key})

			tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
			final := finalScanProgressModel(t, tm)

			if !errors.Is(final.Err(), context.Canceled) {
				t.Errorf("Err() = %v, want context.Canceled", final.Err())
			}
			if final.Phase() == PhaseDone {
				t.Error("Phase() = Done, want an unfinished phase after cancelling")
			}
			if final.ctx.Err() == nil {
				t.Error("parse context was not cancelled")
			}
		})
	}
}

func TestScanProgressTUIWindowResize(t *testing.T) {
	ready := make(chan struct{})
	release := make(chan struct{})
	var releaseOnce sync.Once
	releaseClose := func() { releaseOnce.Do(func() { close(release) }) }
	t.Cleanup(releaseClose)

	model := NewScanProgressModel("/anime", blockingParse(ready, release), theme.Default())
	tm := newScanProgressTestModel(t, model)
	<-ready
	tm.Send(tea.WindowSizeMsg{Width: 100, Height: 40})

	releaseClose()
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
	final := finalScanProgressModel(t, tm)

	if diff := cmp.Diff(100, final.width); diff != "" {
		t.Errorf("width diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(96, final.progress.Width); diff != "" {
		t.Errorf("progress.Width diff (-want +got):\n%s", diff)
	}
}

func TestScanProgressTUIErrorState(t *testing.T) {
	errBoom := errors.New("boom")
	run := func(context.Context, core.ParseOptions) (*core.ParseResult, core.Library, error) {
		return nil, core.Library{}, errBoom
	}

	model := NewScanProgressModel("/anime", run, theme.Default())
	tm := newScanProgressTestModel(t, model)

	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
	final := finalScanProgressModel(t, tm)

	if !errors.Is(final.Err(), errBoom) {
		t.Errorf("Err() = %v, want boom", final.Err())
	}
	if out := finalOutput(t, tm); !bytes.Contains(out, []byte("Error: boom")) {
		t.Errorf("Final output missing error message; output = %q", out)
	}
}

func TestPhaseString(t *testing.T) {
	for phase, want := range map[Phase]string{PhaseScanning: "Scanning", PhaseAnalyzing: "Analyzing", PhaseDone: "Done"} {
		if got := phase.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", phase, got, want)
		}
	}
}
