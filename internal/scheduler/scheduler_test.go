package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/pageflow/internal/service"
	"github.com/rs/zerolog"
)

type recordingExporter struct {
	mu     sync.Mutex
	calls  []service.ExportOptions
	result *service.ExportResult
	err    error
}

func (r *recordingExporter) Run(_ context.Context, opts service.ExportOptions) (*service.ExportResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, opts)
	return r.result, r.err
}

func TestRunOnceExportsLivePages(t *testing.T) {
	exporter := &recordingExporter{result: &service.ExportResult{Success: true, FileCount: 3}}
	s := New(exporter, "@daily", zerolog.Nop())

	result, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce returned error: %v", err)
	}
	if result.FileCount != 3 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(exporter.calls) != 1 {
		t.Fatalf("expected one export call, got %d", len(exporter.calls))
	}
	opts := exporter.calls[0]
	if !opts.IncludeLiveOnly || opts.ExportDirectory != ExportDirectory || opts.Format != service.ExportFormatStatic {
		t.Fatalf("unexpected export options %+v", opts)
	}
}

func TestRunOncePropagatesErrors(t *testing.T) {
	boom := errors.New("disk full")
	s := New(&recordingExporter{err: boom}, "@daily", zerolog.Nop())

	if _, err := s.RunOnce(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected export error, got %v", err)
	}
}

func TestStartWithoutScheduleIsIdle(t *testing.T) {
	s := New(&recordingExporter{}, " ", zerolog.Nop())
	if err := s.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if len(s.cron.Entries()) != 0 {
		t.Fatalf("expected no jobs, got %d", len(s.cron.Entries()))
	}
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	s := New(&recordingExporter{}, "every tuesday", zerolog.Nop())
	if err := s.Start(); err == nil {
		t.Fatal("expected invalid schedule to fail")
	}
}

func TestStartRegistersJob(t *testing.T) {
	s := New(&recordingExporter{result: &service.ExportResult{}}, "@hourly", zerolog.Nop())
	if err := s.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer s.Stop()

	if len(s.cron.Entries()) != 1 {
		t.Fatalf("expected one job, got %d", len(s.cron.Entries()))
	}
}
