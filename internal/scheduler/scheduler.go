// Package scheduler runs the periodic static export of Live pages.
package scheduler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pageflow/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ExportDirectory is the directory below the export root used by scheduled runs.
const ExportDirectory = "scheduled"

const runTimeout = 10 * time.Minute

// Exporter is the part of the export service the scheduler needs.
type Exporter interface {
	Run(ctx context.Context, opts service.ExportOptions) (*service.ExportResult, error)
}

// Scheduler exports Live pages on a cron schedule.
type Scheduler struct {
	exporter Exporter
	schedule string
	cron     *cron.Cron
	logger   zerolog.Logger
}

// New creates a scheduler. It does nothing until Start is called.
func New(exporter Exporter, schedule string, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		exporter: exporter,
		schedule: strings.TrimSpace(schedule),
		cron:     cron.New(),
		logger:   logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start registers the export job. An empty schedule leaves the scheduler idle.
func (s *Scheduler) Start() error {
	if s.schedule == "" {
		s.logger.Debug().Msg("scheduled export disabled")
		return nil
	}
	if s.exporter == nil {
		return errors.New("scheduler: exporter is required")
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error().Err(err).Msg("scheduled export failed")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info().Str("schedule", s.schedule).Int("jobs", len(s.cron.Entries())).Msg("scheduler started")
	return nil
}

// Stop waits for a running export to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("scheduler stopped")
}

// RunOnce exports the Live pages immediately.
func (s *Scheduler) RunOnce(ctx context.Context) (*service.ExportResult, error) {
	result, err := s.exporter.Run(ctx, service.ExportOptions{
		Format:          service.ExportFormatStatic,
		ExportDirectory: ExportDirectory,
		IncludeLiveOnly: true,
		GenerateSitemap: true,
		MinifyAssets:    true,
	})
	if err != nil {
		return nil, err
	}
	if !result.Success {
		s.logger.Info().Str("reason", result.Message).Msg("scheduled export skipped")
		return result, nil
	}
	s.logger.Info().Int("files", result.FileCount).Str("path", result.ExportPath).Msg("scheduled export finished")
	return result, nil
}
