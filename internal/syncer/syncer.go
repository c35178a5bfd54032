package syncer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/taskscout/internal/domain"
)

// dryRunPreview caps how many selected rows a dry run logs.
const dryRunPreview = 12

// Syncer runs the full session-sync pipeline: load cache rows, filter and
// dedup them, then dump the selected sessions to disk.
type Syncer struct {
	querier RowQuerier
	dumper  *Dumper
	filters Filters
	dryRun  bool
}

func New(querier RowQuerier, dumper *Dumper, filters Filters, dryRun bool) *Syncer {
	return &Syncer{querier: querier, dumper: dumper, filters: filters, dryRun: dryRun}
}

// Run executes one sync attempt. Configuration problems fail before any
// remote I/O; a dry run stops after selection and only logs a preview.
func (s *Syncer) Run(ctx context.Context) error {
	if err := s.filters.Validate(); err != nil {
		return err
	}

	rows, err := s.querier.QueryRows(ctx)
	if err != nil {
		return fmt.Errorf("syncer.Syncer.Run: %w", err)
	}

	selected, err := SelectRows(rows, s.filters)
	if err != nil {
		return err
	}

	log.Info().
		Int("cacheRows", len(rows)).
		Int("selected", len(selected)).
		Bool("dryRun", s.dryRun).
		Msg("sync selection complete")

	if s.dryRun {
		s.logPreview(selected)
		return nil
	}

	summary, err := s.dumper.DumpAll(ctx, selected, s.filters)
	if err != nil {
		return err
	}

	log.Info().
		Int("sessions", summary.Sessions).
		Int("userMessages", summary.UserMessages).
		Int("failed", summary.Failed).
		Msg("sync run complete")
	return nil
}

func (s *Syncer) logPreview(selected []domain.SessionCacheRow) {
	n := len(selected)
	if n > dryRunPreview {
		n = dryRunPreview
	}
	for _, row := range selected[:n] {
		log.Info().
			Str("source", string(row.Source)).
			Str("host", row.Host).
			Str("engineerId", row.EngineerID).
			Str("sessionId", row.SessionID).
			Int64("updatedAt", row.UpdatedAt).
			Msg("dry run: would dump session")
	}
	if len(selected) > n {
		log.Info().Int("more", len(selected)-n).Msg("dry run: preview truncated")
	}
}
