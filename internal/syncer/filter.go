package syncer

import (
	"fmt"
	"sort"

	"github.com/gosuda/taskscout/internal/domain"
)

// DefaultRowLimit bounds how many sessions one sync run may select.
const DefaultRowLimit = 120

// Filters narrow which cache rows a sync run selects.
type Filters struct {
	EngineerID string `json:"engineerId,omitempty"`
	Host       string `json:"host,omitempty"`
	Source     string `json:"source"` // "all" or a known source name
	Limit      int    `json:"limit"`
}

// Validate rejects unusable filter values before any I/O happens.
func (f Filters) Validate() error {
	if f.Source != "" && f.Source != "all" && !domain.ParseSource(f.Source).Known() {
		return fmt.Errorf("syncer.Filters.Validate: invalid source filter %q", f.Source)
	}
	return nil
}

func (f Filters) matches(row domain.SessionCacheRow) bool {
	if f.EngineerID != "" && row.EngineerID != f.EngineerID {
		return false
	}
	if f.Host != "" && row.Host != f.Host {
		return false
	}
	if f.Source != "" && f.Source != "all" && row.Source != domain.ParseSource(f.Source) {
		return false
	}
	return true
}

// SelectRows filters rows, collapses duplicates to the most recently
// updated pointer per session, orders newest first, and truncates to the
// limit. Zero matching rows is an explicit failure, not an empty success:
// callers must be able to tell "nothing to sync" from a misconfiguration.
func SelectRows(rows []domain.SessionCacheRow, f Filters) ([]domain.SessionCacheRow, error) {
	latest := make(map[string]domain.SessionCacheRow)
	var order []string
	for _, row := range rows {
		if !f.matches(row) {
			continue
		}
		key := row.DedupKey()
		existing, ok := latest[key]
		if !ok {
			latest[key] = row
			order = append(order, key)
			continue
		}
		// Ties keep the first row seen, so dedup stays deterministic.
		if row.UpdatedAt > existing.UpdatedAt {
			latest[key] = row
		}
	}

	if len(latest) == 0 {
		return nil, fmt.Errorf("syncer.SelectRows: %w", domain.ErrNoSessions)
	}

	selected := make([]domain.SessionCacheRow, 0, len(latest))
	for _, key := range order {
		selected = append(selected, latest[key])
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].UpdatedAt > selected[j].UpdatedAt
	})

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultRowLimit
	}
	if len(selected) > limit {
		selected = selected[:limit]
	}
	return selected, nil
}
