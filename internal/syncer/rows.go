package syncer

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/taskscout/internal/domain"
)

// FieldDelimiter separates columns in rows emitted by the cache's
// command-line query interface. The unit separator never appears in
// stored values.
const FieldDelimiter = "\x1f"

// RowQuerier fetches session pointer rows from the external key-value
// cache. Implementations must return rows ordered by update time
// descending and silently drop rows whose key does not decode.
type RowQuerier interface {
	QueryRows(ctx context.Context) ([]domain.SessionCacheRow, error)
}

// rowStatement selects every session pointer, newest first.
const rowStatement = "SELECT key, context_id, updated_at FROM cache " +
	"WHERE key LIKE 'ctx:session:%' ORDER BY updated_at DESC"

// CLIQuerier shells out to the cache's query tool. The tool receives the
// statement as its final argument and must print one row per line with
// columns separated by FieldDelimiter.
type CLIQuerier struct {
	command string
	args    []string
}

func NewCLIQuerier(command string, args ...string) *CLIQuerier {
	return &CLIQuerier{command: command, args: args}
}

// QueryRows runs the external query process and decodes its output. A
// non-zero exit is a hard failure for the whole sync attempt.
func (q *CLIQuerier) QueryRows(ctx context.Context) ([]domain.SessionCacheRow, error) {
	args := append(append([]string{}, q.args...), "-separator", FieldDelimiter, rowStatement)
	cmd := exec.CommandContext(ctx, q.command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("syncer.CLIQuerier.QueryRows: %s: %w (stderr: %s)",
			q.command, err, strings.TrimSpace(stderr.String()))
	}

	return DecodeRowLines(strings.Split(stdout.String(), "\n")), nil
}

// DecodeRowLines parses key/context_id/updated_at lines into cache rows.
// Undecodable lines are dropped, never fatal.
func DecodeRowLines(lines []string) []domain.SessionCacheRow {
	var rows []domain.SessionCacheRow
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		fields := strings.Split(line, FieldDelimiter)
		if len(fields) != 3 {
			log.Debug().Str("line", line).Msg("dropping malformed cache row")
			continue
		}

		row, err := domain.ParseSessionCacheKey(fields[0])
		if err != nil {
			log.Debug().Str("key", fields[0]).Msg("dropping undecodable cache key")
			continue
		}

		updatedAt, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			log.Debug().Str("key", fields[0]).Str("updated_at", fields[2]).Msg("dropping row with bad update time")
			continue
		}

		row.ContextID = fields[1]
		row.UpdatedAt = updatedAt
		rows = append(rows, row)
	}
	return rows
}
