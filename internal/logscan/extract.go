package logscan

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/gosuda/taskscout/internal/domain"
)

// ExtractFile reads one .jsonl log file and returns every actionable
// TaskRecord found, in file order, annotated with 1-based line numbers.
// Lines that are not valid JSON objects are skipped; they never abort
// the file. An unreadable file yields no records.
func ExtractFile(path, engineer string) []domain.TaskRecord {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var records []domain.TaskRecord
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal([]byte(line), &obj); err != nil || obj == nil {
			continue
		}

		records = append(records, ParseLine(path, i+1, engineer, obj)...)
	}

	return records
}
