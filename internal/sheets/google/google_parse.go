package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"studyplan/internal/core"
)

// parseCompletionRows converts sheet rows back into completions. Header rows and
// rows without a parseable date or session are skipped.
func parseCompletionRows(values [][]interface{}) []core.Completion {
	var out []core.Completion
	for _, row := range values {
		cols := toStrings(row)
		if len(cols) < 2 {
			continue
		}
		date, err := core.ParseDate(cols[0])
		if err != nil || cols[1] == "" {
			continue
		}
		comp := core.Completion{Date: date, SessionID: cols[1], Subject: safeGet(cols, 2)}
		if ts := safeGet(cols, 3); ts != "" {
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				comp.CompletedAt = t
			}
		}
		if id, err := strconv.ParseInt(safeGet(cols, 4), 10, 64); err == nil {
			comp.ID = id
		}
		out = append(out, comp)
	}
	return out
}

// findRow returns the 1-based sheet row holding date and sessionID, or 0.
func findRow(values [][]interface{}, date, sessionID string) int {
	for i, row := range values {
		cols := toStrings(row)
		if safeGet(cols, 0) == date && safeGet(cols, 1) == sessionID {
			return i + 1
		}
	}
	return 0
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
