package dto

import (
	"strconv"
	"time"
)

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
