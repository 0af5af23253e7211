package handler

import (
	"encoding/csv"
	"fmt"
	"iter"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
)

const maxListLimit = 1000

// parseLimit reads ?limit, defaulting to maxListLimit
func parseLimit(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return maxListLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > maxListLimit {
		return 0, errs.NewValidationError("limit", fmt.Sprintf("must be between 1 and %d", maxListLimit))
	}
	return limit, nil
}

// parseTime accepts RFC 3339 timestamps and plain dates (midnight UTC)
func parseTime(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errs.NewValidationError(field, "must be an RFC 3339 timestamp or YYYY-MM-DD date")
}

// collect drains at most limit items of seq
func collect[T any](seq iter.Seq2[T, error], limit int) ([]T, error) {
	out := make([]T, 0)
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, item)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// writeCSV streams seq as a CSV attachment. An error before the first row is answered
// as JSON; later errors can only cut the stream short.
func writeCSV[T any](
	c *gin.Context,
	logger coreport.Logger,
	filename string,
	header []string,
	seq iter.Seq2[T, error],
	row func(T) []string,
) {
	next, stop := iter.Pull2(seq)
	defer stop()

	first, err, ok := next()
	if ok && err != nil {
		respondError(c, logger, "export", err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	if err := w.Write(header); err != nil {
		logger.Warn("Failed to write CSV header", map[string]any{"file": filename, "error": err.Error()})
		return
	}

	rows := 0
	for item := first; ok; item, err, ok = next() {
		if err != nil {
			logger.Error("CSV export interrupted", map[string]any{
				"file":       filename,
				"rows":       rows,
				"error":      err.Error(),
				"request_id": coreport.RequestID(c.Request.Context()),
			})
			break
		}
		if err := w.Write(row(item)); err != nil {
			logger.Warn("Failed to write CSV row", map[string]any{"file": filename, "error": err.Error()})
			return
		}
		rows++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		logger.Warn("Failed to flush CSV export", map[string]any{"file": filename, "rows": rows, "error": err.Error()})
	}
}
