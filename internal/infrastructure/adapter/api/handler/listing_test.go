package handler

import (
	"errors"
	"iter"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	mockcore "github.com/amirhossein-jamali/promo-ledger/mocks/port/core"
)

// brokenWriter fails every body write, like a client that hung up
type brokenWriter struct {
	header http.Header
}

func (w *brokenWriter) Header() http.Header             { return w.header }
func (w *brokenWriter) Write([]byte) (int, error)       { return 0, errors.New("broken pipe") }
func (w *brokenWriter) WriteString(string) (int, error) { return 0, errors.New("broken pipe") }
func (w *brokenWriter) WriteHeader(int)                 {}

func numbers(n int) iter.Seq2[int, error] {
	return func(yield func(int, error) bool) {
		for i := 1; i <= n; i++ {
			if !yield(i, nil) {
				return
			}
		}
	}
}

func exportContext(w http.ResponseWriter) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/export", nil)
	return c
}

func TestWriteCSV(t *testing.T) {
	row := func(n int) []string { return []string{strconv.Itoa(n)} }

	t.Run("Streams header and rows", func(t *testing.T) {
		mockLogger := mockcore.NewMockLogger(t)
		rec := httptest.NewRecorder()

		writeCSV(exportContext(rec), mockLogger, "numbers.csv", []string{"n"}, numbers(2), row)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "n\n1\n2\n", rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "numbers.csv")
	})

	testCases := []struct {
		name    string
		header  []string
		message string
	}{
		{"Header write failure is logged", []string{strings.Repeat("n", 5000)}, "Failed to write CSV header"},
		{"Flush failure is logged", []string{"n"}, "Failed to flush CSV export"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockLogger := mockcore.NewMockLogger(t)
			mockLogger.EXPECT().Warn(tc.message, mock.MatchedBy(func(fields map[string]any) bool {
				return fields["file"] == "numbers.csv" && fields["error"] == "broken pipe"
			})).Once()

			writeCSV(exportContext(&brokenWriter{header: http.Header{}}), mockLogger, "numbers.csv", tc.header, numbers(2), row)
		})
	}
}
