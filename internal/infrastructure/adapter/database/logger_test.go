package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
	mockcore "github.com/amirhossein-jamali/promo-ledger/mocks/port/core"
)

func TestDatabaseLogger_Trace(t *testing.T) {
	begin := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	query := func() (string, int64) { return "SELECT * FROM accounts", 1 }

	testCases := []struct {
		name    string
		elapsed time.Duration
		err     error
		expect  func(l *mockcore.MockLogger)
	}{
		{
			name:    "Regular query at debug",
			elapsed: time.Millisecond,
			expect: func(l *mockcore.MockLogger) {
				l.EXPECT().Debug("SQL Query", mock.MatchedBy(func(f map[string]any) bool {
					return f["type"] == "SELECT" && f["request_id"] == "req-1"
				})).Once()
			},
		},
		{
			name:    "Slow query warns",
			elapsed: time.Second,
			expect: func(l *mockcore.MockLogger) {
				l.EXPECT().Warn("Slow SQL Query", mock.Anything).Once()
			},
		},
		{
			name:    "Error logged",
			elapsed: time.Millisecond,
			err:     errors.New("syntax error"),
			expect: func(l *mockcore.MockLogger) {
				l.EXPECT().Error("SQL Error", mock.MatchedBy(func(f map[string]any) bool {
					return f["error"] == "syntax error"
				})).Once()
			},
		},
		{
			name:    "Record not found is not an error",
			elapsed: time.Millisecond,
			err:     gorm.ErrRecordNotFound,
			expect: func(l *mockcore.MockLogger) {
				l.EXPECT().Debug("SQL Query", mock.Anything).Once()
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockLogger := mockcore.NewMockLogger(t)
			mockTime := mockcore.NewMockTimeProvider(t)
			mockTime.EXPECT().Since(begin).Return(coreport.Duration(tc.elapsed))
			tc.expect(mockLogger)

			l := NewDatabaseLogger(mockLogger, mockTime, "info", 200*time.Millisecond)
			ctx := coreport.WithRequestID(context.Background(), "req-1")
			l.Trace(ctx, begin, query, tc.err)
		})
	}
}
