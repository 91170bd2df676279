package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	deliverycontext "jobportal/internal/delivery/context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		wantKeep bool
	}{
		{name: "keeps caller id", header: "client-req-1", wantKeep: true},
		{name: "generates when missing", header: ""},
		{name: "replaces unsafe id", header: "evil\r\nX-Injected: 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewRequestIDMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)))

			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			if tt.header != "" {
				req.Header.Set(deliverycontext.HeaderXRequestID, tt.header)
			}
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(req, rec)

			var seen, seenCtx string
			err := m.Process(func(c echo.Context) error {
				seen = deliverycontext.RequestID(c)
				seenCtx = deliverycontext.RequestIDFromContext(c.Request().Context())

				return nil
			})(c)
			require.NoError(t, err)

			assert.Equal(t, seen, seenCtx)
			assert.Equal(t, seen, rec.Header().Get(deliverycontext.HeaderXRequestID))
			if tt.wantKeep {
				assert.Equal(t, tt.header, seen)
			} else {
				_, parseErr := uuid.Parse(seen)
				assert.NoError(t, parseErr)
			}
		})
	}
}
