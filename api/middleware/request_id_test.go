package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/angelmondragon/repairpos/pkg/logger"
	"github.com/angelmondragon/repairpos/pkg/types"
)

func TestRequestIDKeepsOrReplacesCallerID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		keep bool
	}{
		{name: "kept", in: "till-2-0042", keep: true},
		{name: "missing"},
		{name: "too long", in: strings.Repeat("a", maxRequestIDLen+1)},
		{name: "whitespace", in: "abc 123"},
		{name: "control", in: "abc\x01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := RequestID(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				seen = w.Header().Get(types.RequestIDHeader)
			}))
			req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
			if tt.in != "" {
				req.Header.Set(types.RequestIDHeader, tt.in)
			}
			resp := httptest.NewRecorder()
			h.ServeHTTP(resp, req)

			got := resp.Header().Get(types.RequestIDHeader)
			assert.Equal(t, got, seen, "id must be set before the handler runs")
			if tt.keep {
				assert.Equal(t, tt.in, got)
				return
			}
			assert.NotEqual(t, tt.in, got)
			assert.Len(t, got, 36)
		})
	}
}
