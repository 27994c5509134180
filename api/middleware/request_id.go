package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/repairpos/pkg/logger"
	"github.com/angelmondragon/repairpos/pkg/types"
)

const maxRequestIDLen = 64

// RequestID keeps a usable caller supplied id or mints a uuid. The id is set
// on the response before the handler runs so error envelopes can echo it.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(types.RequestIDHeader)
			if !usableRequestID(id) {
				id = uuid.NewString()
			}
			w.Header().Set(types.RequestIDHeader, id)

			if logg != nil {
				r = r.WithContext(logg.WithRequestID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// usableRequestID accepts short visible-ASCII tokens only.
func usableRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}
