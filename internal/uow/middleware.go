package uow

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
)

// Middleware acquires a dedicated connection from the pool for each request,
// publishes it into the request context, and releases it when the request
// completes. Release happens exactly once, on every outcome, including a
// panic recovered further up the chain.
func Middleware(db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := db.Conn(r.Context())
			if err != nil {
				log.Printf("uow: failed to acquire session: %v", err)
				writeServerError(w)
				return
			}
			defer conn.Close()

			ctx := NewContext(r.Context(), conn)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeServerError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Internal server error"})
}
