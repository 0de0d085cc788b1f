package handlers

import (
	"context"
	"net/http"
	"time"
)

// Health answers OK when ping succeeds within two seconds.
func Health(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			http.Error(w, "UNAVAILABLE", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("OK"))
	}
}

func Welcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "Welcome to the socialApp API"})
}
