package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/garmentiq/revenue-forecast-api/internal/domain"
)

func writeEnvelope(w http.ResponseWriter, status int, env domain.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
