package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// TextResult is the success envelope for generateText and describeImage.
type TextResult struct {
	Text string `json:"text"`
}

// ImageResult is the success envelope for generateImage.
type ImageResult struct {
	Base64Image string `json:"base64Image"`
}

// ErrorEnvelope is the body of every failed request.
type ErrorEnvelope struct {
	Error string `json:"error"`
}

func setCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn().Err(err).Msg("Failed to write response body")
	}
}

// NotFound answers any path other than the generate endpoint with the JSON
// error envelope, so unknown routes still carry CORS headers.
func NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w.Header())
		log.Warn().Str("method", r.Method).Str("path", r.URL.Path).Msg("Unknown route")
		writeJSON(w, errNotFound.Kind.Status(), ErrorEnvelope{Error: errNotFound.Message})
	})
}
