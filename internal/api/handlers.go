package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dgnsrekt/ttserve/internal/speech"
)

// SpeechRequest represents the request body for /v1/audio/speech.
// "input" is the canonical field; "text" is accepted for compatibility
// with clients using the older name.
type SpeechRequest struct {
	Input string `json:"input"`
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

// HealthResponse represents the response body for /health.
type HealthResponse struct {
	Status string `json:"status"`
	Voice  string `json:"voice"`
}

// handleSpeech handles POST /v1/audio/speech requests.
func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req SpeechRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("failed to decode speech request", "error", err)
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	// "input" wins when both fields are present.
	text := req.Input
	if text == "" {
		text = req.Text
	}

	if strings.TrimSpace(text) == "" {
		http.Error(w, "no text provided", http.StatusBadRequest)
		return
	}

	if len(text) > s.cfg.MaxTextLength {
		s.logger.Warn("text exceeds max length", "length", len(text), "max", s.cfg.MaxTextLength)
		http.Error(w, "text exceeds maximum length", http.StatusBadRequest)
		return
	}

	voice := req.Voice
	if voice == "" {
		voice = s.cfg.DefaultVoice
	}

	requestID := uuid.New().String()

	audio, err := s.provider.Acquire(r.Context(), speech.Request{
		Text:  text,
		Voice: voice,
	})
	if err != nil {
		if errors.Is(err, speech.ErrSynthesisTimeout) {
			s.logger.Error("speech request timed out",
				"request_id", requestID,
				"voice", voice,
				"text_length", len(text),
			)
			http.Error(w, "TTS timeout", http.StatusInternalServerError)
			return
		}

		s.logger.Error("speech request failed",
			"request_id", requestID,
			"voice", voice,
			"text_length", len(text),
			"error", err,
		)
		http.Error(w, "TTS failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	if _, err := w.Write(audio); err != nil {
		// Client went away mid-response; nothing to recover.
		s.logger.Debug("failed to write audio response", "request_id", requestID, "error", err)
	}
}

// handleHealth handles GET /health requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{
		Status: "ok",
		Voice:  s.cfg.DefaultVoice,
	})
}
