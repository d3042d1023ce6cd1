package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/quantifyai/refibot/internal/profile"
	"github.com/quantifyai/refibot/internal/transcript"
	"github.com/quantifyai/refibot/pkg/logging"
)

// AdminProfilesHandler serves the admin views over collected lead profiles
// and their conversation transcripts.
type AdminProfilesHandler struct {
	profiles    profile.Repository
	transcripts *transcript.Store
	logger      *logging.Logger
}

// NewAdminProfilesHandler creates an admin profiles handler. transcripts may
// be nil when message logging is disabled.
func NewAdminProfilesHandler(profiles profile.Repository, transcripts *transcript.Store, logger *logging.Logger) *AdminProfilesHandler {
	if profiles == nil {
		panic("handlers: profile repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminProfilesHandler{
		profiles:    profiles,
		transcripts: transcripts,
		logger:      logger,
	}
}

// ProfilesListResponse wraps the profile listing.
type ProfilesListResponse struct {
	Profiles []*profile.Record `json:"profiles"`
	Count    int               `json:"count"`
}

// ListProfiles returns recent profiles, most recently active first.
// GET /admin/profiles?limit=50
func (h *AdminProfilesHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 500 {
		limit = 50
	}

	records, err := h.profiles.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list profiles", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*profile.Record{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ProfilesListResponse{Profiles: records, Count: len(records)})
}

// GetProfile returns one profile by chat identity.
// GET /admin/profiles/{chatID}
func (h *AdminProfilesHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	if chatID == "" {
		http.Error(w, "missing chatID", http.StatusBadRequest)
		return
	}

	rec, err := h.profiles.Get(r.Context(), chatID)
	if errors.Is(err, profile.ErrNotFound) {
		http.Error(w, "profile not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to get profile", "chat_id", chatID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// TranscriptResponse wraps a chat transcript, oldest message first.
type TranscriptResponse struct {
	ChatID   string               `json:"chat_id"`
	Messages []transcript.Message `json:"messages"`
}

// GetTranscript returns the stored message log for one chat.
// GET /admin/profiles/{chatID}/transcript?limit=200
func (h *AdminProfilesHandler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	if chatID == "" {
		http.Error(w, "missing chatID", http.StatusBadRequest)
		return
	}
	if h.transcripts == nil {
		http.Error(w, "transcripts not configured", http.StatusNotFound)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	messages, err := h.transcripts.List(r.Context(), chatID, limit)
	if err != nil {
		h.logger.Error("failed to list transcript", "chat_id", chatID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []transcript.Message{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(TranscriptResponse{ChatID: chatID, Messages: messages})
}
