package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/user/fathom-scraper/internal/delivery/http/request"
	"github.com/user/fathom-scraper/internal/delivery/http/response"
	"github.com/user/fathom-scraper/internal/entity"
	"github.com/user/fathom-scraper/internal/usecase"
	"github.com/user/fathom-scraper/pkg/logger"
)

const (
	MetadataLiveness   = "Metadata service is running!"
	TranscriptLiveness = "Transcript service is running!"

	msgMissingVideoURL = "Missing videoUrl"
	msgInvalidBody     = "Invalid request body"
)

// Handler serves one scraper service. A nil scraper leaves its route unregistered.
type Handler struct {
	metadata   usecase.MetadataScraper
	transcript usecase.TranscriptScraper
	liveness   string
	validate   *validator.Validate
	logger     *slog.Logger
}

func NewHandler(metadata usecase.MetadataScraper, transcript usecase.TranscriptScraper, liveness string, log *slog.Logger) *Handler {
	return &Handler{
		metadata:   metadata,
		transcript: transcript,
		liveness:   liveness,
		validate:   validator.New(),
		logger:     logger.OrDefault(log),
	}
}

func (h *Handler) ServesMetadata() bool   { return h.metadata != nil }
func (h *Handler) ServesTranscript() bool { return h.transcript != nil }

func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	response.Text(w, http.StatusOK, h.liveness)
}

func (h *Handler) HandleScrapeMetadata(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	h.logger.Info("Received request to scrape metadata", "url", req.VideoURL)

	// Scrapes run to completion even if the client goes away.
	record := h.metadata.Scrape(context.WithoutCancel(r.Context()), req.ToEntity())
	response.JSON(w, http.StatusOK, record)
}

func (h *Handler) HandleScrapeTranscript(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	h.logger.Info("Received request to scrape transcript", "url", req.VideoURL)

	transcript := h.transcript.Scrape(context.WithoutCancel(r.Context()), req.ToEntity())
	response.JSON(w, http.StatusOK, entity.TranscriptResponse{Transcript: transcript})
}

// decode writes the 400 reply itself and reports whether the request may proceed.
// An empty body counts as a missing videoUrl.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (request.ScrapeRequest, bool) {
	var req request.ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("Rejecting undecodable request body", "error", err)
		response.Error(w, http.StatusBadRequest, msgInvalidBody)
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, msgMissingVideoURL)
		return req, false
	}
	return req, true
}
