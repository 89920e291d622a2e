// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"spotrank/internal/app"
	"spotrank/internal/domain"
)

const maxLimit = 200

type Handlers struct {
	Reviews *app.ReviewService
	Ratings *app.RatingService
	Spots   *app.TopSpotsService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Post("/v1/reviews", h.createReview)
	s.mux.Get("/v1/reviews/{id}", h.getReview)
	s.mux.Post("/v1/reviews/{id}/finalize", h.finalizeRating)
	s.mux.Delete("/v1/users/{userID}/reviews/{id}", h.deleteReview)
	s.mux.Get("/v1/users/{userID}/reviews/{id}/comparison", h.comparisonCandidates)

	s.mux.Get("/v1/top-spots", h.globalTopSpots)
	s.mux.Get("/v1/users/{userID}/top-spots", h.userTopSpots)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps the domain error taxonomy onto HTTP; the message is passed
// through unchanged.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrInvalidArgument):
		writeProblem(w, http.StatusBadRequest, "Invalid Argument", err.Error())
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		writeProblem(w, http.StatusBadGateway, "Upstream Unavailable", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	etag, body := calcETagAndBody(v)
	if status == http.StatusOK && etag != "" {
		if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
			w.Header().Set("ETag", etag)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

type createReviewRequest struct {
	UserID    string   `json:"userId"`
	PlaceID   string   `json:"placeId"`
	PlaceName string   `json:"placeName"`
	Rating    float64  `json:"rating"`
	Notes     *string  `json:"notes"`
	Photos    []string `json:"photos"`
}

func (h *Handlers) createReview(w http.ResponseWriter, r *http.Request) {
	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	rv, err := h.Reviews.CreateReview(r.Context(), domain.NewReview{
		UserID:    req.UserID,
		PlaceID:   req.PlaceID,
		PlaceName: req.PlaceName,
		Rating:    req.Rating,
		Notes:     req.Notes,
		Photos:    req.Photos,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, rv)
}

func (h *Handlers) getReview(w http.ResponseWriter, r *http.Request) {
	rv, err := h.Reviews.GetReview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rv)
}

func (h *Handlers) deleteReview(w http.ResponseWriter, r *http.Request) {
	if err := h.Reviews.DeleteReview(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) comparisonCandidates(w http.ResponseWriter, r *http.Request) {
	out, err := h.Ratings.ComparisonCandidates(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

type finalizeRequest struct {
	ChosenRating *float64 `json:"chosenRating"`
	Comparison   string   `json:"comparison"`
}

type finalizeResponse struct {
	ReviewID    string  `json:"reviewId"`
	FinalRating float64 `json:"finalRating"`
}

func (h *Handlers) finalizeRating(w http.ResponseWriter, r *http.Request) {
	var req finalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if req.ChosenRating == nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "chosenRating is required")
		return
	}
	id := chi.URLParam(r, "id")
	final, err := h.Ratings.FinalizeComparativeRating(r.Context(), id, *req.ChosenRating, req.Comparison)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, finalizeResponse{ReviewID: id, FinalRating: final})
}

func (h *Handlers) globalTopSpots(w http.ResponseWriter, r *http.Request) {
	q, ok := parseTopSpotsQuery(w, r)
	if !ok {
		return
	}
	out, err := h.Spots.GlobalTopRatedSpots(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handlers) userTopSpots(w http.ResponseWriter, r *http.Request) {
	q, ok := parseTopSpotsQuery(w, r)
	if !ok {
		return
	}
	out, err := h.Spots.UserAndFriendsTopRatedSpots(r.Context(), chi.URLParam(r, "userID"), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

func parseTopSpotsQuery(w http.ResponseWriter, r *http.Request) (domain.TopSpotsQuery, bool) {
	var q domain.TopSpotsQuery
	vals := r.URL.Query()
	if ls := vals.Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > maxLimit {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return q, false
		}
		q.Limit = l
	}
	if c := vals.Get("country"); c != "" {
		q.Country = &c
	}
	if c := vals.Get("city"); c != "" {
		q.City = &c
	}
	return q, true
}
