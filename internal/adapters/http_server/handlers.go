package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"restaurant_booking/internal/app"
	"restaurant_booking/internal/domain"
)

type Handlers struct {
	B *app.BookingService
	Q *app.QueryService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Post("/v1/user-stats", h.initUserStats)
	s.mux.Post("/v1/dish-stats", h.initDishStats)
	s.mux.Post("/v1/bookings", h.bookTable)
	s.mux.Post("/v1/reviews", h.submitReview)

	s.mux.Get("/v1/user-stats/{user}/{restaurant}", h.getUserStats)
	s.mux.Get("/v1/dish-stats/{user}/{dish}", h.getDishStats)
	s.mux.Get("/v1/reviews/{user}/{restaurant}", h.getReview)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeOpError maps domain errors onto problem responses.
func writeOpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrInvalidConfidenceLevel):
		writeProblem(w, http.StatusBadRequest, "Invalid Input", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrAlreadyInitialized),
		errors.Is(err, domain.ErrReviewAlreadyExists):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, domain.ErrUnboundDishRef):
		writeProblem(w, http.StatusUnprocessableEntity, "Unbound Dish Reference", err.Error())
	default:
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "operation failed")
	}
}

// callerID reads the verified caller identity. Authentication itself is the
// host's job; by the time a request lands here the header is trusted.
func callerID(w http.ResponseWriter, r *http.Request) (domain.ID, bool) {
	raw := r.Header.Get("X-User-Key")
	if raw == "" {
		writeProblem(w, http.StatusUnauthorized, "Missing Identity", "X-User-Key header required")
		return domain.ID{}, false
	}
	id, err := domain.ParseID(raw)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Identity", err.Error())
		return domain.ID{}, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
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

func writeWithETag(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// ---- mutations ----

func (h *Handlers) initUserStats(w http.ResponseWriter, r *http.Request) {
	user, ok := callerID(w, r)
	if !ok {
		return
	}
	var req struct {
		Restaurant string `json:"restaurant"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	restaurant, err := domain.ParseID(req.Restaurant)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Restaurant", err.Error())
		return
	}
	rec, err := h.B.InitUserStats(r.Context(), user, restaurant)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"user":        rec.User.String(),
		"restaurant":  rec.Restaurant.String(),
		"visit_count": rec.VisitCount,
	})
}

func (h *Handlers) initDishStats(w http.ResponseWriter, r *http.Request) {
	user, ok := callerID(w, r)
	if !ok {
		return
	}
	var req struct {
		Dish string `json:"dish"`
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	dish, err := domain.ParseID(req.Dish)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Dish", err.Error())
		return
	}
	rec, err := h.B.InitDishStats(r.Context(), user, dish, req.Name)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"user":  rec.User.String(),
		"dish":  rec.Dish.String(),
		"count": rec.Count,
		"name":  rec.Name(),
	})
}

func (h *Handlers) bookTable(w http.ResponseWriter, r *http.Request) {
	user, ok := callerID(w, r)
	if !ok {
		return
	}
	var req struct {
		Restaurant  string   `json:"restaurant"`
		DishIDs     []string `json:"dish_ids"`
		DishUpdates []struct {
			Stats    string `json:"stats"`
			Reserved string `json:"reserved,omitempty"`
		} `json:"dish_updates"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	restaurant, err := domain.ParseID(req.Restaurant)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Restaurant", err.Error())
		return
	}
	dishIDs := make([]domain.ID, 0, len(req.DishIDs))
	for _, s := range req.DishIDs {
		id, err := domain.ParseID(s)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Dish ID", err.Error())
			return
		}
		dishIDs = append(dishIDs, id)
	}
	updates := make([]domain.DishUpdate, 0, len(req.DishUpdates))
	for _, u := range req.DishUpdates {
		key, err := domain.ParseKey(u.Stats)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Dish Reference", err.Error())
			return
		}
		upd := domain.DishUpdate{Stats: key}
		if u.Reserved != "" {
			// accepted for wire compatibility, never used
			if res, err := domain.ParseKey(u.Reserved); err == nil {
				upd.Reserved = res
			}
		}
		updates = append(updates, upd)
	}

	res, err := h.B.BookTable(r.Context(), user, restaurant, dishIDs, updates)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"visit_count": res.VisitCount,
		"dish_counts": res.DishCounts,
	})
}

func (h *Handlers) submitReview(w http.ResponseWriter, r *http.Request) {
	user, ok := callerID(w, r)
	if !ok {
		return
	}
	var req struct {
		Restaurant      string `json:"restaurant"`
		Rating          uint8  `json:"rating"`
		ConfidenceLevel uint8  `json:"confidence_level"`
		Review          string `json:"review"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	restaurant, err := domain.ParseID(req.Restaurant)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Restaurant", err.Error())
		return
	}
	rec, err := h.B.SubmitReview(r.Context(), user, restaurant, req.Rating, req.ConfidenceLevel, req.Review)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"user":             rec.User.String(),
		"restaurant":       rec.Restaurant.String(),
		"rating":           rec.Rating,
		"confidence_level": rec.ConfidenceLevel,
		"review":           rec.Text(),
	})
}

// ---- reads ----

func pathID(w http.ResponseWriter, r *http.Request, name string) (domain.ID, bool) {
	id, err := domain.ParseID(chi.URLParam(r, name))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", name+" must be 32 bytes of hex")
		return domain.ID{}, false
	}
	return id, true
}

func (h *Handlers) getUserStats(w http.ResponseWriter, r *http.Request) {
	user, ok := pathID(w, r, "user")
	if !ok {
		return
	}
	restaurant, ok := pathID(w, r, "restaurant")
	if !ok {
		return
	}
	view, err := h.Q.GetUserStats(r.Context(), user, restaurant)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeWithETag(w, r, view)
}

func (h *Handlers) getDishStats(w http.ResponseWriter, r *http.Request) {
	user, ok := pathID(w, r, "user")
	if !ok {
		return
	}
	dish, ok := pathID(w, r, "dish")
	if !ok {
		return
	}
	view, err := h.Q.GetDishStats(r.Context(), user, dish)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeWithETag(w, r, view)
}

func (h *Handlers) getReview(w http.ResponseWriter, r *http.Request) {
	user, ok := pathID(w, r, "user")
	if !ok {
		return
	}
	restaurant, ok := pathID(w, r, "restaurant")
	if !ok {
		return
	}
	view, err := h.Q.GetReview(r.Context(), user, restaurant)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeWithETag(w, r, view)
}
