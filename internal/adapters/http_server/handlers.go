package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"emoji_map/internal/app"
	"emoji_map/internal/domain"
	"emoji_map/internal/geo"
)

type Handlers struct {
	Q        *app.QueryService
	Cmd      *app.ReviewService
	Img      *app.ImageService
	Geo      *geo.Index
	validate *validator.Validate
}

func NewHandlers(q *app.QueryService, cmd *app.ReviewService, img *app.ImageService, gx *geo.Index) *Handlers {
	v := validator.New()
	_ = v.RegisterValidation("emojiglyph", func(fl validator.FieldLevel) bool {
		return domain.IsPaletteEmoji(fl.Field().String())
	})
	return &Handlers{Q: q, Cmd: cmd, Img: img, Geo: gx, validate: v}
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers, auth *Authenticator, limit func(http.Handler) http.Handler) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Get("/reviews", h.listReviews)
	s.mux.Get("/places/search", h.searchPlaces)

	s.mux.Group(func(r chi.Router) {
		r.Use(auth.Required)
		r.With(limit).Post("/reviews", h.createReview)
		r.Delete("/reviews/{id}", h.deleteReview)
		r.With(limit).Post("/upload", h.uploadImage)
		r.With(limit).Post("/user/profile-image", h.uploadProfileImage)
		r.Put("/user/profile", h.updateProfile)
		r.Delete("/user/delete", h.deleteAccount)
		r.Get("/feedback", h.listFeedback)
		r.Post("/feedback", h.createFeedback)
	})
}

// ---- response helpers ----

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeError maps the domain error taxonomy onto problem+json responses.
// Anything unrecognized is an upstream failure; nothing propagates unhandled.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeProblem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeProblem(w, http.StatusUnauthorized, "Authentication Required", "")
	case errors.Is(err, domain.ErrForbidden):
		writeProblem(w, http.StatusForbidden, "Forbidden", "only the author may modify this resource")
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func (h *Handlers) decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.ErrValidation
	}
	if err := h.validate.Struct(dst); err != nil {
		return domain.ErrValidation
	}
	return nil
}

// ---- reviews ----

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	views, err := h.Q.ListPlaces(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if views == nil {
		views = []domain.PlaceView{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": views})
}

type createReviewRequest struct {
	Title       string   `json:"title" validate:"required,max=50"`
	Description string   `json:"description" validate:"required,max=500"`
	Rating      int      `json:"rating" validate:"required,min=1,max=5"`
	Emoji       string   `json:"emoji" validate:"required,emojiglyph"`
	PlaceName   string   `json:"placeName" validate:"required,max=100"`
	Address     string   `json:"address" validate:"required,max=255"`
	Latitude    *float64 `json:"latitude" validate:"required"`
	Longitude   *float64 `json:"longitude" validate:"required"`
	Category    *string  `json:"category"`
	Images      []string `json:"images" validate:"omitempty,max=3,dive,url"`
}

func (h *Handlers) createReview(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())

	var req createReviewRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Validation Failed", "missing or malformed review fields")
		return
	}

	created, err := h.Cmd.CreateReview(r.Context(), user.ID, domain.NewReview{
		Title:       req.Title,
		Description: req.Description,
		Rating:      req.Rating,
		Emoji:       req.Emoji,
		PlaceName:   req.PlaceName,
		Address:     req.Address,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		Category:    req.Category,
		Images:      req.Images,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"review": created})
}

func (h *Handlers) deleteReview(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Validation Failed", "id must be a number")
		return
	}
	if err := h.Cmd.DeleteReview(r.Context(), id, user.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "review deleted"})
}

// ---- place search ----

func (h *Handlers) searchPlaces(w http.ResponseWriter, r *http.Request) {
	views, err := h.Q.ListPlaces(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	// Wholesale rebuild from the (cached) aggregate; mirrors the recompute-
	// from-fresh-data policy everywhere else.
	h.Geo.Rebuild(views)

	q := r.URL.Query()
	parse := func(key string) (float64, bool) {
		f, err := strconv.ParseFloat(q.Get(key), 64)
		return f, err == nil
	}

	var found []domain.PlaceView
	if lat, ok := parse("lat"); ok {
		lng, okLng := parse("lng")
		radius, okR := parse("radius_km")
		if !okLng || !okR || radius <= 0 {
			writeProblem(w, http.StatusBadRequest, "Validation Failed", "lat, lng and radius_km are required for radius search")
			return
		}
		found, err = h.Geo.SearchRadius(lat, lng, radius)
	} else {
		minLat, ok1 := parse("min_lat")
		minLng, ok2 := parse("min_lng")
		maxLat, ok3 := parse("max_lat")
		maxLng, ok4 := parse("max_lng")
		if !ok1 || !ok2 || !ok3 || !ok4 {
			writeProblem(w, http.StatusBadRequest, "Validation Failed", "provide lat/lng/radius_km or a min/max bounding box")
			return
		}
		found, err = h.Geo.SearchBox(minLat, minLng, maxLat, maxLng)
	}
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if found == nil {
		found = []domain.PlaceView{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"places": found})
}

// ---- uploads ----

func (h *Handlers) readUpload(w http.ResponseWriter, r *http.Request, field string) (app.Upload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(app.MaxUploadBytes); err != nil {
		writeProblem(w, http.StatusBadRequest, "Validation Failed", "file exceeds 5MB limit")
		return app.Upload{}, false
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Validation Failed", "image file is required")
		return app.Upload{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Validation Failed", "unreadable upload")
		return app.Upload{}, false
	}
	ct := header.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return app.Upload{Data: data, ContentType: ct}, true
}

func (h *Handlers) uploadImage(w http.ResponseWriter, r *http.Request) {
	up, ok := h.readUpload(w, r, "image")
	if !ok {
		return
	}
	res, err := h.Img.StoreReviewImage(r.Context(), up)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "imageUrl": res.ImageURL, "fileName": res.FileName})
}

func (h *Handlers) uploadProfileImage(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())

	up, ok := h.readUpload(w, r, "profileImage")
	if !ok {
		return
	}
	res, err := h.Img.StoreProfileImage(r.Context(), user.ID, up)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "imageUrl": res.ImageURL, "fileName": res.FileName})
}

// ---- profile & account ----

type updateProfileRequest struct {
	Name  string  `json:"name" validate:"required,max=100"`
	Image *string `json:"image" validate:"omitempty,url"`
}

func (h *Handlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())

	var req updateProfileRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Validation Failed", "name is required")
		return
	}
	updated, err := h.Cmd.UpdateProfile(r.Context(), user.ID, req.Name, req.Image)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": updated.Summary()})
}

func (h *Handlers) deleteAccount(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())

	if err := h.Cmd.DeleteAccount(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "account deleted"})
}

// ---- feedback ----

type createFeedbackRequest struct {
	Subject string `json:"subject" validate:"required,oneof=bug feature ui performance content other"`
	Content string `json:"content" validate:"required,max=2000"`
}

func (h *Handlers) createFeedback(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())

	var req createFeedbackRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Validation Failed", "subject and content are required")
		return
	}
	fb, err := h.Cmd.SubmitFeedback(r.Context(), user.ID, req.Subject, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "feedback": fb})
}

func (h *Handlers) listFeedback(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())

	items, err := h.Cmd.ListFeedback(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []domain.Feedback{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"feedbacks": items})
}
