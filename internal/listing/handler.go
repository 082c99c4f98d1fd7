package listing

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"uslugo/internal/common"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the listing routes. Browsing is public; posting and
// status changes need a session.
func (h *Handler) Register(public, protected *mux.Router) {
	public.HandleFunc("/categories", h.categories).Methods("GET")
	public.HandleFunc("/posts", h.list).Methods("GET")
	public.HandleFunc("/posts/{id}", h.get).Methods("GET")
	protected.HandleFunc("/posts", h.create).Methods("POST")
	protected.HandleFunc("/posts/{id}/status", h.setStatus).Methods("PATCH")
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}
	common.RespondJSON(w, http.StatusOK, categories)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{
		Type:  q.Get("type"),
		City:  q.Get("city"),
		Query: q.Get("q"),
	}
	if v := q.Get("category_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			f.CategoryID = uint(id)
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Limit = n
		}
	}

	posts, err := h.service.ListPosts(r.Context(), f)
	if err != nil {
		common.RespondError(w, http.StatusInternalServerError, "failed to load listings")
		return
	}
	common.RespondJSON(w, http.StatusOK, posts)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	// Viewer id is optional here: browsing is public, but an owner may
	// fetch their own paused listing.
	viewerID := common.OptionalUserID(r)

	post, err := h.service.GetPost(r.Context(), mux.Vars(r)["id"], viewerID)
	switch {
	case errors.Is(err, ErrNotAvailable):
		common.RespondError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, gorm.ErrRecordNotFound):
		common.RespondError(w, http.StatusNotFound, "listing not found")
		return
	case err != nil:
		common.RespondError(w, http.StatusInternalServerError, "failed to load listing")
		return
	}
	common.RespondJSON(w, http.StatusOK, post)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserIDFrom(r.Context())

	var in CreateInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := h.service.CreatePost(r.Context(), userID, in)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	common.RespondJSON(w, http.StatusCreated, post)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserIDFrom(r.Context())

	var req statusRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.service.SetStatus(r.Context(), mux.Vars(r)["id"], userID, req.Status)
	switch {
	case errors.Is(err, ErrNotOwner):
		common.RespondError(w, http.StatusForbidden, err.Error())
		return
	case errors.Is(err, gorm.ErrRecordNotFound):
		common.RespondError(w, http.StatusNotFound, "listing not found")
		return
	case err != nil:
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	common.RespondJSON(w, http.StatusNoContent, nil)
}
