package user

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"uslugo/internal/common"
	"uslugo/internal/dbmysql"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the auth and profile routes.
func (h *Handler) Register(public, protected *mux.Router) {
	public.HandleFunc("/auth/register", h.register).Methods("POST")
	public.HandleFunc("/auth/login", h.login).Methods("POST")
	protected.HandleFunc("/profile", h.profile).Methods("GET")
	protected.HandleFunc("/profile", h.updateProfile).Methods("PUT")
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token   string          `json:"token"`
	Profile *dbmysql.Profile `json:"profile"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, token, err := h.service.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if errors.Is(err, ErrEmailTaken) {
		common.RespondError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	common.RespondJSON(w, http.StatusCreated, authResponse{Token: token, Profile: profile})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		common.RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	common.RespondJSON(w, http.StatusOK, authResponse{Token: token, Profile: profile})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserIDFrom(r.Context())

	profile, err := h.service.GetProfile(r.Context(), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		common.RespondError(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		common.RespondError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	common.RespondJSON(w, http.StatusOK, profile)
}

type updateProfileRequest struct {
	DisplayName string `json:"display_name"`
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserIDFrom(r.Context())

	var req updateProfileRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.UpdateProfile(r.Context(), userID, req.DisplayName); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	common.RespondJSON(w, http.StatusNoContent, nil)
}
