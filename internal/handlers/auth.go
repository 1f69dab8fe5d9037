package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/diewo77/go-rentals/auth"
	"github.com/diewo77/go-rentals/httpx"
	"github.com/diewo77/go-rentals/internal/logger"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/services"
	"github.com/diewo77/go-rentals/validation"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type signupInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"max=255"`
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in signupInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		badJSON(w, err)
		return
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if v := validation.Struct(in); !v.Empty() {
		writeError(w, r, &services.ValidationError{Violations: v})
		return
	}

	var count int64
	if err := h.db.WithContext(r.Context()).Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		writeError(w, r, err)
		return
	}
	if count > 0 {
		writeError(w, r, services.ErrConflict)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user := models.User{Email: in.Email, Password: string(hashedPassword), Name: in.Name}
	if err := h.db.WithContext(r.Context()).Create(&user).Error; err != nil {
		writeError(w, r, &services.SaveError{Op: "create user", Cause: err})
		return
	}

	logger.FromContext(r.Context()).Info("user signed up", zap.Uint("user_id", user.ID))
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		badJSON(w, err)
		return
	}

	var user models.User
	err := h.db.WithContext(r.Context()).Where("email = ?", strings.ToLower(strings.TrimSpace(in.Email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, r, services.ErrBadLogin)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		writeError(w, r, services.ErrBadLogin)
		return
	}

	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var user models.User
	if err := h.db.WithContext(r.Context()).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = services.ErrNotFound
		}
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}
