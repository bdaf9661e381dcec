package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"adx/internal/config"
	"adx/internal/models"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	username     string
	passwordHash []byte
	jwtSecret    string
	validator    *validator.Validate
}

func NewAuthHandler(cfg config.AuthConfig) (*AuthHandler, error) {
	// The configured password is hashed once at startup so the handler
	// never holds it in plain text.
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &AuthHandler{
		username:     cfg.Username,
		passwordHash: hash,
		jwtSecret:    cfg.JWTSecret,
		validator:    validator.New(),
	}, nil
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(req.Password))
	if !userOK || passErr != nil {
		writeJSONError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
		return
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": h.username,
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
	})
	signed, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "token_error", "Failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Token:     signed,
		ExpiresIn: int64(tokenTTL.Seconds()),
	})
}
