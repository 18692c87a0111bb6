package handler

import (
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/maxschool-bot/internal/config"
	"github.com/maxschool-bot/internal/domain"
	jwtinfra "github.com/maxschool-bot/internal/infrastructure/jwt"
)

// LoginHandler issues admin API tokens. There is a single administrator
// account configured through the environment; the password is checked against
// its bcrypt hash.
type LoginHandler struct {
	cfg *config.Config
	jwt *jwtinfra.Provider
}

func NewLoginHandler(cfg *config.Config, jwt *jwtinfra.Provider) *LoginHandler {
	return &LoginHandler{cfg: cfg, jwt: jwt}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.jwt == nil || h.cfg.AdminPasswordHash == "" {
		writeError(w, http.StatusServiceUnavailable, "admin api is not configured")
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username != h.cfg.AdminUsername {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.cfg.AdminPasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	bearer, err := h.jwt.Sign(req.Username, domain.RoleAdmin)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Bearer: bearer})
}
