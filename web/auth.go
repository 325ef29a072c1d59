package web

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// adminClaims are the JWT claims carried by the admin session cookie
type adminClaims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	if subtle.ConstantTimeCompare([]byte(body.Password), []byte(s.cfg.AdminPassword)) != 1 {
		log.Warn("Admin login rejected: wrong password")
		errorCode(w, http.StatusUnauthorized, "INVALID_PASSWORD")
		return
	}

	expiresAt := time.Now().Add(s.cfg.AdminSessionTTL)
	claims := adminClaims{
		Admin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.AdminJWTSecret))
	if err != nil {
		errorCode(w, http.StatusInternalServerError, "INTERNAL_ERROR")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.cfg.AdminSessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	log.Info("Admin logged in")
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "expiresAt": expiresAt.UnixMilli()})
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleAdminMe(w http.ResponseWriter, r *http.Request) {
	claims, err := s.adminSession(r)
	if err != nil {
		errorCode(w, http.StatusUnauthorized, "NO_TOKEN")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"expiresAt": claims.ExpiresAt.UnixMilli(),
	})
}

// adminSession validates the admin session cookie and returns its claims
func (s *Server) adminSession(r *http.Request) (*adminClaims, error) {
	c, err := r.Cookie(adminCookieName)
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(c.Value, &adminClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.AdminJWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*adminClaims)
	if !ok || !token.Valid || !claims.Admin {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// requireAdmin gates the admin-only routes on a valid session cookie
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.adminSession(r); err != nil {
			log.WithField("path", r.URL.Path).Debug("Admin route rejected")
			errorCode(w, http.StatusUnauthorized, "ADMIN_REQUIRED")
			return
		}
		next.ServeHTTP(w, r)
	})
}
