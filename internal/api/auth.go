package api

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lumastack/pixeld/internal/infrastructure/config"
)

// defaultTokenTTLMinutes is the access-token lifetime when the config
// leaves it unset.
const defaultTokenTTLMinutes = 15

// loginRequest is the request body for POST /api/v1/auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the response body for POST /api/v1/auth/login.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// authorize checks a request against the configured auth mode.
// Credentials come from the Authorization bearer header, or from the
// ?token= query parameter for WebSocket clients that cannot set
// headers.
func (s *Server) authorize(r *http.Request) error {
	switch s.authCfg.Mode {
	case "", config.AuthModeNone:
		return nil

	case config.AuthModeToken:
		token := requestToken(r)
		if token == "" {
			return errors.New("missing credentials")
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.authCfg.Token)) != 1 {
			return errors.New("invalid token")
		}
		return nil

	case config.AuthModeJWT:
		token := requestToken(r)
		if token == "" {
			return errors.New("missing credentials")
		}
		_, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(s.authCfg.JWT.Secret), nil
		})
		if err != nil {
			return errors.New("invalid token")
		}
		return nil

	default:
		return fmt.Errorf("unsupported auth mode %q", s.authCfg.Mode)
	}
}

// requestToken extracts the caller's credential from the Authorization
// header, falling back to the token query parameter.
func requestToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return r.URL.Query().Get("token")
}

// handleLogin authenticates the configured user and returns a signed
// access token. Only available in jwt auth mode; token mode carries no
// login flow, its credential is the token itself.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.authCfg.Mode != config.AuthModeJWT {
		writeNotFound(w, "login requires jwt auth mode")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	if !credentialsMatch(req, s.authCfg.JWT) {
		writeUnauthorized(w, "invalid credentials")
		return
	}

	ttl := s.authCfg.JWT.AccessTokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTLMinutes
	}

	claims := jwt.MapClaims{
		"sub": req.Username,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Duration(ttl) * time.Minute).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.authCfg.JWT.Secret))
	if err != nil {
		writeInternalError(w, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   ttl * 60,
	})
}

// credentialsMatch compares the submitted credentials against the
// configured username and SHA-256 password digest in constant time.
func credentialsMatch(req loginRequest, cfg config.JWTConfig) bool {
	digest := sha256.Sum256([]byte(req.Password))
	submitted := hex.EncodeToString(digest[:])

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(cfg.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(submitted), []byte(strings.ToLower(cfg.PasswordHash))) == 1
	return userOK && passOK
}
