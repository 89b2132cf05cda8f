package web

import (
	"crypto/subtle"
	"net/http"

	"github.com/JonMunkholm/contactbook/internal/logging"
)

// requireAPIKey guards the API when REQUIRE_API_KEY is set. The key is read
// from X-API-Key; a missing key is 401 and an unknown key is 403.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	sec := s.cfg.Security
	if !sec.RequireAPIKey {
		return next
	}
	keys := make([][]byte, len(sec.APIKeys))
	for i, k := range sec.APIKeys {
		keys[i] = []byte(k)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		switch {
		case key == "":
			rejectAuth(w, r, http.StatusUnauthorized, "AUTH001", "An API key is required",
				"Send the key in the X-API-Key header")
		case !knownKey([]byte(key), keys):
			rejectAuth(w, r, http.StatusForbidden, "AUTH002", "The API key is not recognised",
				"Check the key with the server operator")
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func rejectAuth(w http.ResponseWriter, r *http.Request, status int, code, msg, action string) {
	logging.FromContext(r.Context()).Warn("api key rejected",
		"code", code,
		"path", r.URL.Path,
		"method", r.Method,
	)
	writeJSON(w, status, ErrorResponse{
		Error:   msg,
		Message: msg,
		Action:  action,
		Code:    code,
	})
}

// knownKey compares key against every configured key so the time taken does
// not depend on which one matched.
func knownKey(key []byte, keys [][]byte) bool {
	match := 0
	for _, k := range keys {
		match |= subtle.ConstantTimeCompare(key, k)
	}
	return match == 1
}
