package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-pkgz/auth/v2/token"
)

// errorBody is the JSON error envelope every API handler uses.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeErrorDetails(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorBody{Error: msg, Details: details})
}

// currentUser extracts the authenticated token user the auth middleware put on
// the request. Handlers behind the middleware should always find one; a miss
// means the route was wired without auth and is treated as unauthorized.
func currentUser(w http.ResponseWriter, r *http.Request) (token.User, bool) {
	user, err := token.GetUserInfo(r)
	if err != nil || user.ID == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return token.User{}, false
	}
	return user, true
}
