package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/accounts/internal/common"
)

const maxBodySize = 1 << 20

type errorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// readJSON decodes the body into v, rejecting unknown fields.
func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// queryInt returns the integer query parameter key, or defaultVal when it is
// missing or malformed.
func queryInt(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// errorStatus maps service errors to a status code and a message safe to
// send to clients.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrNoRowsAffected):
		return http.StatusNotFound, "account not found"
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict, "login already exists"
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "invalid login or password"
	case errors.Is(err, common.ErrorAccountDisabled):
		return http.StatusForbidden, "account is disabled"
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "token expired"
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid token"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
