package utils

import (
	"net/http"
	"strings"

	"marketplace-backend/internal/domain"
	"marketplace-backend/pkg/apperr"

	"github.com/goccy/go-json"
)

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// WriteSuccess wraps content in the standard envelope.
func WriteSuccess(w http.ResponseWriter, status int, message string, content, meta interface{}) {
	WriteJSON(w, status, domain.Response{Success: true, Message: message, Content: content, Meta: meta})
}

// WriteError renders err through apperr; internal causes never reach the client.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, apperr.HTTPStatus(err), domain.Response{
		Success: false,
		Message: apperr.PublicMessage(err),
		Fields:  apperr.FieldsOf(err),
	})
}

// DecodeJSON reads a request body into v. Unknown fields are rejected.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.InvalidErr("Dữ liệu gửi lên không hợp lệ", nil)
	}
	return nil
}

// ETag formats an entity version as a strong validator.
func ETag(version int64) string {
	return `"` + Itoa64(version) + `"`
}

// ParseIfMatch returns the version from an If-Match header, or nil when absent or "*".
func ParseIfMatch(r *http.Request) (*int64, error) {
	h := strings.TrimSpace(r.Header.Get("If-Match"))
	if h == "" || h == "*" {
		return nil, nil
	}
	h = strings.TrimPrefix(h, "W/")
	v, ok := ParseInt64(strings.Trim(h, `"`))
	if !ok {
		return nil, apperr.FieldErr("If-Match", "Phiên bản dữ liệu không hợp lệ")
	}
	return &v, nil
}
