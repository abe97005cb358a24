package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/ragvault/ragvault/internal/apperr"
)

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError translates err into the uniform {error, detail, code} body
// of §7 and the matching HTTP status.
func writeError(w http.ResponseWriter, err error) {
	status := apperr.StatusCode(err)
	code := apperr.Code(err)
	writeJSON(w, status, errorBody{
		Error:  http.StatusText(status),
		Detail: err.Error(),
		Code:   code,
	})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("invalid request body: %v", err)
	}
	return nil
}
