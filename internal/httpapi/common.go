package httpapi

import (
	"net/http"
	"strconv"

	"github.com/ragvault/ragvault/internal/apperr"
)

const timeFormat = "2006-01-02T15:04:05Z07:00"

func validationError(format string, args ...any) error {
	return apperr.Validation(format, args...)
}

// optionalVaultID reads the "vault_id" query parameter. An absent or
// empty value is nil, which the list handlers pass through as "no vault
// filter": documents and agents of every vault are listed.
func optionalVaultID(r *http.Request) *string {
	v := r.URL.Query().Get("vault_id")
	if v == "" {
		return nil
	}
	return &v
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func queryFloat(r *http.Request, key string, def float32) float32 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return def
	}
	return float32(n)
}
