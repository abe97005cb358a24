package entities

import "github.com/ragvault/ragvault/internal/apperr"

func notFoundVault(id string) error {
	return apperr.NotFound("vault %q not found", id)
}
