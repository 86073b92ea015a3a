package transport

import (
	"errors"
	"net/http"

	"tinhme/internal/middleware"

	"github.com/google/uuid"
)

var errNoIdentity = errors.New("no authenticated identity in request context")

// authenticatedUserID resolves the session identity placed in the context by
// the auth middleware.
func authenticatedUserID(r *http.Request) (uuid.UUID, error) {
	idStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		return uuid.Nil, errNoIdentity
	}
	return uuid.Parse(idStr)
}
