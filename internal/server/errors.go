package server

import (
	"net/http"

	apperrors "github.com/picoyplaca/picoyplaca/internal/errors"
)

// HandleError is the single error responder for the router and handlers.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	apperrors.RespondWithError(w, r, err)
}
