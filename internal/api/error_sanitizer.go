package api

import (
	"errors"
	"net/http"

	"github.com/ignite/coreapp/internal/domain"
	"github.com/ignite/coreapp/internal/pkg/httputil"
	"github.com/ignite/coreapp/internal/repository/postgres"
	"github.com/ignite/coreapp/internal/service/account"
	"github.com/ignite/coreapp/internal/service/sample"
	"github.com/ignite/coreapp/internal/storage"
)

// writeServiceError maps service, storage and database errors onto HTTP
// responses. Anything unrecognised is logged and answered with a generic
// 500 so database details and file paths never reach the client.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		httputil.ValidationFailed(w, ve.Fields)
	case errors.Is(err, account.ErrNotFound), errors.Is(err, sample.ErrNotFound):
		httputil.NotFound(w, err.Error())
	case errors.Is(err, sample.ErrNoUpload):
		httputil.NotFound(w, err.Error())
	case errors.Is(err, storage.ErrNotExist):
		httputil.NotFound(w, "stored upload is missing")
	case errors.Is(err, account.ErrEmailRequired):
		httputil.ValidationFailed(w, map[string]string{"email": err.Error()})
	case errors.Is(err, sample.ErrInvalidFilePath):
		httputil.ValidationFailed(w, map[string]string{"file_path": err.Error()})
	case errors.Is(err, storage.ErrNotImage),
		errors.Is(err, storage.ErrTooLarge),
		errors.Is(err, storage.ErrEmptyUpload):
		httputil.ValidationFailed(w, map[string]string{uploadField: err.Error()})
	case errors.Is(err, sample.ErrNoUploads):
		httputil.Error(w, http.StatusServiceUnavailable, err.Error())
	case postgres.IsUniqueViolation(err):
		field := postgres.ConstraintField(err)
		httputil.Conflict(w, field, uniqueMessage(field))
	case postgres.IsCheckViolation(err):
		field := postgres.ConstraintField(err)
		httputil.ValidationFailed(w, map[string]string{field: "ensure this value is greater than or equal to 0"})
	default:
		httputil.InternalError(w, err)
	}
}

func uniqueMessage(field string) string {
	if field == "" {
		return "a record with these values already exists"
	}
	return "a record with this " + field + " already exists"
}
