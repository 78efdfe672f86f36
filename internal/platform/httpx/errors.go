package httpx

import (
	"errors"
	"net/http"

	"github.com/stocklane/stocklane/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Persistence failures deliberately carry no detail: the unit of work was
// rolled back and callers only learn that it failed.
func RespondError(w http.ResponseWriter, err error) {
	if ve, ok := shared.AsValidation(err); ok {
		JSON(w, http.StatusBadRequest, ProblemDetail{
			Title:  "Validation Failed",
			Status: http.StatusBadRequest,
			Detail: ve.Error(),
			Fields: ve.Fields,
		})
		return
	}
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrReportUnavailable):
		Problem(w, http.StatusServiceUnavailable, "Report Unavailable", err.Error())
	case errors.Is(err, shared.ErrPersistence):
		Problem(w, http.StatusInternalServerError, "Persistence Failure", "")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
