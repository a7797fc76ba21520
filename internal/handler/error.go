package handler

import (
	"errors"
	"net/http"

	"github.com/haatos/casetrack/internal/service"
	"github.com/labstack/echo/v4"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Path    string `json:"path"`
	Field   string `json:"field,omitempty"`
}

// ErrorHandler maps service errors to JSON responses. Validation errors carry
// the offending field name so clients can point at the right input.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	resp := errorResponse{
		Status:  http.StatusInternalServerError,
		Message: "something went wrong",
		Path:    c.Request().URL.Path,
	}

	var (
		validationErr   *service.ValidationError
		conflictErr     *service.ConflictError
		notFoundErr     *service.NotFoundError
		capacityErr     *service.CapacityError
		preconditionErr *service.PreconditionError
		httpErr         *echo.HTTPError
	)
	switch {
	case errors.As(err, &validationErr):
		resp.Status = http.StatusBadRequest
		resp.Message = validationErr.Message
		resp.Field = validationErr.Field
	case errors.As(err, &notFoundErr):
		resp.Status = http.StatusNotFound
		resp.Message = notFoundErr.Message
	case errors.As(err, &conflictErr):
		resp.Status = http.StatusConflict
		resp.Message = conflictErr.Message
	case errors.As(err, &capacityErr):
		resp.Status = http.StatusConflict
		resp.Message = capacityErr.Message
	case errors.As(err, &preconditionErr):
		resp.Status = http.StatusBadRequest
		resp.Message = preconditionErr.Message
	case errors.As(err, &httpErr):
		resp.Status = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			resp.Message = msg
		}
	case isUniqueConstraintError(err):
		resp.Status = http.StatusConflict
		resp.Message = "a conflicting write was committed first"
	}

	if resp.Status >= http.StatusInternalServerError {
		c.Logger().Errorf("handler error %s: %+v\n", resp.Path, err)
	}
	if err := c.JSON(resp.Status, resp); err != nil {
		c.Logger().Errorf("err returning json: %+v\n", err)
	}
}

func isUniqueConstraintError(err error) bool {
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		return sqErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			sqErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
