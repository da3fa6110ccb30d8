package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"crm-api/repo"
	"crm-api/storage"
)

// writeError maps repository and storage failures onto HTTP responses.
// Storage failures are user-visible but non-fatal: the attempted operation is
// terminal and requires a new user action.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, storage.ErrRevisionConflict):
		return c.JSON(http.StatusConflict, errorBody{Error: "the data changed underneath this request; reload and try again"})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, errorBody{Error: "could not save - storage unavailable"})
	}
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
