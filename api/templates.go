package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"crm-api/domain"
)

func listTaskTemplates(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		templates, err := repos.TaskTemplates.List(ctx, uid)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, templates)
	}
}

func createTaskTemplate(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var draft taskTemplateDraft
		if err := decodeBody(c, &draft); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if fields := validateDraft(draft); fields != nil {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "validation failed", Fields: fields})
		}
		created, err := repos.TaskTemplates.Create(ctx, uid, draft.toDomain())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, created)
	}
}

func updateTaskTemplate(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var draft taskTemplateDraft
		if err := decodeBody(c, &draft); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if fields := validateDraft(draft); fields != nil {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "validation failed", Fields: fields})
		}
		updated := draft.toDomain()
		updated.ID = c.Param("id")
		saved, err := repos.TaskTemplates.Update(ctx, uid, updated)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, saved)
	}
}

func deleteTaskTemplate(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		if err := repos.TaskTemplates.Remove(ctx, uid, c.Param("id")); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// instantiateTaskTemplate creates a task from the template, due DueInDays
// days from today, optionally linked to a contact and transaction.
func instantiateTaskTemplate(repos Repos, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		// The body is optional; instantiating without links is fine.
		var req instantiateTemplateRequest
		if err := decodeBody(c, &req); err != nil && !errors.Is(err, io.EOF) {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		template, err := repos.TaskTemplates.Get(ctx, uid, c.Param("id"))
		if err != nil {
			return writeError(c, err)
		}
		draft := template.Instantiate(time.Now())
		draft.ContactID = req.ContactID
		draft.TransactionID = req.TransactionID
		created, err := repos.Tasks.Create(ctx, uid, draft)
		if err != nil {
			return writeError(c, err)
		}
		recordActivity(ctx, repos, logger, uid, domain.Activity{
			ContactID:   created.ContactID,
			Type:        domain.ActivityTask,
			Description: "Task created: " + created.Title,
		})
		return c.JSON(http.StatusCreated, created)
	}
}
