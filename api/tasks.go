package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"crm-api/domain"
	"crm-api/resolve"
)

// taskView is a task joined with its contact's display name.
type taskView struct {
	domain.Task
	ContactName string `json:"contactName"`
}

func listTasks(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		tasks, err := repos.Tasks.List(ctx, uid)
		if err != nil {
			return writeError(c, err)
		}
		contacts, err := repos.Contacts.List(ctx, uid)
		if err != nil {
			return writeError(c, err)
		}
		out := make([]taskView, 0, len(tasks))
		for _, t := range tasks {
			out = append(out, taskView{Task: t, ContactName: resolve.ContactName(contacts, t.ContactID)})
		}
		return c.JSON(http.StatusOK, out)
	}
}

func createTask(repos Repos, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var draft taskDraft
		if err := decodeBody(c, &draft); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if fields := validateDraft(draft); fields != nil {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "validation failed", Fields: fields})
		}
		created, err := repos.Tasks.Create(ctx, uid, draft.toDomain())
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

func getTask(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		task, err := repos.Tasks.Get(ctx, uid, c.Param("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func updateTask(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var draft taskDraft
		if err := decodeBody(c, &draft); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if fields := validateDraft(draft); fields != nil {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "validation failed", Fields: fields})
		}
		existing, err := repos.Tasks.Get(ctx, uid, c.Param("id"))
		if err != nil {
			return writeError(c, err)
		}
		updated := draft.toDomain()
		updated.ID = existing.ID
		updated.CreatedAt = existing.CreatedAt
		updated.CompletedAt = completionStamp(existing, updated)
		saved, err := repos.Tasks.Update(ctx, uid, updated)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, saved)
	}
}

// completionStamp keeps CompletedAt in step with the done status: stamped on
// entering done, kept while staying done, cleared on leaving it.
func completionStamp(existing, updated domain.Task) *time.Time {
	if updated.Status != domain.TaskDone {
		return nil
	}
	if existing.CompletedAt != nil {
		return existing.CompletedAt
	}
	now := time.Now()
	return &now
}

func deleteTask(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		if err := repos.Tasks.Remove(ctx, uid, c.Param("id")); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
