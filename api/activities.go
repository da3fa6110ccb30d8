package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"crm-api/domain"
)

func listActivities(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		if contactID := c.QueryParam("contactId"); contactID != "" {
			activities, err := repos.Activities.ListByContact(ctx, uid, contactID)
			if err != nil {
				return writeError(c, err)
			}
			return c.JSON(http.StatusOK, activities)
		}
		activities, err := repos.Activities.List(ctx, uid)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, activities)
	}
}

func createActivity(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var draft activityDraft
		if err := decodeBody(c, &draft); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if fields := validateDraft(draft); fields != nil {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "validation failed", Fields: fields})
		}
		created, err := repos.Activities.Create(ctx, uid, draft.toDomain())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, created)
	}
}

// recordActivity appends a feed entry for a related-entity write. The write
// is best-effort and never atomic with the triggering one; a failure here
// leaves the primary write intact.
func recordActivity(ctx context.Context, repos Repos, logger *log.Logger, uid string, a domain.Activity) {
	if a.ContactID == "" {
		return
	}
	if _, err := repos.Activities.Create(ctx, uid, a); err != nil {
		logger.WithFields(log.Fields{
			"user":    uid,
			"contact": a.ContactID,
		}).WithError(err).Warn("recording activity failed")
	}
}
