package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func listCalendarEvents(cal CalendarService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		events, err := cal.ListEvents(ctx, uid)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, events)
	}
}

func createCalendarEvent(cal CalendarService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var draft calendarEventDraft
		if err := decodeBody(c, &draft); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if fields := validateDraft(draft); fields != nil {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "validation failed", Fields: fields})
		}
		created, err := cal.CreateEvent(ctx, uid, draft.toDomain())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, created)
	}
}

func updateCalendarEvent(cal CalendarService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var draft calendarEventDraft
		if err := decodeBody(c, &draft); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if fields := validateDraft(draft); fields != nil {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "validation failed", Fields: fields})
		}
		event := draft.toDomain()
		event.ID = c.Param("id")
		updated, err := cal.UpdateEvent(ctx, uid, event)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, updated)
	}
}

func deleteCalendarEvent(cal CalendarService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		if err := cal.DeleteEvent(ctx, uid, c.Param("id")); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
