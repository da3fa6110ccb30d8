package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"crm-api/domain"
	"crm-api/resolve"
)

// noteSnapshots loads the collections note resolution joins against.
func noteSnapshots(c echo.Context, repos Repos, uid string) ([]domain.Contact, []domain.Task, []domain.Transaction, error) {
	ctx := c.Request().Context()
	contacts, err := repos.Contacts.List(ctx, uid)
	if err != nil {
		return nil, nil, nil, err
	}
	tasks, err := repos.Tasks.List(ctx, uid)
	if err != nil {
		return nil, nil, nil, err
	}
	transactions, err := repos.Transactions.List(ctx, uid)
	if err != nil {
		return nil, nil, nil, err
	}
	return contacts, tasks, transactions, nil
}

// sanitizeResolved applies the render-boundary content policy to a resolved
// note before it leaves the API.
func sanitizeResolved(n resolve.ResolvedNote) resolve.ResolvedNote {
	n.Content = sanitizeNoteContent(n.Content)
	return n
}

func listNotes(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		notes, err := repos.Notes.List(ctx, uid)
		if err != nil {
			return writeError(c, err)
		}
		contacts, tasks, transactions, err := noteSnapshots(c, repos, uid)
		if err != nil {
			return writeError(c, err)
		}
		resolved := resolve.Notes(notes, contacts, tasks, transactions)
		for i := range resolved {
			resolved[i] = sanitizeResolved(resolved[i])
		}
		return c.JSON(http.StatusOK, resolved)
	}
}

func createNote(repos Repos, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var draft noteDraft
		if err := decodeBody(c, &draft); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if fields := validateDraft(draft); fields != nil {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "validation failed", Fields: fields})
		}
		note := draft.toDomain()
		if note.RelationCount() > 1 {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "a note may reference at most one related record"})
		}
		created, err := repos.Notes.Create(ctx, uid, note)
		if err != nil {
			return writeError(c, err)
		}
		recordActivity(ctx, repos, logger, uid, domain.Activity{
			ContactID:   created.ContactID,
			Type:        domain.ActivityNote,
			Description: "Note created: " + created.Title,
		})
		return c.JSON(http.StatusCreated, created)
	}
}

func getNote(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		note, err := repos.Notes.Get(ctx, uid, c.Param("id"))
		if err != nil {
			return writeError(c, err)
		}
		contacts, tasks, transactions, err := noteSnapshots(c, repos, uid)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, sanitizeResolved(resolve.Note(note, contacts, tasks, transactions)))
	}
}

func updateNote(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var draft noteDraft
		if err := decodeBody(c, &draft); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if fields := validateDraft(draft); fields != nil {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "validation failed", Fields: fields})
		}
		note := draft.toDomain()
		if note.RelationCount() > 1 {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "a note may reference at most one related record"})
		}
		existing, err := repos.Notes.Get(ctx, uid, c.Param("id"))
		if err != nil {
			return writeError(c, err)
		}
		note.ID = existing.ID
		note.CreatedAt = existing.CreatedAt
		saved, err := repos.Notes.Update(ctx, uid, note)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, saved)
	}
}

func deleteNote(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		if err := repos.Notes.Remove(ctx, uid, c.Param("id")); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
