package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"crm-api/domain"
	"crm-api/resolve"
)

func listContacts(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		contacts, err := repos.Contacts.List(ctx, uid)
		if err != nil {
			return writeError(c, err)
		}
		items, err := repos.Pipeline.List(ctx, uid)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, resolve.ProjectStages(contacts, items))
	}
}

func createContact(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var draft contactDraft
		if err := decodeBody(c, &draft); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if fields := validateDraft(draft); fields != nil {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "validation failed", Fields: fields})
		}
		created, err := repos.Contacts.Create(ctx, uid, draft.toDomain())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, created)
	}
}

func getContact(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		contact, err := repos.Contacts.Get(ctx, uid, c.Param("id"))
		if err != nil {
			return writeError(c, err)
		}
		items, err := repos.Pipeline.List(ctx, uid)
		if err != nil {
			return writeError(c, err)
		}
		projected := resolve.ProjectStages([]domain.Contact{contact}, items)
		return c.JSON(http.StatusOK, projected[0])
	}
}

func updateContact(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var draft contactDraft
		if err := decodeBody(c, &draft); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if fields := validateDraft(draft); fields != nil {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "validation failed", Fields: fields})
		}
		existing, err := repos.Contacts.Get(ctx, uid, c.Param("id"))
		if err != nil {
			return writeError(c, err)
		}
		updated := draft.toDomain()
		updated.ID = existing.ID
		updated.Stage = existing.Stage
		updated.LastContact = existing.LastContact
		updated.RelatedTaskIDs = existing.RelatedTaskIDs
		updated.RelatedTransactionIDs = existing.RelatedTransactionIDs
		updated.RelatedNoteIDs = existing.RelatedNoteIDs
		saved, err := repos.Contacts.Update(ctx, uid, updated)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, saved)
	}
}

// deleteContact removes only the contact. Tasks, transactions, notes and
// pipeline items keep their references; those become dangling and resolve to
// sentinels at read time.
func deleteContact(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		if err := repos.Contacts.Remove(ctx, uid, c.Param("id")); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

type syncResponse struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
}

// syncContacts pulls people from the external provider and upserts
// identity, name, email and phone; remote records are matched by email.
func syncContacts(repos Repos, source ContactSource, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		if source == nil {
			return c.JSON(http.StatusServiceUnavailable, errorBody{Error: "contact sync is not configured"})
		}

		people, err := source.FetchPeople(ctx)
		if err != nil {
			logger.WithField("user", uid).WithError(err).Warn("contact sync fetch failed")
			return c.JSON(http.StatusBadGateway, errorBody{Error: "contact sync provider unavailable"})
		}

		existing, err := repos.Contacts.List(ctx, uid)
		if err != nil {
			return writeError(c, err)
		}
		byEmail := make(map[string]domain.Contact, len(existing))
		for _, contact := range existing {
			if contact.Email != "" {
				byEmail[contact.Email] = contact
			}
		}

		var resp syncResponse
		for _, p := range people {
			if p.Email == "" {
				continue
			}
			if contact, ok := byEmail[p.Email]; ok {
				if p.Name != "" {
					contact.Name = p.Name
				}
				if p.Phone != "" {
					contact.Phone = p.Phone
				}
				if _, err := repos.Contacts.Update(ctx, uid, contact); err != nil {
					return writeError(c, err)
				}
				resp.Updated++
				continue
			}
			draft := domain.Contact{
				Name:   p.Name,
				Email:  p.Email,
				Phone:  p.Phone,
				Type:   domain.ContactOther,
				Source: "sync",
			}
			if _, err := repos.Contacts.Create(ctx, uid, draft); err != nil {
				return writeError(c, err)
			}
			resp.Imported++
		}
		return c.JSON(http.StatusOK, resp)
	}
}
