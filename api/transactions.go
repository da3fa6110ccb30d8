package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"crm-api/domain"
	"crm-api/resolve"
)

// transactionView is a transaction joined with its contact's display name.
type transactionView struct {
	domain.Transaction
	ContactName string `json:"contactName"`
}

func listTransactions(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		transactions, err := repos.Transactions.List(ctx, uid)
		if err != nil {
			return writeError(c, err)
		}
		contacts, err := repos.Contacts.List(ctx, uid)
		if err != nil {
			return writeError(c, err)
		}
		out := make([]transactionView, 0, len(transactions))
		for _, t := range transactions {
			out = append(out, transactionView{Transaction: t, ContactName: resolve.ContactName(contacts, t.ContactID)})
		}
		return c.JSON(http.StatusOK, out)
	}
}

func createTransaction(repos Repos, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var draft transactionDraft
		if err := decodeBody(c, &draft); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if fields := validateDraft(draft); fields != nil {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "validation failed", Fields: fields})
		}
		created, err := repos.Transactions.Create(ctx, uid, draft.toDomain())
		if err != nil {
			return writeError(c, err)
		}
		recordActivity(ctx, repos, logger, uid, domain.Activity{
			ContactID:   created.ContactID,
			Type:        domain.ActivityTransaction,
			Description: "Transaction created: " + created.PropertyAddress,
		})
		return c.JSON(http.StatusCreated, created)
	}
}

func getTransaction(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		transaction, err := repos.Transactions.Get(ctx, uid, c.Param("id"))
		if err != nil {
			return writeError(c, err)
		}
		contacts, err := repos.Contacts.List(ctx, uid)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, transactionView{
			Transaction: transaction,
			ContactName: resolve.ContactName(contacts, transaction.ContactID),
		})
	}
}

func updateTransaction(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var draft transactionDraft
		if err := decodeBody(c, &draft); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if fields := validateDraft(draft); fields != nil {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "validation failed", Fields: fields})
		}
		existing, err := repos.Transactions.Get(ctx, uid, c.Param("id"))
		if err != nil {
			return writeError(c, err)
		}
		updated := draft.toDomain()
		updated.ID = existing.ID
		updated.RelatedTaskIDs = existing.RelatedTaskIDs
		updated.RelatedNoteIDs = existing.RelatedNoteIDs
		saved, err := repos.Transactions.Update(ctx, uid, updated)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, saved)
	}
}

func deleteTransaction(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		if err := repos.Transactions.Remove(ctx, uid, c.Param("id")); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
