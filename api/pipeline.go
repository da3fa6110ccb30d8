package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"crm-api/domain"
	"crm-api/resolve"
	"crm-api/views"
)

func listPipeline(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		items, err := repos.Pipeline.List(ctx, uid)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, items)
	}
}

func createPipelineItem(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var draft pipelineDraft
		if err := decodeBody(c, &draft); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if fields := validateDraft(draft); fields != nil {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "validation failed", Fields: fields})
		}
		created, err := repos.Pipeline.Create(ctx, uid, draft.toDomain())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, created)
	}
}

type boardColumn struct {
	Stage domain.Stage           `json:"stage"`
	Count int                    `json:"count"`
	Cards []resolve.PipelineCard `json:"cards"`
}

// pipelineBoard buckets resolved cards per funnel stage in display order.
func pipelineBoard(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		items, err := repos.Pipeline.List(ctx, uid)
		if err != nil {
			return writeError(c, err)
		}
		contacts, err := repos.Contacts.List(ctx, uid)
		if err != nil {
			return writeError(c, err)
		}
		cards := resolve.PipelineCards(items, contacts)
		stats := views.PipelineStats(items)

		columns := make([]boardColumn, 0, len(domain.Stages()))
		for _, stage := range domain.Stages() {
			column := boardColumn{Stage: stage, Count: stats[stage], Cards: []resolve.PipelineCard{}}
			for _, card := range cards {
				if card.Stage == stage {
					column.Cards = append(column.Cards, card)
				}
			}
			columns = append(columns, column)
		}
		return c.JSON(http.StatusOK, columns)
	}
}

func updatePipelineItem(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var draft pipelineDraft
		if err := decodeBody(c, &draft); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if fields := validateDraft(draft); fields != nil {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "validation failed", Fields: fields})
		}
		existing, err := repos.Pipeline.Get(ctx, uid, c.Param("id"))
		if err != nil {
			return writeError(c, err)
		}
		updated := draft.toDomain()
		updated.ID = existing.ID
		updated.CreatedAt = existing.CreatedAt
		if updated.Stage == "" {
			updated.Stage = existing.Stage
		}
		saved, err := repos.Pipeline.Update(ctx, uid, updated)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, saved)
	}
}

func deletePipelineItem(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		if err := repos.Pipeline.Remove(ctx, uid, c.Param("id")); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// movePipelineStage accepts any origin/destination stage pair.
func movePipelineStage(repos Repos, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := requestUserID(c, auth)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var req moveStageRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if fields := validateDraft(req); fields != nil {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "validation failed", Fields: fields})
		}
		moved, err := repos.Pipeline.MoveStage(ctx, uid, c.Param("id"), req.Stage)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, moved)
	}
}
