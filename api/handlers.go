package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"crm-api/domain"
	"crm-api/repo"
	"crm-api/views"
)

// Repos bundles the entity repositories the handlers operate on.
type Repos struct {
	Contacts      *repo.Collection[domain.Contact]
	Tasks         *repo.Collection[domain.Task]
	TaskTemplates *repo.Collection[domain.TaskTemplate]
	Transactions  *repo.Collection[domain.Transaction]
	Notes         *repo.Collection[domain.Note]
	Pipeline      *repo.PipelineRepo
	Activities    *repo.ActivityRepo
}

// Register wires up all API routes on the provided Echo instance. source may
// be nil when no contact-sync provider is configured.
func Register(e *echo.Echo, repos Repos, cal CalendarService, source ContactSource, auth Authenticator, logger *log.Logger) {
	e.GET("/api/contacts", listContacts(repos, auth))
	e.POST("/api/contacts", createContact(repos, auth))
	e.GET("/api/contacts/:id", getContact(repos, auth))
	e.PUT("/api/contacts/:id", updateContact(repos, auth))
	e.DELETE("/api/contacts/:id", deleteContact(repos, auth))
	e.POST("/api/contacts/sync", syncContacts(repos, source, auth, logger))

	e.GET("/api/tasks", listTasks(repos, auth))
	e.POST("/api/tasks", createTask(repos, auth, logger))
	e.GET("/api/tasks/:id", getTask(repos, auth))
	e.PUT("/api/tasks/:id", updateTask(repos, auth))
	e.DELETE("/api/tasks/:id", deleteTask(repos, auth))

	e.GET("/api/task-templates", listTaskTemplates(repos, auth))
	e.POST("/api/task-templates", createTaskTemplate(repos, auth))
	e.PUT("/api/task-templates/:id", updateTaskTemplate(repos, auth))
	e.DELETE("/api/task-templates/:id", deleteTaskTemplate(repos, auth))
	e.POST("/api/task-templates/:id/tasks", instantiateTaskTemplate(repos, auth, logger))

	e.GET("/api/transactions", listTransactions(repos, auth))
	e.POST("/api/transactions", createTransaction(repos, auth, logger))
	e.GET("/api/transactions/:id", getTransaction(repos, auth))
	e.PUT("/api/transactions/:id", updateTransaction(repos, auth))
	e.DELETE("/api/transactions/:id", deleteTransaction(repos, auth))

	e.GET("/api/notes", listNotes(repos, auth))
	e.POST("/api/notes", createNote(repos, auth, logger))
	e.GET("/api/notes/:id", getNote(repos, auth))
	e.PUT("/api/notes/:id", updateNote(repos, auth))
	e.DELETE("/api/notes/:id", deleteNote(repos, auth))

	e.GET("/api/pipeline", listPipeline(repos, auth))
	e.POST("/api/pipeline", createPipelineItem(repos, auth))
	e.GET("/api/pipeline/board", pipelineBoard(repos, auth))
	e.PUT("/api/pipeline/:id", updatePipelineItem(repos, auth))
	e.DELETE("/api/pipeline/:id", deletePipelineItem(repos, auth))
	e.POST("/api/pipeline/:id/stage", movePipelineStage(repos, auth))

	e.GET("/api/activities", listActivities(repos, auth))
	e.POST("/api/activities", createActivity(repos, auth))

	e.GET("/api/calendar/events", listCalendarEvents(cal, auth))
	e.POST("/api/calendar/events", createCalendarEvent(cal, auth))
	e.PUT("/api/calendar/events/:id", updateCalendarEvent(cal, auth))
	e.DELETE("/api/calendar/events/:id", deleteCalendarEvent(cal, auth))

	e.GET("/api/dashboard", getDashboard(repos, auth, logger))
	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func requestUserID(c echo.Context, auth Authenticator) (string, error) {
	return auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
}

type dashboardResponse struct {
	Summary          views.Summary                  `json:"summary"`
	TaskStatus       map[domain.TaskStatus]int      `json:"taskStatus"`
	TransactionTypes map[domain.TransactionType]int `json:"transactionTypes"`
	PipelineStats    map[domain.Stage]int           `json:"pipelineStats"`
}

func getDashboard(repos Repos, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newDashboardMetrics(ctx, logger)
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		authStart := time.Now()
		uid, authErr := requestUserID(c, auth)
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			err = c.String(http.StatusUnauthorized, authErr.Error())
			return err
		}

		var (
			transactions []domain.Transaction
			contacts     []domain.Contact
			tasks        []domain.Task
			items        []domain.PipelineItem
		)
		fetchStart := time.Now()
		fetchErr := func() error {
			var err error
			if transactions, err = repos.Transactions.List(ctx, uid); err != nil {
				return err
			}
			if contacts, err = repos.Contacts.List(ctx, uid); err != nil {
				return err
			}
			if tasks, err = repos.Tasks.List(ctx, uid); err != nil {
				return err
			}
			items, err = repos.Pipeline.List(ctx, uid)
			return err
		}()
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			metrics.SetErrorStage("storage")
			err = writeError(c, fetchErr)
			return err
		}
		metrics.SetSnapshotSizes(len(transactions), len(contacts), len(tasks), len(items))

		buildStart := time.Now()
		resp := dashboardResponse{
			Summary:          views.Summarize(transactions, contacts, time.Now()),
			TaskStatus:       views.TaskStatusBreakdown(tasks),
			TransactionTypes: views.TransactionTypeBreakdown(transactions),
			PipelineStats:    views.PipelineStats(items),
		}
		metrics.ObserveBuild(time.Since(buildStart))

		err = c.JSON(http.StatusOK, resp)
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}
