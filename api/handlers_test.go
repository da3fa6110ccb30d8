package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"crm-api/domain"
	"crm-api/integrations/calendar"
	"crm-api/integrations/contactsync"
	"crm-api/repo"
	"crm-api/storage"
)

// stubAuth treats the bearer token as the user id.
type stubAuth struct{}

func (stubAuth) UserIDFromAuthHeader(h string) (string, error) {
	token, ok := strings.CutPrefix(strings.TrimSpace(h), "Bearer ")
	if !ok || token == "" {
		return "", errMissingAuthorization
	}
	return token, nil
}

type stubSource struct {
	people []contactsync.Person
	err    error
}

func (s stubSource) FetchPeople(ctx context.Context) ([]contactsync.Person, error) {
	return s.people, s.err
}

func newTestLogger() *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestServer(t *testing.T, source ContactSource) *echo.Echo {
	t.Helper()
	logger := newTestLogger()
	store := storage.New(storage.NewMemoryKV(), logger)
	repos := Repos{
		Contacts:      repo.Contacts(store, logger),
		Tasks:         repo.Tasks(store, logger),
		TaskTemplates: repo.TaskTemplates(store, logger),
		Transactions:  repo.Transactions(store, logger),
		Notes:         repo.Notes(store, logger),
		Pipeline:      repo.Pipeline(store, logger),
		Activities:    repo.Activities(store, logger),
	}
	e := echo.New()
	e.Logger.SetOutput(io.Discard)
	Register(e, repos, calendar.New(store, logger), source, stubAuth{}, logger)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderAuthorization, "Bearer user-1")
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthz(t *testing.T) {
	e := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
}

func TestMissingAuthIsUnauthorized(t *testing.T) {
	e := newTestServer(t, nil)
	for _, path := range []string{"/api/contacts", "/api/tasks", "/api/dashboard", "/api/pipeline/board"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s without auth = %d", path, rec.Code)
		}
	}
}

func TestCreateAndGetContact(t *testing.T) {
	e := newTestServer(t, nil)

	rec := doJSON(t, e, http.MethodPost, "/api/contacts", map[string]any{
		"name":  "Jordan Reyes",
		"email": "jordan@example.com",
		"phone": "555-0100",
		"type":  "Buyer",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d body %s", rec.Code, rec.Body.String())
	}
	var created domain.Contact
	decodeJSON(t, rec, &created)
	if created.ID == "" || created.LastContact.IsZero() {
		t.Fatalf("created contact incomplete: %+v", created)
	}

	rec = doJSON(t, e, http.MethodGet, "/api/contacts/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get = %d", rec.Code)
	}
	var got domain.Contact
	decodeJSON(t, rec, &got)
	if got.Name != "Jordan Reyes" || got.Email != "jordan@example.com" {
		t.Fatalf("unexpected contact: %+v", got)
	}
}

func TestCreateContactInvalidEmail(t *testing.T) {
	e := newTestServer(t, nil)
	rec := doJSON(t, e, http.MethodPost, "/api/contacts", map[string]any{
		"name":  "Bad Email",
		"email": "not-an-email",
		"phone": "555-0100",
		"type":  "Buyer",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body errorBody
	decodeJSON(t, rec, &body)
	if _, ok := body.Fields["Email"]; !ok {
		t.Fatalf("expected Email field error, got %+v", body)
	}
}

func TestCreateTaskWithoutDueDateLeavesCollectionUnchanged(t *testing.T) {
	e := newTestServer(t, nil)
	rec := doJSON(t, e, http.MethodPost, "/api/tasks", map[string]any{
		"title":    "Call seller",
		"status":   "todo",
		"type":     "call",
		"priority": 1,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodGet, "/api/tasks", nil)
	var tasks []taskView
	decodeJSON(t, rec, &tasks)
	if len(tasks) != 0 {
		t.Fatalf("rejected create must not persist: %#v", tasks)
	}
}

func TestCreateTaskUnknownFieldRejected(t *testing.T) {
	e := newTestServer(t, nil)
	rec := doJSON(t, e, http.MethodPost, "/api/tasks", map[string]any{
		"title":    "Call seller",
		"status":   "todo",
		"type":     "call",
		"priority": 1,
		"dueDate":  "2025-07-01T00:00:00Z",
		"bogus":    true,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on unknown field, got %d", rec.Code)
	}
}

func TestUnknownIDIs404(t *testing.T) {
	e := newTestServer(t, nil)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/contacts/ghost"},
		{http.MethodDelete, "/api/contacts/ghost"},
		{http.MethodGet, "/api/tasks/ghost"},
		{http.MethodGet, "/api/transactions/ghost"},
		{http.MethodGet, "/api/notes/ghost"},
		{http.MethodDelete, "/api/pipeline/ghost"},
	} {
		rec := doJSON(t, e, tc.method, tc.path, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s %s = %d, want 404", tc.method, tc.path, rec.Code)
		}
	}
}

func TestTaskCreateRecordsActivity(t *testing.T) {
	e := newTestServer(t, nil)
	rec := doJSON(t, e, http.MethodPost, "/api/tasks", map[string]any{
		"title":     "Call seller",
		"status":    "todo",
		"type":      "call",
		"priority":  1,
		"dueDate":   "2025-07-01T00:00:00Z",
		"contactId": "c1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodGet, "/api/activities?contactId=c1", nil)
	var feed []domain.Activity
	decodeJSON(t, rec, &feed)
	if len(feed) != 1 || feed[0].Type != domain.ActivityTask {
		t.Fatalf("expected one task activity, got %#v", feed)
	}
}

func TestTaskCompletionStamp(t *testing.T) {
	e := newTestServer(t, nil)
	rec := doJSON(t, e, http.MethodPost, "/api/tasks", map[string]any{
		"title":    "Send docs",
		"status":   "todo",
		"type":     "email",
		"priority": 2,
		"dueDate":  "2025-07-01T00:00:00Z",
	})
	var created domain.Task
	decodeJSON(t, rec, &created)

	update := map[string]any{
		"title":    "Send docs",
		"status":   "done",
		"type":     "email",
		"priority": 2,
		"dueDate":  "2025-07-01T00:00:00Z",
	}
	rec = doJSON(t, e, http.MethodPut, "/api/tasks/"+created.ID, update)
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d body %s", rec.Code, rec.Body.String())
	}
	var done domain.Task
	decodeJSON(t, rec, &done)
	if done.CompletedAt == nil {
		t.Fatal("expected completedAt stamped on entering done")
	}

	update["status"] = "todo"
	rec = doJSON(t, e, http.MethodPut, "/api/tasks/"+created.ID, update)
	var reopened domain.Task
	decodeJSON(t, rec, &reopened)
	if reopened.CompletedAt != nil {
		t.Fatal("expected completedAt cleared on leaving done")
	}
}

func TestTaskTemplateLifecycleAndInstantiate(t *testing.T) {
	e := newTestServer(t, nil)

	rec := doJSON(t, e, http.MethodPost, "/api/task-templates", map[string]any{
		"name":      "Follow up after showing",
		"type":      "followUp",
		"dueInDays": 3,
		"priority":  1,
		"automated": true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create template = %d body %s", rec.Code, rec.Body.String())
	}
	var template domain.TaskTemplate
	decodeJSON(t, rec, &template)
	if template.ID == "" {
		t.Fatal("expected template id assigned")
	}

	rec = doJSON(t, e, http.MethodGet, "/api/task-templates", nil)
	var templates []domain.TaskTemplate
	decodeJSON(t, rec, &templates)
	if len(templates) != 1 || templates[0].Name != "Follow up after showing" {
		t.Fatalf("unexpected templates: %#v", templates)
	}

	before := time.Now()
	rec = doJSON(t, e, http.MethodPost, "/api/task-templates/"+template.ID+"/tasks", map[string]any{
		"contactId": "c1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("instantiate = %d body %s", rec.Code, rec.Body.String())
	}
	var task domain.Task
	decodeJSON(t, rec, &task)
	if task.Title != "Follow up after showing" || task.Status != domain.TaskTodo {
		t.Fatalf("unexpected task: %+v", task)
	}
	if task.ContactID != "c1" || !task.Automated {
		t.Fatalf("links not applied: %+v", task)
	}
	wantDue := before.AddDate(0, 0, 3)
	if task.DueDate.Before(wantDue.Add(-time.Minute)) || task.DueDate.After(wantDue.Add(time.Minute)) {
		t.Fatalf("dueDate = %v, want about %v", task.DueDate, wantDue)
	}

	// Instantiation records a feed entry for the linked contact.
	rec = doJSON(t, e, http.MethodGet, "/api/activities?contactId=c1", nil)
	var feed []domain.Activity
	decodeJSON(t, rec, &feed)
	if len(feed) != 1 || feed[0].Type != domain.ActivityTask {
		t.Fatalf("expected one task activity, got %#v", feed)
	}

	rec = doJSON(t, e, http.MethodDelete, "/api/task-templates/"+template.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete template = %d", rec.Code)
	}
	rec = doJSON(t, e, http.MethodPost, "/api/task-templates/"+template.ID+"/tasks", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("instantiate deleted template = %d", rec.Code)
	}
}

func TestCreateTaskTemplateMissingName(t *testing.T) {
	e := newTestServer(t, nil)
	rec := doJSON(t, e, http.MethodPost, "/api/task-templates", map[string]any{
		"type":     "call",
		"priority": 2,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body errorBody
	decodeJSON(t, rec, &body)
	if _, ok := body.Fields["Name"]; !ok {
		t.Fatalf("expected Name field error, got %+v", body)
	}
}

func TestNoteContentSanitizedOnRead(t *testing.T) {
	e := newTestServer(t, nil)
	rec := doJSON(t, e, http.MethodPost, "/api/notes", map[string]any{
		"title":   "Showing notes",
		"content": `<p>Fine</p><script>alert("x")</script>`,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d body %s", rec.Code, rec.Body.String())
	}
	var created domain.Note
	decodeJSON(t, rec, &created)

	rec = doJSON(t, e, http.MethodGet, "/api/notes/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get = %d", rec.Code)
	}
	var got struct {
		Content string `json:"content"`
	}
	decodeJSON(t, rec, &got)
	if strings.Contains(got.Content, "<script>") {
		t.Fatalf("script tag survived sanitization: %q", got.Content)
	}
	if !strings.Contains(got.Content, "<p>Fine</p>") {
		t.Fatalf("benign markup stripped: %q", got.Content)
	}
}

func TestNoteWithMultipleRelationsRejected(t *testing.T) {
	e := newTestServer(t, nil)
	rec := doJSON(t, e, http.MethodPost, "/api/notes", map[string]any{
		"title":     "Overlinked",
		"content":   "x",
		"contactId": "c1",
		"taskId":    "k1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestNoteResolvesDanglingContact(t *testing.T) {
	e := newTestServer(t, nil)
	rec := doJSON(t, e, http.MethodPost, "/api/notes", map[string]any{
		"title":     "Orphan",
		"content":   "x",
		"contactId": "ghost",
	})
	var created domain.Note
	decodeJSON(t, rec, &created)

	rec = doJSON(t, e, http.MethodGet, "/api/notes/"+created.ID, nil)
	var got struct {
		ContactName string `json:"contactName"`
	}
	decodeJSON(t, rec, &got)
	if got.ContactName != "N/A" {
		t.Fatalf("dangling contact should render as N/A, got %q", got.ContactName)
	}
}

func TestPipelineMoveStageAndBoard(t *testing.T) {
	e := newTestServer(t, nil)

	rec := doJSON(t, e, http.MethodPost, "/api/contacts", map[string]any{
		"name":  "Jordan Reyes",
		"email": "jordan@example.com",
		"phone": "555-0100",
		"type":  "Buyer",
	})
	var contact domain.Contact
	decodeJSON(t, rec, &contact)

	rec = doJSON(t, e, http.MethodPost, "/api/pipeline", map[string]any{
		"contactId": contact.ID,
		"type":      "Buyer",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create item = %d body %s", rec.Code, rec.Body.String())
	}
	var item domain.PipelineItem
	decodeJSON(t, rec, &item)
	if item.Stage != domain.StageNew {
		t.Fatalf("expected default stage New, got %s", item.Stage)
	}

	rec = doJSON(t, e, http.MethodPost, "/api/pipeline/"+item.ID+"/stage", map[string]any{"stage": "Active"})
	if rec.Code != http.StatusOK {
		t.Fatalf("move = %d body %s", rec.Code, rec.Body.String())
	}

	// The contact list projects the authoritative stage.
	rec = doJSON(t, e, http.MethodGet, "/api/contacts", nil)
	var contacts []domain.Contact
	decodeJSON(t, rec, &contacts)
	if len(contacts) != 1 || contacts[0].Stage != "Active" {
		t.Fatalf("stage projection missing: %#v", contacts)
	}

	rec = doJSON(t, e, http.MethodGet, "/api/pipeline/board", nil)
	var columns []boardColumn
	decodeJSON(t, rec, &columns)
	if len(columns) != len(domain.Stages()) {
		t.Fatalf("expected %d columns, got %d", len(domain.Stages()), len(columns))
	}
	for _, col := range columns {
		wantCount := 0
		if col.Stage == domain.StageActive {
			wantCount = 1
		}
		if col.Count != wantCount || len(col.Cards) != wantCount {
			t.Fatalf("column %s: count=%d cards=%d", col.Stage, col.Count, len(col.Cards))
		}
		if col.Stage == domain.StageActive && col.Cards[0].ContactName != "Jordan Reyes" {
			t.Fatalf("card not joined: %+v", col.Cards[0])
		}
	}

	rec = doJSON(t, e, http.MethodPost, "/api/pipeline/ghost/stage", map[string]any{"stage": "Closed"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("move unknown item = %d", rec.Code)
	}
}

func TestDashboard(t *testing.T) {
	e := newTestServer(t, nil)

	seed := []map[string]any{
		{"date": "2025-06-01T00:00:00Z", "propertyAddress": "1 Oak St", "clientName": "A", "amount": 500000, "status": "Closed", "type": "Closing"},
		{"date": "2025-06-02T00:00:00Z", "propertyAddress": "2 Oak St", "clientName": "B", "amount": 250000, "status": "Closed", "type": "Listing"},
		{"date": "2025-06-03T00:00:00Z", "propertyAddress": "3 Oak St", "clientName": "C", "amount": 100000, "status": "Pending", "type": "Closing"},
		{"date": "2025-06-04T00:00:00Z", "propertyAddress": "4 Oak St", "clientName": "D", "amount": 425000, "status": "Active", "type": "Listing"},
	}
	for _, draft := range seed {
		if rec := doJSON(t, e, http.MethodPost, "/api/transactions", draft); rec.Code != http.StatusCreated {
			t.Fatalf("seed transaction = %d body %s", rec.Code, rec.Body.String())
		}
	}
	rec := doJSON(t, e, http.MethodPost, "/api/contacts", map[string]any{
		"name":  "Recent",
		"email": "recent@example.com",
		"phone": "555-0101",
		"type":  "Buyer",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed contact = %d", rec.Code)
	}

	rec = doJSON(t, e, http.MethodGet, "/api/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard = %d body %s", rec.Code, rec.Body.String())
	}
	var resp dashboardResponse
	decodeJSON(t, rec, &resp)

	if resp.Summary.TotalRevenue != 750000 {
		t.Fatalf("totalRevenue = %v, want 750000", resp.Summary.TotalRevenue)
	}
	if resp.Summary.PendingSales != 1 || resp.Summary.ActiveListings != 1 {
		t.Fatalf("unexpected summary: %+v", resp.Summary)
	}
	if resp.Summary.ActiveClients != 1 {
		t.Fatalf("activeClients = %d, want 1", resp.Summary.ActiveClients)
	}
	if resp.TransactionTypes[domain.TypeListing] != 2 || resp.TransactionTypes[domain.TypeClosing] != 2 {
		t.Fatalf("unexpected type breakdown: %v", resp.TransactionTypes)
	}
	if len(resp.PipelineStats) != len(domain.Stages()) {
		t.Fatalf("pipeline stats not seeded: %v", resp.PipelineStats)
	}
}

func TestSyncContactsNotConfigured(t *testing.T) {
	e := newTestServer(t, nil)
	rec := doJSON(t, e, http.MethodPost, "/api/contacts/sync", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestSyncContactsUpsertsByEmail(t *testing.T) {
	source := stubSource{people: []contactsync.Person{
		{RemoteID: "r1", Name: "Jordan Updated", Email: "jordan@example.com", Phone: "555-0199"},
		{RemoteID: "r2", Name: "New Person", Email: "new@example.com", Phone: "555-0102"},
		{RemoteID: "r3", Name: "No Email"},
	}}
	e := newTestServer(t, source)

	rec := doJSON(t, e, http.MethodPost, "/api/contacts", map[string]any{
		"name":  "Jordan Reyes",
		"email": "jordan@example.com",
		"phone": "555-0100",
		"type":  "Buyer",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed contact = %d", rec.Code)
	}

	rec = doJSON(t, e, http.MethodPost, "/api/contacts/sync", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("sync = %d body %s", rec.Code, rec.Body.String())
	}
	var resp syncResponse
	decodeJSON(t, rec, &resp)
	if resp.Imported != 1 || resp.Updated != 1 {
		t.Fatalf("sync counts = %+v, want imported 1 updated 1", resp)
	}

	rec = doJSON(t, e, http.MethodGet, "/api/contacts", nil)
	var contacts []domain.Contact
	decodeJSON(t, rec, &contacts)
	if len(contacts) != 2 {
		t.Fatalf("expected 2 contacts after sync, got %d", len(contacts))
	}
	byEmail := make(map[string]domain.Contact)
	for _, c := range contacts {
		byEmail[c.Email] = c
	}
	if got := byEmail["jordan@example.com"]; got.Name != "Jordan Updated" || got.Phone != "555-0199" {
		t.Fatalf("existing contact not updated: %+v", got)
	}
	if got := byEmail["new@example.com"]; got.Type != domain.ContactOther || got.Source != "sync" {
		t.Fatalf("imported contact wrong: %+v", got)
	}
}

func TestSyncContactsProviderFailure(t *testing.T) {
	e := newTestServer(t, stubSource{err: errors.New("boom")})
	rec := doJSON(t, e, http.MethodPost, "/api/contacts/sync", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestCalendarEventCRUD(t *testing.T) {
	e := newTestServer(t, nil)

	rec := doJSON(t, e, http.MethodPost, "/api/calendar/events", map[string]any{
		"summary": "Showing at 12 Elm St",
		"start":   map[string]any{"dateTime": "2025-07-01T10:00:00Z"},
		"end":     map[string]any{"dateTime": "2025-07-01T11:00:00Z"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d body %s", rec.Code, rec.Body.String())
	}
	var created domain.CalendarEvent
	decodeJSON(t, rec, &created)
	if created.ID == "" {
		t.Fatal("expected id assigned")
	}

	rec = doJSON(t, e, http.MethodGet, "/api/calendar/events", nil)
	var events []domain.CalendarEvent
	decodeJSON(t, rec, &events)
	if len(events) != 1 || events[0].Summary != "Showing at 12 Elm St" {
		t.Fatalf("unexpected events: %#v", events)
	}

	rec = doJSON(t, e, http.MethodDelete, "/api/calendar/events/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", rec.Code)
	}
}
