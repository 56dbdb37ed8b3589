package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
	"github.com/m-mizutani/gt"

	httpctrl "github.com/secmon-lab/tablero/pkg/controller/http"
	"github.com/secmon-lab/tablero/pkg/domain/interfaces"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/domain/types"
	"github.com/secmon-lab/tablero/pkg/repository/memory"
	"github.com/secmon-lab/tablero/pkg/service/storage"
	"github.com/secmon-lab/tablero/pkg/usecase"
)

var errRemote = errors.New("remote store unavailable")

// failingRepo makes ticket updates fail when failUpdate is set
type failingRepo struct {
	*memory.Memory
	tickets *failingTickets
}

func newFailingRepo() *failingRepo {
	mem := memory.New()
	return &failingRepo{Memory: mem, tickets: &failingTickets{TicketRepository: mem.Ticket()}}
}

func (r *failingRepo) Ticket() interfaces.TicketRepository {
	return r.tickets
}

type failingTickets struct {
	interfaces.TicketRepository
	failUpdate bool
}

func (f *failingTickets) Update(ctx context.Context, id string, patch model.TicketPatch) (*model.Ticket, error) {
	if f.failUpdate {
		return nil, errRemote
	}
	return f.TicketRepository.Update(ctx, id, patch)
}

var testSPA = fstest.MapFS{
	"index.html":    {Data: []byte("<html>tablero</html>")},
	"assets/app.js": {Data: []byte("console.log('app')")},
}

func setupServer(t *testing.T, repo interfaces.Repository, opts ...httpctrl.Options) (*httpctrl.Server, *usecase.UseCases) {
	t.Helper()
	uc := usecase.New(repo,
		usecase.WithStorage(storage.NewMemory("https://files.example.com")),
	)
	srv, err := httpctrl.New(uc, append([]httpctrl.Options{httpctrl.WithStaticFS(testSPA)}, opts...)...)
	gt.NoError(t, err).Required()
	return srv, uc
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		gt.NoError(t, err).Required()
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v)).Required()
	return v
}

type writeBody struct {
	Outcome string       `json:"outcome"`
	Record  model.Ticket `json:"record"`
	Error   string       `json:"error"`
}

func TestNoAuthn(t *testing.T) {
	srv, _ := setupServer(t, memory.New())

	rec := doJSON(t, srv, http.MethodGet, "/api/auth/me", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	me := decode[map[string]string](t, rec)
	gt.Value(t, me["sub"]).Equal("anonymous")

	rec = doJSON(t, srv, http.MethodGet, "/api/kanban/board", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
}

func TestPasswordAuth(t *testing.T) {
	repo := memory.New()
	authUC := usecase.NewAuthUseCase(repo, []byte("0123456789abcdef0123456789abcdef"))
	_, err := authUC.CreateUser(context.Background(), "ana@example.com", "correct horse", "Ana")
	gt.NoError(t, err).Required()

	srv, _ := setupServer(t, repo, httpctrl.WithAuth(authUC))

	t.Run("protected routes need a session", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/kanban/board", nil)
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
		gt.Value(t, decode[map[string]string](t, rec)["error"]).Equal("Authentication required")
	})

	t.Run("garbage cookie is rejected", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/kanban/board", nil,
			&http.Cookie{Name: "tablero_session", Value: "not-a-jwt"})
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
		gt.Value(t, decode[map[string]string](t, rec)["error"]).Equal("Invalid authentication token")
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/auth/login",
			map[string]string{"email": "ana@example.com", "password": "wrong password"})
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
		gt.Array(t, rec.Result().Cookies()).Length(0)
	})

	t.Run("login, use and logout", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/auth/login",
			map[string]string{"email": "Ana@Example.com", "password": "correct horse"})
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		cookies := rec.Result().Cookies()
		gt.Array(t, cookies).Length(1).Required()
		session := cookies[0]
		gt.Value(t, session.Name).Equal("tablero_session")
		gt.Bool(t, session.HttpOnly).True()

		rec = doJSON(t, srv, http.MethodGet, "/api/auth/me", nil, session)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, decode[map[string]string](t, rec)["email"]).Equal("ana@example.com")

		rec = doJSON(t, srv, http.MethodPost, "/api/auth/logout", nil, session)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		// The signature is still valid but the session is gone
		rec = doJSON(t, srv, http.MethodGet, "/api/auth/me", nil, session)
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})
}

func TestKanbanRoutes(t *testing.T) {
	ctx := context.Background()
	repo := newFailingRepo()
	srv, _ := setupServer(t, repo)

	rec := doJSON(t, srv, http.MethodPost, "/api/kanban/tickets", usecase.TicketInput{
		Title:       "Write syllabus",
		Status:      types.TicketStatusBacklog,
		Description: "Cover **fiscal** rules",
	})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	created := decode[map[string]any](t, rec)
	id, _ := created["id"].(string)
	gt.Value(t, id).NotEqual("")
	gt.String(t, created["description_html"].(string)).Contains("<strong>fiscal</strong>")

	t.Run("board has every column", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/kanban/board", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		board := decode[struct {
			Columns []struct {
				Status  string           `json:"status"`
				Tickets []map[string]any `json:"tickets"`
			} `json:"columns"`
		}](t, rec)
		gt.Array(t, board.Columns).Length(len(types.AllTicketStatuses())).Required()
		gt.Value(t, board.Columns[0].Status).Equal("backlog")
		gt.Array(t, board.Columns[0].Tickets).Length(1)
	})

	t.Run("move is confirmed", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/kanban/tickets/"+id+"/move",
			map[string]string{"status": "in_progress"})
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		body := decode[writeBody](t, rec)
		gt.Value(t, body.Outcome).Equal("confirmed")
		gt.Value(t, body.Record.Status).Equal(types.TicketStatusInProgress)

		stored, err := repo.Memory.Ticket().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.Status).Equal(types.TicketStatusInProgress)
	})

	t.Run("failed move rolls back", func(t *testing.T) {
		repo.tickets.failUpdate = true
		defer func() { repo.tickets.failUpdate = false }()

		rec := doJSON(t, srv, http.MethodPost, "/api/kanban/tickets/"+id+"/move",
			map[string]string{"status": "done"})
		gt.Value(t, rec.Code).Equal(http.StatusBadGateway)
		body := decode[writeBody](t, rec)
		gt.Value(t, body.Outcome).Equal("rolled_back")
		gt.Value(t, body.Error).Equal("Failed to update ticket")
		gt.Value(t, body.Record.Status).Equal(types.TicketStatusInProgress)
	})

	t.Run("invalid status", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/kanban/tickets/"+id+"/move",
			map[string]string{"status": "archived"})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/kanban/tickets", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
		gt.Value(t, decode[map[string]string](t, rec)["error"]).Equal("invalid request body")
	})

	t.Run("unknown ticket", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/kanban/tickets/missing", nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodDelete, "/api/kanban/tickets/"+id, nil)
		gt.Value(t, rec.Code).Equal(http.StatusNoContent)

		rec = doJSON(t, srv, http.MethodGet, "/api/kanban/tickets/"+id, nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestCalendarRoutes(t *testing.T) {
	srv, _ := setupServer(t, memory.New())

	rec := doJSON(t, srv, http.MethodPost, "/api/calendar/items", usecase.ContentItemInput{
		Pillar:        types.PillarElDato,
		Title:         "Inflation in one chart",
		ScheduledDate: "2026-10-20",
		HasIdea:       true,
		Effort:        types.EffortMedium,
	})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	item := decode[model.ContentItem](t, rec)
	gt.Value(t, item.ID).NotEqual("")

	t.Run("toggle keeps steps prefix closed", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/calendar/items/"+item.ID+"/progress",
			map[string]any{"step": "has_edit", "checked": true})
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		body := decode[struct {
			Outcome string            `json:"outcome"`
			Record  model.ContentItem `json:"record"`
		}](t, rec)
		gt.Value(t, body.Outcome).Equal("confirmed")
		gt.Bool(t, body.Record.HasScript).True()
		gt.Bool(t, body.Record.HasRecording).True()
		gt.Bool(t, body.Record.HasEdit).True()
		gt.Bool(t, body.Record.IsReady).False()
	})

	t.Run("reschedule", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/calendar/items/"+item.ID+"/reschedule",
			map[string]string{"date": "2026-10-23"})
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		body := decode[struct {
			Record model.ContentItem `json:"record"`
		}](t, rec)
		gt.Value(t, body.Record.ScheduledDate).Equal(types.Date("2026-10-23"))
	})

	t.Run("reschedule rejects a malformed date", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/calendar/items/"+item.ID+"/reschedule",
			map[string]string{"date": "23/10/2026"})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("month view", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/calendar/month?year=2026&month=10", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		view := decode[usecase.MonthView](t, rec)
		gt.Value(t, view.Month).Equal(10)
		gt.Array(t, view.Weeks).Length(5)
	})

	t.Run("month out of range", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/calendar/month?year=2026&month=13", nil)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("month must be a number", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/calendar/week?month=oct", nil)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("draft for a day", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/calendar/draft?date=2026-10-21", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		draft := decode[model.ContentItem](t, rec)
		gt.Value(t, draft.ScheduledDate).Equal(types.Date("2026-10-21"))
		gt.Value(t, draft.Pillar).Equal(types.PillarHotTake)
	})

	t.Run("summary", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/calendar/summary", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, decode[usecase.Summary](t, rec).Total).Equal(1)
	})

	t.Run("delete", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodDelete, "/api/calendar/items/"+item.ID, nil)
		gt.Value(t, rec.Code).Equal(http.StatusNoContent)
		rec = doJSON(t, srv, http.MethodGet, "/api/calendar/items/"+item.ID, nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func multipartRequest(t *testing.T, path, fileName, content string, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		gt.NoError(t, mw.WriteField(k, v)).Required()
	}
	fw, err := mw.CreateFormFile("file", fileName)
	gt.NoError(t, err).Required()
	_, err = fw.Write([]byte(content))
	gt.NoError(t, err).Required()
	gt.NoError(t, mw.Close()).Required()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestMaterialRoutes(t *testing.T) {
	srv, _ := setupServer(t, memory.New())

	t.Run("upload and list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, multipartRequest(t, "/api/materials", "Lecture 1.pdf", "%PDF",
			map[string]string{"card_key": "fiscal-policy"}))
		gt.Value(t, rec.Code).Equal(http.StatusCreated)
		view := decode[usecase.MaterialView](t, rec)
		gt.Value(t, view.Label).Equal("Lecture 1")
		gt.Value(t, view.URL).Equal("https://files.example.com/materials/fiscal-policy/Lecture%201.pdf")

		rec = doJSON(t, srv, http.MethodGet, "/api/materials?card=fiscal-policy", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		list := decode[struct {
			Materials []usecase.MaterialView `json:"materials"`
		}](t, rec)
		gt.Array(t, list.Materials).Length(1)
	})

	t.Run("unknown card", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, multipartRequest(t, "/api/materials", "notes.pdf", "x",
			map[string]string{"card_key": "no-such-card"}))
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("file is required", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		gt.NoError(t, mw.WriteField("card_key", "fiscal-policy")).Required()
		gt.NoError(t, mw.Close()).Required()
		req := httptest.NewRequest(http.MethodPost, "/api/materials", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("cv", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/cv", nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)

		rec = httptest.NewRecorder()
		srv.ServeHTTP(rec, multipartRequest(t, "/api/cv", "cv.pdf", "%PDF", nil))
		gt.Value(t, rec.Code).Equal(http.StatusCreated)

		rec = doJSON(t, srv, http.MethodGet, "/api/cv", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, decode[model.BlobObject](t, rec).Name).Equal("cv.pdf")
	})

	t.Run("slides", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, multipartRequest(t, "/api/talks/icml-2024/slides", "deck.pdf", "%PDF", nil))
		gt.Value(t, rec.Code).Equal(http.StatusCreated)

		rec = httptest.NewRecorder()
		srv.ServeHTTP(rec, multipartRequest(t, "/api/talks/unknown/slides", "deck.pdf", "%PDF", nil))
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)

		rec = doJSON(t, srv, http.MethodDelete, "/api/talks/icml-2024/slides", nil)
		gt.Value(t, rec.Code).Equal(http.StatusNoContent)
	})
}

func TestChatRoute(t *testing.T) {
	srv, _ := setupServer(t, memory.New())

	t.Run("empty transcript", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/chat", map[string]any{"messages": []any{}})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("no model configured", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/chat", map[string]any{
			"messages": []map[string]string{{"role": "user", "content": "What pace for 2:59?"}},
		})
		gt.Value(t, rec.Code).Equal(http.StatusServiceUnavailable)
	})
}

func TestConfigRoute(t *testing.T) {
	srv, _ := setupServer(t, memory.New())

	rec := doJSON(t, srv, http.MethodGet, "/api/config", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	cfg := decode[struct {
		Statuses []struct{ Key, Label string } `json:"statuses"`
		Pillars  []struct{ Key, Label string } `json:"pillars"`
		Steps    []string                      `json:"steps"`
		Cards    []struct{ Key, Label string } `json:"cards"`
	}](t, rec)
	gt.Array(t, cfg.Statuses).Length(6).Required()
	gt.Value(t, cfg.Statuses[0].Key).Equal("backlog")
	gt.Array(t, cfg.Pillars).Length(5).Required()
	gt.Value(t, cfg.Pillars[1].Label).Equal("El Dato")
	gt.Array(t, cfg.Steps).Length(5).Required()
	gt.Value(t, cfg.Steps[0]).Equal("has_idea")
	gt.Array(t, cfg.Cards).Length(12)
}

func TestSPAFallback(t *testing.T) {
	srv, _ := setupServer(t, memory.New())

	t.Run("client route serves index", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/calendar/2026/10", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.String(t, rec.Body.String()).Contains("tablero")
	})

	t.Run("asset is served as is", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/assets/app.js", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.String(t, rec.Body.String()).Contains("console.log")
	})

	t.Run("unknown api path is JSON 404", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/nothing", nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
		gt.Value(t, decode[map[string]string](t, rec)["error"]).Equal("not found")
	})
}

func TestRealtimeHub(t *testing.T) {
	srv, _ := setupServer(t, memory.New())
	ts := httptest.NewServer(srv)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/kanban/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	gt.NoError(t, err).Required()
	defer func() { _ = conn.Close() }()
	gt.Value(t, resp.StatusCode).Equal(http.StatusSwitchingProtocols)

	hub := srv.Hub()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	gt.Value(t, hub.Clients()).Equal(1)

	hub.Publish(model.ChangeEvent{Table: model.TableTickets, Kind: model.ChangeUpdate, ID: "t-1"})
	hub.Notify(context.Background(), model.Notice{Level: model.NoticeError, Message: "Reschedule failed"})

	gt.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second))).Required()

	var change httpctrl.Message
	gt.NoError(t, conn.ReadJSON(&change)).Required()
	gt.Value(t, change.Type).Equal(httpctrl.MessageChange)
	gt.Value(t, change.Change).NotNil()
	gt.Value(t, change.Change.ID).Equal("t-1")

	var notice httpctrl.Message
	gt.NoError(t, conn.ReadJSON(&notice)).Required()
	gt.Value(t, notice.Type).Equal(httpctrl.MessageNotice)
	gt.Value(t, notice.Notice.Message).Equal("Reschedule failed")

	// Closing the socket unsubscribes the client
	gt.NoError(t, conn.Close()).Required()
	deadline = time.Now().Add(2 * time.Second)
	for hub.Clients() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	gt.Value(t, hub.Clients()).Equal(0)
}
