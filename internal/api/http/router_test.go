package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/deskflow/helpdesk-api/internal/api/http/handlers"
	"github.com/deskflow/helpdesk-api/internal/auth"
	"github.com/deskflow/helpdesk-api/internal/events"
	"github.com/deskflow/helpdesk-api/internal/lifecycle"
	"github.com/deskflow/helpdesk-api/internal/observability"
	"github.com/deskflow/helpdesk-api/internal/repository/memory"
	"github.com/deskflow/helpdesk-api/internal/service"
	"github.com/deskflow/helpdesk-api/internal/validation"
)

const adminEmail = "admin@example.com"

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newTestApp(t *testing.T, limiter *ClientRateLimiter) *fiber.App {
	t.Helper()

	logger := zap.NewNop()
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	validator := validation.New()
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:     memory.NewUserRepository(),
		Hasher:       auth.NewBcryptHasher(4),
		Tokens:       auth.NewTokenManager("router-test", 5),
		Validator:    validator,
		IsAdminEmail: func(email string) bool { return email == adminEmail },
		Logger:       logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: memory.NewTicketRepository(),
		Machine:    lifecycle.NewMachine(false),
		Validator:  validator,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Location:   time.UTC,
		Logger:     logger,
	})
	bookService := service.NewBookService(service.BookDependencies{
		BookRepo:  memory.NewBookRepository(),
		Validator: validator,
		Logger:    logger,
	})

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("helpdesk-api", "test", nil),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Books:          handlers.NewBooksHandler(bookService),
		AuthMiddleware: auth.NewAuthMiddleware(authService),
		AuthLimiter:    limiter,
		Gatherer:       registry,
		Logger:         logger,
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func signup(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	status, env := doJSON(t, app, http.MethodPost, "/auth/signup", "", map[string]string{
		"email":    email,
		"password": "secret",
	})
	require.Equal(t, http.StatusCreated, status)

	var payload struct {
		Token string `json:"token"`
		User  struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.NotEmpty(t, payload.Token)
	return payload.Token
}

type ticketBody struct {
	ID           int64   `json:"id"`
	Status       string  `json:"status"`
	AuthorID     int64   `json:"authorId"`
	Resolution   *string `json:"resolution"`
	CancelReason *string `json:"cancelReason"`
}

func TestTicketFlow(t *testing.T) {
	app := newTestApp(t, nil)
	userToken := signup(t, app, "ann@example.com")
	adminToken := signup(t, app, adminEmail)

	status, env := doJSON(t, app, http.MethodPost, "/tickets", userToken, map[string]string{
		"subject": "Printer on fire",
		"content": "Third floor",
	})
	require.Equal(t, http.StatusCreated, status)
	var created ticketBody
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "NEW", created.Status)

	path := "/tickets/" + jsonNumber(created.ID)
	status, env = doJSON(t, app, http.MethodPost, path+"/take", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	var taken ticketBody
	require.NoError(t, json.Unmarshal(env.Data, &taken))
	assert.Equal(t, "IN_PROGRESS", taken.Status)

	status, env = doJSON(t, app, http.MethodPost, path+"/complete", userToken, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	status, env = doJSON(t, app, http.MethodPost, path+"/complete", userToken, map[string]string{"resolution": "Extinguished"})
	require.Equal(t, http.StatusOK, status)
	var completed ticketBody
	require.NoError(t, json.Unmarshal(env.Data, &completed))
	assert.Equal(t, "COMPLETED", completed.Status)
	require.NotNil(t, completed.Resolution)
	assert.Equal(t, "Extinguished", *completed.Resolution)

	status, env = doJSON(t, app, http.MethodGet, "/tickets", userToken, nil)
	require.Equal(t, http.StatusOK, status)
	var listed []ticketBody
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Len(t, listed, 1)
}

func TestListTicketsAcceptsUnescapedOffset(t *testing.T) {
	app := newTestApp(t, nil)
	token := signup(t, app, "ann@example.com")

	for _, query := range []string{
		"date=2030-01-15T10:00:00+03:00",
		"date=2030-01-15T10:00:00%2B03:00",
		"startDate=2030-01-15T10:00:00+03:00&endDate=2030-01-16T10:00:00Z",
	} {
		status, env := doJSON(t, app, http.MethodGet, "/tickets?"+query, token, nil)
		assert.Equal(t, http.StatusOK, status, query)
		assert.Nil(t, env.Error, query)
	}
}

func TestTicketAuthorization(t *testing.T) {
	app := newTestApp(t, nil)
	annToken := signup(t, app, "ann@example.com")
	bobToken := signup(t, app, "bob@example.com")

	_, env := doJSON(t, app, http.MethodPost, "/tickets", annToken, map[string]string{"subject": "s", "content": "c"})
	var created ticketBody
	require.NoError(t, json.Unmarshal(env.Data, &created))

	status, env := doJSON(t, app, http.MethodPost, "/tickets/"+jsonNumber(created.ID)+"/cancel", bobToken,
		map[string]string{"cancelReason": "not mine"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	status, env = doJSON(t, app, http.MethodPost, "/tickets/999/take", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	status, env = doJSON(t, app, http.MethodPost, "/tickets/abc/take", bobToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	status, env = doJSON(t, app, http.MethodPost, "/tickets/cancel-in-progress", bobToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	status, _ = doJSON(t, app, http.MethodGet, "/tickets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCancelInProgressAsAdmin(t *testing.T) {
	app := newTestApp(t, nil)
	userToken := signup(t, app, "ann@example.com")
	adminToken := signup(t, app, adminEmail)

	for _, subject := range []string{"a", "b", "c"} {
		_, env := doJSON(t, app, http.MethodPost, "/tickets", userToken, map[string]string{"subject": subject, "content": "x"})
		var created ticketBody
		require.NoError(t, json.Unmarshal(env.Data, &created))
		if subject != "c" {
			status, _ := doJSON(t, app, http.MethodPost, "/tickets/"+jsonNumber(created.ID)+"/take", userToken, nil)
			require.Equal(t, http.StatusOK, status)
		}
	}

	status, env := doJSON(t, app, http.MethodPost, "/tickets/cancel-in-progress", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	var result struct {
		Message string `json:"message"`
		Count   int64  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, int64(2), result.Count)
	assert.Equal(t, "Cancelled 2 tickets", result.Message)
}

func TestMe(t *testing.T) {
	app := newTestApp(t, nil)
	token := signup(t, app, "Ann@Example.com")

	status, env := doJSON(t, app, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "ann@example.com", me.Email)
	assert.Equal(t, "USER", me.Role)

	status, env = doJSON(t, app, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	status, _ = doJSON(t, app, http.MethodGet, "/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSignupConflictAndMalformedBody(t *testing.T) {
	app := newTestApp(t, nil)
	signup(t, app, "ann@example.com")

	status, env := doJSON(t, app, http.MethodPost, "/auth/signup", "", map[string]string{"email": "ann@example.com", "password": "secret"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader("{"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBookRoutes(t *testing.T) {
	app := newTestApp(t, nil)
	token := signup(t, app, "ann@example.com")

	status, _ := doJSON(t, app, http.MethodPost, "/books", "", map[string]string{"title": "t", "author": "a"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env := doJSON(t, app, http.MethodPost, "/books", token, map[string]string{"title": "Kindred", "author": "Butler"})
	require.Equal(t, http.StatusCreated, status)
	var book struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &book))

	status, _ = doJSON(t, app, http.MethodGet, "/books/"+book.ID, "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPatch, "/books/"+book.ID, token, map[string]any{"publishedYear": 1979})
	require.Equal(t, http.StatusOK, status)

	status, env = doJSON(t, app, http.MethodPost, "/books/delete", token, map[string]any{"ids": []string{book.ID}})
	require.Equal(t, http.StatusOK, status)
	var deleted []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &deleted))
	assert.Len(t, deleted, 1)

	status, env = doJSON(t, app, http.MethodGet, "/books/"+book.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestBookSurvivesPatchThenBulkDelete(t *testing.T) {
	app := newTestApp(t, nil)
	token := signup(t, app, "ann@example.com")

	_, env := doJSON(t, app, http.MethodPost, "/books", token, map[string]string{"title": "Dune", "author": "Herbert"})
	var book struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &book))

	status, _ := doJSON(t, app, http.MethodPatch, "/books/"+book.ID, token, map[string]string{"title": "Dune Messiah"})
	require.Equal(t, http.StatusOK, status)
	status, _ = doJSON(t, app, http.MethodGet, "/books/00000000-0000-4000-8000-000000000000", "", nil)
	require.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, app, http.MethodGet, "/books/"+book.ID, "", nil)
	require.Equal(t, http.StatusOK, status)

	status, env = doJSON(t, app, http.MethodPost, "/books/delete", token, map[string]any{"ids": []string{book.ID}})
	require.Equal(t, http.StatusOK, status)
	var deleted []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &deleted))
	assert.Len(t, deleted, 1)

	_, env = doJSON(t, app, http.MethodGet, "/books", "", nil)
	var remaining []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &remaining))
	assert.Empty(t, remaining)
}

func TestUnknownRouteRendersErrorEnvelope(t *testing.T) {
	app := newTestApp(t, nil)

	status, env := doJSON(t, app, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t, nil)

	status, _ := doJSON(t, app, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = doJSON(t, app, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "helpdesk_http_requests_total")
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	app := newTestApp(t, NewClientRateLimiter(0.001, 2))
	creds := map[string]string{"email": "ann@example.com", "password": "secret"}

	status, _ := doJSON(t, app, http.MethodPost, "/auth/signin", "", creds)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = doJSON(t, app, http.MethodPost, "/auth/signin", "", creds)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env := doJSON(t, app, http.MethodPost, "/auth/signin", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", env.Error.Code)

	status, _ = doJSON(t, app, http.MethodGet, "/books", "", nil)
	assert.Equal(t, http.StatusOK, status, "only auth routes are throttled")
}

func jsonNumber(id int64) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}
