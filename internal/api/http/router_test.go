package http

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/recruitment-crm/internal/api/http/handlers"
	"github.com/spec-kit/recruitment-crm/internal/auth"
	"github.com/spec-kit/recruitment-crm/internal/config"
	"github.com/spec-kit/recruitment-crm/internal/export"
	"github.com/spec-kit/recruitment-crm/internal/observability"
	"github.com/spec-kit/recruitment-crm/internal/persistence"
	"github.com/spec-kit/recruitment-crm/internal/repository"
	"github.com/spec-kit/recruitment-crm/internal/service"
	"github.com/spec-kit/recruitment-crm/internal/session"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	db := persistence.OpenTestDB(t)
	store := repository.NewStore(db.DB)
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	cfg := config.AuthConfig{JWTSecret: "test-secret", SessionTimeoutHours: 24, BcryptCost: bcrypt.MinCost}

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		Store: store, Sessions: session.NewMemoryStore(cfg.SessionTimeout()), Logger: logger,
	})
	userService := service.NewUserService(cfg, service.UserDependencies{Store: store, Logger: logger})
	candidateService := service.NewCandidateService(service.CandidateDependencies{Store: store, Logger: logger})
	callService := service.NewCallService(service.CallDependencies{Store: store, Logger: logger})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:     handlers.NewHealthHandler("recruitment-crm", "test", db, nil),
		Auth:       handlers.NewAuthHandler(authService, userService),
		Users:      handlers.NewUsersHandler(userService),
		Candidates: handlers.NewCandidatesHandler(candidateService, callService,
			service.NewAssignmentService(service.AssignmentDependencies{Store: store, Logger: logger})),
		Calls:      handlers.NewCallsHandler(callService),
		Analytics: handlers.NewAnalyticsHandler(
			service.NewAnalyticsService(service.AnalyticsDependencies{Store: store, Logger: logger}),
			service.NewActivityService(service.ActivityDependencies{Store: store, Logger: logger}),
		),
		Export:         handlers.NewExportHandler(service.NewExportService(service.ExportDependencies{Store: store, Logger: logger})),
		AuthMiddleware: auth.NewAuthMiddleware(authService),
		Metrics:        metrics,
	})
	return app
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  map[string]any  `json:"meta"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp, env
}

func login(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	resp, env := call(t, app, http.MethodPost, "/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Token
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	resp, _ := call(t, app, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = call(t, app, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "http_requests_total")
}

func TestLoginCreateCandidateAndLogCall(t *testing.T) {
	app := newTestApp(t)

	resp, env := call(t, app, http.MethodPost, "/auth/login", "", map[string]string{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	token := login(t, app, "admin", persistence.TestAdminPassword)

	resp, env = call(t, app, http.MethodPost, "/candidates", token, map[string]any{
		"first_name": "Ana", "last_name": "Lee", "email": "ana@example.com", "status": "Applied",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var candidate struct {
		ID        int64  `json:"id"`
		Status    string `json:"status"`
		CreatedBy int64  `json:"created_by"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &candidate))
	assert.NotZero(t, candidate.ID)
	assert.Equal(t, "Applied", candidate.Status)
	assert.EqualValues(t, 1, candidate.CreatedBy)

	resp, env = call(t, app, http.MethodPost, "/calls", token, map[string]any{
		"candidate_id": candidate.ID, "call_type": "Phone", "outcome": "positive", "next_action_date": "2030-01-15",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var logged struct {
		CandidateID int64  `json:"candidate_id"`
		RecruiterID int64  `json:"recruiter_id"`
		CallType    string `json:"call_type"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &logged))
	assert.Equal(t, candidate.ID, logged.CandidateID)
	assert.EqualValues(t, 1, logged.RecruiterID)
	assert.Equal(t, "Phone", logged.CallType)

	resp, env = call(t, app, http.MethodGet, "/candidates?status=applied&q=ana", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, env.Meta["total"])

	resp, env = call(t, app, http.MethodGet, "/candidates?max_experience=-1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, env.Meta["total"])
	assert.JSONEq(t, "[]", string(env.Data))

	resp, env = call(t, app, http.MethodPost, "/candidates", token, map[string]any{
		"first_name": "Ana", "last_name": "Again", "email": "ana@example.com",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", env.Error.Code)
}

func TestViewerPermissions(t *testing.T) {
	app := newTestApp(t)
	admin := login(t, app, "admin", persistence.TestAdminPassword)

	resp, _ := call(t, app, http.MethodPost, "/users", admin, map[string]any{
		"username": "vera", "email": "vera@example.com", "full_name": "Vera Viewer", "password": "password123", "role": "viewer",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, env := call(t, app, http.MethodPost, "/users", admin, map[string]any{
		"username": "vera", "email": "other@example.com", "full_name": "Dup", "password": "password123", "role": "viewer",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "username", env.Error.Details["field"])

	resp, env = call(t, app, http.MethodPost, "/candidates", admin, map[string]any{
		"first_name": "Ana", "last_name": "Lee", "email": "ana@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var candidate struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &candidate))

	viewer := login(t, app, "vera", "password123")
	path := "/candidates/" + jsonNumber(candidate.ID)

	resp, env = call(t, app, http.MethodDelete, path, viewer, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	resp, _ = call(t, app, http.MethodGet, path, viewer, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/activity", viewer, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/analytics/summary", viewer, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/candidates", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestExportDownload(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "admin", persistence.TestAdminPassword)

	resp, _ := call(t, app, http.MethodGet, "/export/candidates?format=csv", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, export.FormatCSV.ContentType(), resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "candidates_")

	records, err := csv.NewReader(resp.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, export.CandidateHeaders, records[0])

	resp, env := call(t, app, http.MethodGet, "/export/candidates?format=pdf", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestLogoutEndsSession(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "admin", persistence.TestAdminPassword)

	resp, _ := call(t, app, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = call(t, app, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func jsonNumber(id int64) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}

func TestAssignRecruiterEndpoints(t *testing.T) {
	app := newTestApp(t)
	admin := login(t, app, "admin", persistence.TestAdminPassword)

	resp, env := call(t, app, http.MethodPost, "/users", admin, map[string]any{
		"username": "rita", "email": "rita@example.com", "full_name": "Rita Recruiter", "password": "password123", "role": "recruiter",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var rita struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rita))

	resp, env = call(t, app, http.MethodPost, "/candidates", admin, map[string]any{
		"first_name": "Ana", "last_name": "Lee", "email": "ana@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var candidate struct {
		ID          int64  `json:"id"`
		RecruiterID *int64 `json:"recruiter_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &candidate))
	path := fmt.Sprintf("/candidates/%d/recruiter", candidate.ID)

	resp, env = call(t, app, http.MethodPost, path+"/auto", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &candidate))
	require.NotNil(t, candidate.RecruiterID)
	assert.Equal(t, rita.ID, *candidate.RecruiterID)

	resp, env = call(t, app, http.MethodPatch, path, admin, map[string]any{"recruiter_id": 9999})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INVALID_REFERENCE", env.Error.Code)

	resp, env = call(t, app, http.MethodPatch, path, admin, map[string]any{"recruiter_id": nil})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	candidate.RecruiterID = nil
	require.NoError(t, json.Unmarshal(env.Data, &candidate))
	assert.Nil(t, candidate.RecruiterID)
}

func TestSearchDateBoundsAndUnknownStatus(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "admin", persistence.TestAdminPassword)

	resp, env := call(t, app, http.MethodPost, "/candidates", token, map[string]any{
		"first_name": "Ana", "last_name": "Lee", "email": "ana@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var candidate struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &candidate))

	resp, _ = call(t, app, http.MethodPost, "/calls", token, map[string]any{
		"candidate_id": candidate.ID, "call_type": "Phone",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	today := time.Now().UTC().Format("2006-01-02")
	yesterday := time.Now().UTC().Add(-24 * time.Hour).Format("2006-01-02")

	resp, env = call(t, app, http.MethodGet, "/candidates?created_from="+today+"&created_to="+today, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, env.Meta["total"], "a plain end date covers the whole day")

	resp, env = call(t, app, http.MethodGet, "/candidates?created_to="+yesterday, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, env.Meta["total"])

	resp, env = call(t, app, http.MethodGet, "/calls?from="+today+"&to="+today, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, env.Meta["total"])

	resp, env = call(t, app, http.MethodGet, "/candidates?status=Bogus", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, env.Meta["total"])
	assert.JSONEq(t, "[]", string(env.Data))

	resp, env = call(t, app, http.MethodGet, "/candidates?status=bogus,applied", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, env.Meta["total"])

	resp, _ = call(t, app, http.MethodGet, "/candidates?created_to=yesterday", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
