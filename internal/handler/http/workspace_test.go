package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/ranking"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/workspace"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/handler/http/response"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/sse"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/storage"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/repository/memory"
	annotationService "github.com/cmlabs-hris/performance-dashboard-go/internal/service/annotation"
	dashboardService "github.com/cmlabs-hris/performance-dashboard-go/internal/service/dashboard"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/service/file"
	rankingService "github.com/cmlabs-hris/performance-dashboard-go/internal/service/ranking"
	workspaceService "github.com/cmlabs-hris/performance-dashboard-go/internal/service/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestSecret = "test-secret-key-for-jwt"

	marchCSV = "nama,departemen,avg_skor_kinerja,absensi_maret,proyek_selesai_mar\nAndi Pratama,IT,4,1,3\n"
	julyCSV  = "nama,departemen,avg_skor_kinerja,absensi_juli,proyek_selesai_jul\nAndi Pratama,IT,3,2,5\n"
)

type envelope struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Data    json.RawMessage       `json:"data"`
	Error   *response.ErrorDetail `json:"error"`
	Meta    *response.Meta        `json:"meta"`
}

type testServer struct {
	*httptest.Server
	tokens jwt.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	filesDir := t.TempDir()
	srv := httptest.NewUnstartedServer(nil)
	baseURL := "http://" + srv.Listener.Addr().String() + "/files"

	local, err := storage.NewLocalStorage(filesDir, baseURL)
	require.NoError(t, err)

	m := metrics.NewManager()
	hub := sse.NewHub()
	tokens := jwt.NewJWTService(handlerTestSecret, time.Hour)

	svc := workspaceService.NewWorkspaceService(workspaceService.Deps{
		Repository: memory.NewSessionRepository(),
		Ranking:    rankingService.NewRankingService(ranking.DefaultWeights(), nil),
		Annotation: annotationService.NewAnnotationService(nil, 0.5, m, nil),
		Dashboard:  dashboardService.NewDashboardService(10),
		Files:      file.NewFileService(local),
		Tokens:     tokens,
		Hub:        hub,
		Metrics:    m,
	}, workspaceService.Config{Year: 2025, DefaultScore: 3.0, SessionTTL: time.Hour})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv.Config.Handler = NewRouter(
		logger,
		RouterConfig{AllowedOrigins: []string{"http://localhost:3000"}, FilesDir: local.BasePath()},
		tokens,
		NewWorkspaceHandler(svc, UploadLimits{MaxBytes: 1 << 20, MaxFiles: 3}),
		NewEventHandler(svc, hub),
		m.Handler(),
	)
	srv.Start()
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, token string, body io.Reader, contentType string) (*http.Response, envelope) {
	t.Helper()

	req, err := http.NewRequest(method, s.URL+path, body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	} else {
		env.Data = raw
	}
	return resp, env
}

func (s *testServer) createSession(t *testing.T) workspace.CreateSessionResponse {
	t.Helper()

	resp, env := s.do(t, http.MethodPost, "/api/v1/sessions", "", nil, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created workspace.CreateSessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.Token)
	return created
}

func multipartBody(t *testing.T, field string, files map[string]string, order []string) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range order {
		part, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = io.WriteString(part, files[name])
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func sessionPath(id, suffix string) string {
	return "/api/v1/sessions/" + id + suffix
}

func TestSession_TokenScope(t *testing.T) {
	srv := newTestServer(t)
	a := srv.createSession(t)
	b := srv.createSession(t)

	resp, env := srv.do(t, http.MethodGet, sessionPath(a.SessionID, ""), "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, env.Success)

	resp, env = srv.do(t, http.MethodGet, sessionPath(a.SessionID, ""), b.Token, nil, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	resp, env = srv.do(t, http.MethodGet, sessionPath(a.SessionID, ""), "not-a-token", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, env = srv.do(t, http.MethodGet, sessionPath(a.SessionID, "?jwt="+url.QueryEscape(a.Token)), "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var session workspace.SessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.Equal(t, a.SessionID, session.ID)
	assert.Equal(t, 1, session.Employees)
}

func TestSession_ImportAndViews(t *testing.T) {
	srv := newTestServer(t)
	s := srv.createSession(t)

	body, contentType := multipartBody(t, "file", map[string]string{"maret.csv": marchCSV}, []string{"maret.csv"})
	resp, env := srv.do(t, http.MethodPost, sessionPath(s.SessionID, "/imports/replace"), s.Token, body, contentType)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)

	var imported workspace.ImportResponse
	require.NoError(t, json.Unmarshal(env.Data, &imported))
	assert.Equal(t, 1, imported.Employees)

	body, contentType = multipartBody(t, "files", map[string]string{"juli.csv": julyCSV}, []string{"juli.csv"})
	resp, env = srv.do(t, http.MethodPost, sessionPath(s.SessionID, "/imports/append"), s.Token, body, contentType)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &imported))
	assert.Equal(t, 1, imported.Merged)

	resp, env = srv.do(t, http.MethodGet, sessionPath(s.SessionID, "/employees/"+url.PathEscape("Andi Pratama")), s.Token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail struct {
		TotalCompleted int     `json:"total_completed"`
		AverageScore   float64 `json:"average_score"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, 8, detail.TotalCompleted)
	assert.InDelta(t, 3.5, detail.AverageScore, 1e-9)

	resp, env = srv.do(t, http.MethodGet, sessionPath(s.SessionID, "/employees?sort_by=name&page=1&per_page=5"), s.Token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 1, env.Meta.TotalItems)
	assert.Equal(t, 5, env.Meta.Limit)

	resp, _ = srv.do(t, http.MethodGet, sessionPath(s.SessionID, "/employees?sort_by=shoe_size"), s.Token, nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = srv.do(t, http.MethodGet, sessionPath(s.SessionID, "/employees?page=abc"), s.Token, nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = srv.do(t, http.MethodGet, sessionPath(s.SessionID, "/employees/Nobody"), s.Token, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = srv.do(t, http.MethodGet, sessionPath(s.SessionID, "/summary?q=andi"), s.Token, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = srv.do(t, http.MethodGet, sessionPath(s.SessionID, "/charts"), s.Token, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSession_ImportErrors(t *testing.T) {
	srv := newTestServer(t)
	s := srv.createSession(t)

	body, contentType := multipartBody(t, "files", map[string]string{
		"juli.csv":  julyCSV,
		"rusak.csv": "nama;umur\nAndi;30\n",
	}, []string{"juli.csv", "rusak.csv"})
	resp, env := srv.do(t, http.MethodPost, sessionPath(s.SessionID, "/imports/append"), s.Token, body, contentType)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Error.Message, "rusak.csv")

	body, contentType = multipartBody(t, "files", map[string]string{"a.txt": julyCSV}, []string{"a.txt"})
	resp, _ = srv.do(t, http.MethodPost, sessionPath(s.SessionID, "/imports/append"), s.Token, body, contentType)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body, contentType = multipartBody(t, "files", nil, nil)
	resp, _ = srv.do(t, http.MethodPost, sessionPath(s.SessionID, "/imports/append"), s.Token, body, contentType)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// nothing was imported
	resp, env = srv.do(t, http.MethodGet, sessionPath(s.SessionID, ""), s.Token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var session workspace.SessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.Equal(t, 1, session.Employees)
}

func TestSession_RankAndExport(t *testing.T) {
	srv := newTestServer(t)
	s := srv.createSession(t)

	resp, _ := srv.do(t, http.MethodPost, sessionPath(s.SessionID, "/suggestions"), s.Token, nil, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, env := srv.do(t, http.MethodPost, sessionPath(s.SessionID, "/ranking"), s.Token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ranked workspace.RankResponse
	require.NoError(t, json.Unmarshal(env.Data, &ranked))
	require.Len(t, ranked.Ranked, 1)
	assert.Equal(t, "fallback", ranked.NoteSource)

	resp, _ = srv.do(t, http.MethodPost, sessionPath(s.SessionID, "/suggestions"), s.Token, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = srv.do(t, http.MethodPost, sessionPath(s.SessionID, "/insights"), s.Token, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = srv.do(t, http.MethodGet, sessionPath(s.SessionID, "/export.csv"), s.Token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "karyawan_perankingan.csv")
	exported := string(env.Data)
	assert.True(t, strings.HasPrefix(exported, "nama,umur,tempatTinggal"))
	assert.Contains(t, exported, "Yova Pradnyana")

	resp, env = srv.do(t, http.MethodPost, sessionPath(s.SessionID, "/exports"), s.Token, nil, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var archived workspace.ArchiveResponse
	require.NoError(t, json.Unmarshal(env.Data, &archived))

	archiveURL, err := url.Parse(archived.URL)
	require.NoError(t, err)
	resp, env = srv.do(t, http.MethodGet, archiveURL.EscapedPath(), "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, exported, string(env.Data))

	resp, _ = srv.do(t, http.MethodGet, "/files/exports/", "", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSession_DeleteAndMetrics(t *testing.T) {
	srv := newTestServer(t)
	s := srv.createSession(t)

	resp, env := srv.do(t, http.MethodGet, "/metrics", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), "performance_dashboard_active_sessions 1")

	resp, _ = srv.do(t, http.MethodDelete, sessionPath(s.SessionID, ""), s.Token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = srv.do(t, http.MethodGet, sessionPath(s.SessionID, ""), s.Token, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSession_EventStream(t *testing.T) {
	srv := newTestServer(t)
	s := srv.createSession(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+sessionPath(s.SessionID, "/events?jwt="+url.QueryEscape(s.Token)), nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	nextEvent := func() string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if name, ok := strings.CutPrefix(strings.TrimSpace(line), "event: "); ok {
				return name
			}
		}
	}

	assert.Equal(t, "connected", nextEvent())

	reset, _ := srv.do(t, http.MethodPost, sessionPath(s.SessionID, "/reset"), s.Token, nil, "")
	require.Equal(t, http.StatusOK, reset.StatusCode)

	assert.Equal(t, workspaceService.EventSessionReset, nextEvent())
}
