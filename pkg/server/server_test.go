package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denysvitali/share-viewer/internal/models"
	"github.com/denysvitali/share-viewer/pkg/config"
	"github.com/denysvitali/share-viewer/pkg/icon"
	"github.com/denysvitali/share-viewer/pkg/server"
	"github.com/denysvitali/share-viewer/pkg/theme"
)

const listingBody = `{
	"code": 200,
	"data": [
		{"type": "folder", "name": "docs", "items": [
			{"type": "file", "name": "report.pdf", "size": "1 MB", "DownloadURL": "https://cdn.example.com/report"}
		]},
		{"type": "folder", "name": "empty", "items": []},
		{"type": "file", "name": "<script>&\"'.js", "size": "2 KB", "DownloadURL": "https://cdn.example.com/x"}
	]
}`

// lookupService fakes the remote lookup endpoint keyed by share key.
func lookupService(t *testing.T) *httptest.Server {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("key") {
		case "AbC123-_":
			_, _ = io.WriteString(w, listingBody)
		case "empty":
			_, _ = io.WriteString(w, `{"code":200,"data":[]}`)
		case "locked":
			if r.URL.Query().Get("pwd") == "right" {
				_, _ = io.WriteString(w, `{"code":200,"data":[]}`)
				return
			}
			_, _ = io.WriteString(w, `{"code":403,"message":"wrong password"}`)
		default:
			_, _ = io.WriteString(w, `{"code":404,"msg":"share not found"}`)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func setupTestServer(t *testing.T) (*server.Server, *theme.Controller) {
	ts := lookupService(t)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:          "127.0.0.1",
			Port:          8080,
			EnableMetrics: true,
		},
		Lookup: config.LookupConfig{
			Endpoint: ts.URL + "/123pan/api/",
		},
		Telemetry: config.TelemetryConfig{
			Enabled: false,
		},
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	themes := theme.NewController(theme.NewMemoryStore(), theme.SystemPreferenceFunc(func() bool { return false }), logger)
	themes.Initialize()

	srv, err := server.New(cfg, logger, themes)
	require.NoError(t, err, "Failed to create server")
	return srv, themes
}

func serve(srv *server.Server, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rr, req)
	return rr
}

func decodeLookup(t *testing.T, rr *httptest.ResponseRecorder) models.LookupResultResponse {
	var resp models.LookupResultResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), "Failed to unmarshal response")
	return resp
}

func TestHandleAlive_Success(t *testing.T) {
	srv, _ := setupTestServer(t)

	rr := serve(srv, httptest.NewRequest(http.MethodGet, "/alive", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

func TestHandleServerInfo_Success(t *testing.T) {
	srv, _ := setupTestServer(t)

	serve(srv, httptest.NewRequest(http.MethodGet, "/api/lookup?url=empty", nil))
	rr := serve(srv, httptest.NewRequest(http.MethodGet, "/server_info", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.ServerInfoResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.GreaterOrEqual(t, resp.Uptime, 0.0)
	assert.GreaterOrEqual(t, resp.IdleTime, 0.0)
	assert.Equal(t, uint64(1), resp.Lookups)
	assert.GreaterOrEqual(t, resp.Resources.CPUCount, 1)
}

func TestHandleLookup_Success(t *testing.T) {
	srv, _ := setupTestServer(t)

	target := "/api/lookup?" + url.Values{"url": {"https://example.com/s/AbC123-_?pwd=x"}}.Encode()
	rr := serve(srv, httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decodeLookup(t, rr)
	assert.Equal(t, "AbC123-_", resp.Key)
	assert.True(t, resp.Panels.Result)
	assert.False(t, resp.Panels.Error)
	assert.False(t, resp.Panels.Loading)
	assert.Equal(t, 2, resp.Folders)
	assert.Equal(t, 2, resp.Files)

	require.Len(t, resp.Tree, 3)
	assert.True(t, resp.Tree[0].Folder)
	assert.False(t, resp.Tree[0].Expanded)
	assert.Equal(t, "document", resp.Tree[0].Children[0].Category)
	assert.Equal(t, "code", resp.Tree[2].Category)
}

func TestHandleLookup_EmptyListing(t *testing.T) {
	srv, _ := setupTestServer(t)

	rr := serve(srv, httptest.NewRequest(http.MethodGet, "/api/lookup?url=empty", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decodeLookup(t, rr)
	assert.True(t, resp.Panels.Result)
	assert.False(t, resp.Panels.Error)
	assert.Empty(t, resp.Tree)
}

func TestHandleLookup_WrongPassword(t *testing.T) {
	srv, _ := setupTestServer(t)

	rr := serve(srv, httptest.NewRequest(http.MethodGet, "/api/lookup?url=locked&pwd=nope", nil))
	assert.Equal(t, http.StatusBadGateway, rr.Code)

	resp := decodeLookup(t, rr)
	assert.True(t, resp.Panels.Error)
	assert.Equal(t, "wrong password", resp.Panels.ErrorText)
	assert.False(t, resp.Panels.Result)

	rr = serve(srv, httptest.NewRequest(http.MethodGet, "/api/lookup?url=locked&pwd=right", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHandleLookup_MissingLink(t *testing.T) {
	srv, _ := setupTestServer(t)

	rr := serve(srv, httptest.NewRequest(http.MethodGet, "/api/lookup?url=%20%20", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	resp := decodeLookup(t, rr)
	assert.True(t, resp.Panels.Error)
	assert.NotEmpty(t, resp.Panels.ErrorText)
	assert.False(t, resp.Panels.Result)
}

func TestHandleIndex_EmptyForm(t *testing.T) {
	srv, _ := setupTestServer(t)

	rr := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, `id="parse-form"`)
	assert.Contains(t, body, `data-theme="light"`)
	assert.Contains(t, body, "fa-moon")
	assert.Contains(t, body, `id="error-message" class="panel panel-error d-none"`)
	assert.Contains(t, body, `id="result-container" class="panel d-none"`)
}

func TestHandleIndex_PostRendersTree(t *testing.T) {
	srv, _ := setupTestServer(t)

	form := url.Values{"url": {"https://example.com/s/AbC123-_"}, "pwd": {""}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr := serve(srv, req)
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, `id="result-container" class="panel"`)
	assert.Contains(t, body, `id="error-message" class="panel panel-error d-none"`)
	assert.Contains(t, body, "report.pdf")
	assert.Contains(t, body, "Empty folder")
	assert.Contains(t, body, "2 folders, 2 files")
	assert.NotContains(t, body, "<script>&")
	assert.Contains(t, body, "&lt;script&gt;&amp;&#34;&#39;.js")
	assert.Contains(t, body, `<i class="fas fa-download" aria-hidden="true"></i> <span class="download-label">Download</span></a>`)
}

func TestHandleIndex_PasswordFieldIsMasked(t *testing.T) {
	srv, _ := setupTestServer(t)

	rr := serve(srv, httptest.NewRequest(http.MethodGet, "/?url=locked&pwd=secret", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, `<input type="password" id="share-pwd" name="pwd"`)
	assert.NotContains(t, body, `type="text" id="share-pwd"`)
}

func TestHandleIndex_ShowsEmptyPlaceholder(t *testing.T) {
	srv, _ := setupTestServer(t)

	rr := serve(srv, httptest.NewRequest(http.MethodGet, "/?url=empty", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, "No files found")
	assert.Contains(t, body, `id="error-message" class="panel panel-error d-none"`)
}

func TestHandleIndex_ShowsError(t *testing.T) {
	srv, _ := setupTestServer(t)

	rr := serve(srv, httptest.NewRequest(http.MethodGet, "/?url=locked&pwd=bad", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, `<span id="error-text">wrong password</span>`)
	assert.Contains(t, body, `id="result-container" class="panel d-none"`)
}

func TestThemeEndpoints(t *testing.T) {
	srv, themes := setupTestServer(t)

	rr := serve(srv, httptest.NewRequest(http.MethodGet, "/api/theme", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"theme":"light","icon":"fa-moon","persisted":false}`, rr.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/api/theme/system", strings.NewReader(`{"dark":true}`))
	req.Header.Set("Content-Type", "application/json")
	rr = serve(srv, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"theme":"dark","icon":"fa-sun","persisted":false}`, rr.Body.String())

	rr = serve(srv, httptest.NewRequest(http.MethodPost, "/api/theme/toggle", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"theme":"light","icon":"fa-moon","persisted":true}`, rr.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/api/theme/system", strings.NewReader(`{"dark":true}`))
	req.Header.Set("Content-Type", "application/json")
	rr = serve(srv, req)
	assert.JSONEq(t, `{"theme":"light","icon":"fa-moon","persisted":true}`, rr.Body.String())
	assert.Equal(t, theme.Light, themes.Current())
}

func TestThemeSystem_InvalidPayload(t *testing.T) {
	srv, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/theme/system", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rr := serve(srv, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStaticAssets(t *testing.T) {
	srv, _ := setupTestServer(t)

	rr := serve(srv, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "collapse-all-btn")
	assert.Contains(t, rr.Body.String(), "reportSystemTheme(media.matches)")
}

func TestStaticAssets_StylesheetDefinesEveryIcon(t *testing.T) {
	srv, _ := setupTestServer(t)

	rr := serve(srv, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	css := rr.Body.String()

	classes := []string{"fa-folder", "fa-folder-open", "fa-chevron-right", "fa-chevron-down", "fa-moon", "fa-sun", "fa-download"}
	for _, c := range icon.Categories() {
		classes = append(classes, strings.TrimPrefix(c.IconClass(), "fas "))
	}
	for _, class := range classes {
		assert.Contains(t, css, "."+class+"::before { content:", class)
	}
}

func TestHandleIndex_FollowsReportedSystemTheme(t *testing.T) {
	srv, _ := setupTestServer(t)

	rr := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `data-theme="light"`)

	req := httptest.NewRequest(http.MethodPost, "/api/theme/system", strings.NewReader(`{"dark":true}`))
	req.Header.Set("Content-Type", "application/json")
	rr = serve(srv, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"theme":"dark","icon":"fa-sun","persisted":false}`, rr.Body.String())

	rr = serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `data-theme="dark"`)
	assert.Contains(t, rr.Body.String(), `<i class="fas fa-sun" aria-hidden="true">`)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := setupTestServer(t)

	serve(srv, httptest.NewRequest(http.MethodGet, "/alive", nil))
	rr := serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "share_viewer_http_requests_total")
}
