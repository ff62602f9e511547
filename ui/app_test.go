package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gora/domain/core"
	"gora/internal"
	"gora/internal/testkit"
	"gora/models"
)

const sampleReport = "### Model AB:C\n\n| Statistic | Value |\n|---|---|\n| lr | 12.5 |\n"

func newTestApp(t *testing.T) (*App, *models.Run) {
	t.Helper()
	repo := testkit.NewInMemoryRunRepository()
	run := &models.Run{
		ID:        core.NewRunID(),
		Kind:      core.RunFit,
		InputName: "abc.in",
		RefModel:  "A:B:C",
		Report:    sampleReport,
	}
	require.NoError(t, repo.SaveRun(context.Background(), run))

	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("api " + r.URL.Path))
	})
	app, err := NewApp(repo, api, internal.NewLogger(internal.LogLevelError))
	require.NoError(t, err)
	return app, run
}

func serve(app *App, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestApp_Index(t *testing.T) {
	app, run := newTestApp(t)
	w := serve(app, "/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "abc.in")
	assert.Contains(t, body, "/runs/"+run.ID.String())
	assert.Contains(t, body, "A:B:C")
}

func TestApp_Index_Empty(t *testing.T) {
	app, err := NewApp(testkit.NewInMemoryRunRepository(), nil, internal.NewLogger(internal.LogLevelError))
	require.NoError(t, err)
	w := serve(app, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No runs yet")
}

func TestApp_Run(t *testing.T) {
	app, run := newTestApp(t)

	w := serve(app, "/runs/"+run.ID.String())
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<h3")
	assert.Contains(t, body, "<table>")
	assert.Contains(t, body, "12.5")

	w = serve(app, "/runs/"+run.ID.String()+"/report.md")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sampleReport, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), run.ID.String()+".md")

	assert.Equal(t, http.StatusBadRequest, serve(app, "/runs/not-a-uuid").Code)
	assert.Equal(t, http.StatusNotFound, serve(app, "/runs/"+core.NewRunID().String()).Code)
}

func TestApp_Mounts(t *testing.T) {
	app, _ := newTestApp(t)

	w := serve(app, "/api/runs")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "api /api/runs", w.Body.String())

	w = serve(app, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")

	w = serve(app, "/static/style.css")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "border-collapse")

	w = serve(app, "/healthz")
	assert.Equal(t, "ok", w.Body.String())
}
