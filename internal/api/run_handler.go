// Package api serves fit and search runs over JSON.
package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"gora/adapters/occam"
	"gora/app"
	"gora/domain/core"
	apperrors "gora/internal/errors"
	"gora/ports"
)

// RunRequest carries an OCCAM input file and extra command-style options.
type RunRequest struct {
	Name  string   `json:"name"`
	Input string   `json:"input" binding:"required"`
	Args  []string `json:"args"`
}

// ModelSummary is one reported model.
type ModelSummary struct {
	ID         int                `json:"id"`
	Name       string             `json:"name"`
	Level      int                `json:"level"`
	Progenitor string             `json:"progenitor,omitempty"`
	Stats      map[string]float64 `json:"stats"`
}

// RunResponse is the result of a fit or search.
type RunResponse struct {
	RunID    string         `json:"run_id"`
	Kind     string         `json:"kind"`
	RefModel string         `json:"reference_model"`
	Models   []ModelSummary `json:"models"`
	Report   string         `json:"report"`
}

// RunHandler handles fit, search and run lookup requests
type RunHandler struct {
	fit    *app.FitService
	search *app.SearchService
	repo   ports.RunRepository
	reader *occam.Reader
	hub    *SSEHub
}

// NewRunHandler creates a new run handler. hub may be nil to disable progress streams.
func NewRunHandler(fit *app.FitService, search *app.SearchService, repo ports.RunRepository, reader *occam.Reader, hub *SSEHub) *RunHandler {
	return &RunHandler{fit: fit, search: search, repo: repo, reader: reader, hub: hub}
}

// Register adds the run routes to a router group.
func (h *RunHandler) Register(r gin.IRoutes) {
	r.POST("/fit", h.Fit)
	r.POST("/search", h.Search)
	r.GET("/runs", h.ListRuns)
	r.GET("/runs/:id", h.GetRun)
	if h.hub != nil {
		r.GET("/events", h.hub.HandleSSE)
	}
}

// NewRouter returns a gin engine serving the run routes under /api.
func NewRouter(h *RunHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	h.Register(router.Group("/api"))
	return router
}

func writeError(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error(), "code": apperrors.GetCode(err)})
}

func (h *RunHandler) request(c *gin.Context) (app.Request, bool) {
	var body RunRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, apperrors.InvalidInput("invalid request body", err))
		return app.Request{}, false
	}
	in, err := h.reader.Read(strings.NewReader(body.Input), nil)
	if err != nil {
		writeError(c, apperrors.InvalidInput("invalid input file", err))
		return app.Request{}, false
	}
	if err := in.Options.SetOptions(body.Args); err != nil {
		writeError(c, apperrors.InvalidInput("invalid arguments", err))
		return app.Request{}, false
	}
	return app.Request{Name: body.Name, Data: in.Data, Options: in.Options}, true
}

func (h *RunHandler) run(c *gin.Context, do func(ctx context.Context, req app.Request) (*app.Result, error)) {
	req, ok := h.request(c)
	if !ok {
		return
	}
	progress := NewProgressBroadcaster(h.hub, c.Query("stream"))
	req.Progress = progress.Progress()
	res, err := do(c.Request.Context(), req)
	if err != nil {
		progress.Failed(err)
		writeError(c, err)
		return
	}
	progress.Finished(res.Run.ID.String())
	c.JSON(http.StatusOK, toResponse(res))
}

// Fit fits the models named by the input's short-model options.
func (h *RunHandler) Fit(c *gin.Context) { h.run(c, h.fit.Fit) }

// Search runs a downward search over the input. With a stream query parameter each
// finished level is broadcast to the clients of /events on that stream.
func (h *RunHandler) Search(c *gin.Context) { h.run(c, h.search.Search) }

// ListRuns returns recent runs without their models
func (h *RunHandler) ListRuns(c *gin.Context) {
	limit := 20
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(c, apperrors.InvalidInput("limit must be a non-negative integer", err))
			return
		}
		limit = n
	}
	runs, err := h.repo.ListRuns(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]gin.H, 0, len(runs))
	for _, run := range runs {
		out = append(out, gin.H{
			"id":              run.ID,
			"kind":            run.Kind,
			"input_name":      run.InputName,
			"data_hash":       run.DataHash,
			"reference_model": run.RefModel,
			"created_at":      run.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"runs": out})
}

// GetRun returns a stored run with its models
func (h *RunHandler) GetRun(c *gin.Context) {
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		writeError(c, apperrors.InvalidInput("invalid run ID", err))
		return
	}
	run, err := h.repo.GetRun(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func toResponse(res *app.Result) RunResponse {
	resp := RunResponse{
		RunID:    res.Run.ID.String(),
		Kind:     string(res.Run.Kind),
		RefModel: res.Run.RefModel,
		Report:   res.Run.Report,
		Models:   make([]ModelSummary, 0, len(res.Run.Models)),
	}
	for _, m := range res.Run.Models {
		resp.Models = append(resp.Models, ModelSummary{
			ID:         m.ModelID,
			Name:       m.Name,
			Level:      m.Level,
			Progenitor: m.Progenitor,
			Stats:      m.Stats,
		})
	}
	return resp
}
