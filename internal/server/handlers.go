package server

import (
	"context"
	"errors"
	"net/http"

	"eca-morph/internal/errs"
	"eca-morph/internal/initstate"
	"eca-morph/internal/logging"
	"eca-morph/internal/morph"
	"eca-morph/internal/raster"
	"eca-morph/internal/scan"
	"eca-morph/internal/service"
	"eca-morph/internal/store"

	"github.com/gin-gonic/gin"
)

// GenerateRequest selects a run. Unset fields fall back to the server config.
type GenerateRequest struct {
	Rule       *int     `json:"rule"`
	Size       int      `json:"size"`
	Evolutions *int     `json:"evolutions"`
	InitMethod string   `json:"init_method"`
	Density    *float64 `json:"density"`
	Seed       string   `json:"seed"`
	Centered   *bool    `json:"centered"`
	RandomSeed int64    `json:"random_seed"`
	Palette    string   `json:"palette"`
}

// MorphRequest is a run plus the transforms to apply to its raster.
type MorphRequest struct {
	GenerateRequest
	Ops        []string `json:"ops"`
	Kernel     string   `json:"kernel"`
	Iterations int      `json:"iterations"`
}

// GenerateResponse carries the rendered raster and its segment statistics.
type GenerateResponse struct {
	RunID        string           `json:"run_id"`
	Image        string           `json:"image"`
	Width        int              `json:"width"`
	Height       int              `json:"height"`
	Stats        scan.Stats       `json:"stats"`
	Segments     map[int][][2]int `json:"segments"`
	PersistError string           `json:"persist_error,omitempty"`
}

// MorphResponse carries every transform output keyed by output id.
type MorphResponse struct {
	RunID        string            `json:"run_id"`
	Image        string            `json:"image"`
	Order        []string          `json:"order"`
	Outputs      map[string]string `json:"outputs"`
	MorphError   string            `json:"morph_error,omitempty"`
	PersistError string            `json:"persist_error,omitempty"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Catalog lists the accepted parameter values.
type Catalog struct {
	Rules       []int    `json:"rules"`
	InitMethods []string `json:"init_methods"`
	Palettes    []string `json:"palettes"`
	Formats     []string `json:"formats"`
	Ops         []string `json:"ops"`
	Kernel      string   `json:"default_kernel"`
}

func (s *Server) handleCatalog(c *gin.Context) {
	cat := Catalog{
		Rules:    s.runner.Table().IDs(),
		Palettes: []string{"dark", "light"},
		Kernel:   morph.DefaultKernel().String(),
	}
	for _, m := range initstate.Methods() {
		cat.InitMethods = append(cat.InitMethods, string(m))
	}
	for _, f := range raster.Formats() {
		cat.Formats = append(cat.Formats, string(f))
	}
	for _, op := range morph.Ops() {
		cat.Ops = append(cat.Ops, string(op))
	}
	c.JSON(http.StatusOK, cat)
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}
	plan, err := s.plan(req, nil)
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := s.runner.Run(c.Request.Context(), plan)
	if err != nil {
		writeError(c, err)
		return
	}
	img, err := raster.DataURL(res.Surface)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, GenerateResponse{
		RunID:        res.RunID,
		Image:        img,
		Width:        res.Surface.W,
		Height:       res.Surface.H,
		Stats:        res.Histogram.Stats(),
		Segments:     res.Histogram.Export(),
		PersistError: errString(res.PersistErr),
	})
}

func (s *Server) handleMorph(c *gin.Context) {
	var req MorphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}
	plan, err := s.plan(req.GenerateRequest, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := s.runner.Run(c.Request.Context(), plan)
	if err != nil {
		writeError(c, err)
		return
	}
	img, err := raster.DataURL(res.Surface)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := MorphResponse{
		RunID:        res.RunID,
		Image:        img,
		Outputs:      make(map[string]string, len(res.Outputs)),
		MorphError:   errString(res.MorphErr),
		PersistError: errString(res.PersistErr),
	}
	for _, out := range res.Outputs {
		url, err := raster.DataURL(out.Surface)
		if err != nil {
			writeError(c, err)
			return
		}
		resp.Order = append(resp.Order, out.ID)
		resp.Outputs[out.ID] = url
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleRun(c *gin.Context) {
	replay, err := s.runner.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	img, err := raster.DataURL(raster.Render(replay.Raster, raster.DarkOnes))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": replay.Run, "image": img})
}

// plan overlays req on the server's base config and validates the result.
func (s *Server) plan(req GenerateRequest, mreq *MorphRequest) (service.Plan, error) {
	cfg := s.base
	if req.Rule != nil {
		cfg.Rule = *req.Rule
	}
	if req.Size != 0 {
		cfg.Size = req.Size
	}
	if req.Evolutions != nil {
		cfg.Evolutions = *req.Evolutions
	}
	if req.InitMethod != "" {
		cfg.Init.Method = req.InitMethod
	}
	if req.Density != nil {
		cfg.Init.Density = *req.Density
	}
	if req.Seed != "" {
		cfg.Init.Seed = req.Seed
	}
	if req.Centered != nil {
		cfg.Init.Centered = *req.Centered
	}
	if req.RandomSeed != 0 {
		cfg.RandomSeed = req.RandomSeed
	}
	if req.Palette != "" {
		cfg.Render.Palette = req.Palette
	}
	cfg.Morph.Ops = nil
	if mreq != nil {
		cfg.Morph.Ops = s.base.Morph.Ops
		if len(mreq.Ops) > 0 {
			cfg.Morph.Ops = mreq.Ops
		}
		if mreq.Kernel != "" {
			cfg.Morph.Kernel = mreq.Kernel
		}
		if mreq.Iterations != 0 {
			cfg.Morph.Iterations = mreq.Iterations
		}
	}

	if cfg.Size > 0 && cfg.Evolutions >= 0 && cfg.Evolutions >= s.maxCells/cfg.Size {
		return service.Plan{}, errs.Invalid("size", cfg.Size, "raster exceeds the per-request cell limit")
	}
	ec, err := cfg.EngineConfig()
	if err != nil {
		return service.Plan{}, err
	}
	palette, err := raster.ParsePalette(cfg.Render.Palette)
	if err != nil {
		return service.Plan{}, err
	}
	reqs, err := cfg.MorphRequests()
	if err != nil {
		return service.Plan{}, err
	}
	return service.Plan{
		Engine:   ec,
		Palette:  palette,
		Scan:     scan.Options{Foreground: cfg.Scan.Foreground, Workers: cfg.Scan.Workers},
		Requests: reqs,
	}, nil
}

func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, errs.ErrUnknownRule):
		status, code = http.StatusBadRequest, "UNKNOWN_RULE"
	case errors.Is(err, errs.ErrInvalidParameter):
		status, code = http.StatusBadRequest, "INVALID_PARAMETER"
	case errors.Is(err, store.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, errs.ErrCollaboratorUnavailable):
		status, code = http.StatusServiceUnavailable, "UNAVAILABLE"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusRequestTimeout, "CANCELLED"
	}
	if status >= http.StatusInternalServerError {
		logging.Logger().Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
