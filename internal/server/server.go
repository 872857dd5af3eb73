// Package server exposes the keyhole engine over HTTP. Query parameters
// carry the four dimensions in mm; responses are the computed layout as
// JSON or the generated documents as downloads.
package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/chazu/keyhole/pkg/engine"
	"github.com/chazu/keyhole/pkg/export"
	"github.com/chazu/keyhole/pkg/keyhole"
)

// Config holds server settings.
type Config struct {
	Tolerances keyhole.Tolerances
	PNG        export.PNGOptions
	// AccessLog enables gin's request logger.
	AccessLog bool
	// MaxScriptBytes bounds the body of batch requests.
	MaxScriptBytes int64
}

// DefaultConfig returns default tolerances, 10 px/mm previews and a
// 64 KiB script limit.
func DefaultConfig() Config {
	return Config{
		Tolerances:     keyhole.DefaultTolerances(),
		PNG:            export.DefaultPNGOptions(),
		AccessLog:      true,
		MaxScriptBytes: 64 << 10,
	}
}

// DimensionsQuery is the query string of every slot request.
type DimensionsQuery struct {
	FrameWidth        float64 `form:"frame_width" binding:"required"`
	FrameHeight       float64 `form:"frame_height" binding:"required"`
	NailHeadDiameter  float64 `form:"nail_head_diameter" binding:"required"`
	NailShankDiameter float64 `form:"nail_shank_diameter" binding:"required"`
}

func (q DimensionsQuery) dimensions() keyhole.Dimensions {
	return keyhole.Dimensions{
		FrameWidth:        q.FrameWidth,
		FrameHeight:       q.FrameHeight,
		NailHeadDiameter:  q.NailHeadDiameter,
		NailShankDiameter: q.NailShankDiameter,
	}
}

// LayoutResponse is the JSON body of GET /api/keyhole.
type LayoutResponse struct {
	Filename string          `json:"filename"`
	Layout   *keyhole.Layout `json:"layout"`
	ShelfD   string          `json:"shelf_d"`
	CutD     string          `json:"cut_d"`
}

// JobSummary describes one job of a batch.
type JobSummary struct {
	Name     string          `json:"name"`
	Filename string          `json:"filename"`
	Derived  keyhole.Derived `json:"derived"`
}

// Server handles keyhole requests.
type Server struct {
	cfg     Config
	keys    *keyhole.Engine
	scripts *engine.Engine
}

// New returns a server using cfg.
func New(cfg Config) (*Server, error) {
	keys, err := keyhole.New(cfg.Tolerances)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	return &Server{cfg: cfg, keys: keys, scripts: engine.NewEngine()}, nil
}

// Router builds the gin engine serving all routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if s.cfg.AccessLog {
		r.Use(gin.Logger())
	}

	r.GET("/healthz", s.health)

	api := r.Group("/api")
	{
		api.GET("/keyhole", s.layout)
		api.GET("/keyhole.svg", s.svg)
		api.GET("/keyhole.png", s.png)
		api.POST("/batch", s.batch)
	}
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// compute binds the query and runs the engine. On failure it has already
// written the error response.
func (s *Server) compute(c *gin.Context) (*keyhole.Layout, bool) {
	var q DimensionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	l, err := s.keys.Compute(q.dimensions())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return nil, false
	}
	return l, true
}

// statusFor maps engine errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, keyhole.ErrInvalidDimension):
		return http.StatusBadRequest
	case errors.Is(err, keyhole.ErrDegenerateGeometry):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) layout(c *gin.Context) {
	l, ok := s.compute(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, LayoutResponse{
		Filename: export.Filename(l.Dimensions, "svg"),
		Layout:   l,
		ShelfD:   l.Shelf.Data(6),
		CutD:     l.Cut.Data(6),
	})
}

// attach sends body as a download named name.
func attach(c *gin.Context, name, contentType string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, contentType, body)
}

func (s *Server) svg(c *gin.Context) {
	l, ok := s.compute(c)
	if !ok {
		return
	}
	body, err := export.SVG(l)
	if err != nil {
		log.Printf("server: svg: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	attach(c, export.Filename(l.Dimensions, "svg"), "image/svg+xml", body)
}

func (s *Server) png(c *gin.Context) {
	l, ok := s.compute(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WritePNG(&buf, l, s.cfg.PNG); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, export.ErrRasterTooLarge) {
			status = http.StatusRequestEntityTooLarge
		} else {
			log.Printf("server: png: %v", err)
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	attach(c, export.Filename(l.Dimensions, "png"), "image/png", buf.Bytes())
}

// batch evaluates the request body as a batch script and summarises the
// jobs it declares.
func (s *Server) batch(c *gin.Context) {
	src, err := io.ReadAll(io.LimitReader(c.Request.Body, s.cfg.MaxScriptBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if int64(len(src)) > s.cfg.MaxScriptBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "script too large"})
		return
	}

	b, evalErrs, err := s.scripts.Evaluate(string(src))
	switch {
	case err != nil:
		log.Printf("server: batch: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case len(evalErrs) > 0:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": evalErrs})
		return
	}

	jobs := lo.Map(b.Jobs, func(j engine.Job, _ int) JobSummary {
		return JobSummary{
			Name:     j.Name,
			Filename: export.Filename(j.Layout.Dimensions, "svg"),
			Derived:  j.Layout.Derived,
		}
	})
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}
