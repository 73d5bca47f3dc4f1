package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/agenthands/graphweave/internal/core"
	"github.com/agenthands/graphweave/internal/core/model"
	gwerrors "github.com/agenthands/graphweave/internal/errors"
)

// Server exposes reconciliation over HTTP so independent extraction runs can
// post their concatenated output.
type Server struct {
	Weaver   *core.Weaver
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger
}

func NewServer(w *core.Weaver, gatherer prometheus.Gatherer) *Server {
	return &Server{Weaver: w, Gatherer: gatherer, Logger: w.Logger}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.Health)
	if s.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/v1")
	v1.POST("/reconciliate", s.Reconciliate)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("handled request")
	}
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type ReconciliateRequest struct {
	Nodes []model.Node `json:"nodes"`
	Edges []model.Edge `json:"edges"`
}

type ReconciliateResponse struct {
	Nodes []model.Node `json:"nodes"`
	Edges []model.Edge `json:"edges"`
}

type ErrorResponse struct {
	Error    string `json:"error"`
	Category string `json:"category,omitempty"`
	ExitCode int    `json:"exit_code,omitempty"`
}

func (s *Server) Reconciliate(c *gin.Context) {
	var req ReconciliateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	}

	g, err := s.Weaver.Reconciliate(model.Graph{Nodes: req.Nodes, Edges: req.Edges})
	if err != nil {
		s.Logger.Error().Err(err).Msg("failed to reconciliate")
		c.JSON(statusOf(err), ErrorResponse{
			Error:    err.Error(),
			Category: string(gwerrors.CategoryOf(err)),
			ExitCode: gwerrors.ExitCode(err),
		})
		return
	}

	resp := ReconciliateResponse{Nodes: g.Nodes, Edges: g.Edges}
	if resp.Nodes == nil {
		resp.Nodes = []model.Node{}
	}
	if resp.Edges == nil {
		resp.Edges = []model.Edge{}
	}
	c.JSON(http.StatusOK, resp)
}

// statusOf maps the error taxonomy to HTTP statuses. Contradictory input is the
// client's fault, anything else is ours.
func statusOf(err error) int {
	switch gwerrors.CategoryOf(err) {
	case gwerrors.CategoryMerge, gwerrors.CategoryData:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
