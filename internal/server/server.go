// Package server is the thin HTTP presentation shell over the extraction
// pipeline: upload a PDF, get back the export artifact and the validation
// summary. All real logic lives in the pipeline packages.
package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MadsenMartin/extractorCasaSergio/internal/common"
	"github.com/MadsenMartin/extractorCasaSergio/internal/export"
	"github.com/MadsenMartin/extractorCasaSergio/internal/history"
	"github.com/MadsenMartin/extractorCasaSergio/internal/pipeline"
)

type Server struct {
	engine  *gin.Engine
	proc    *pipeline.Processor
	history *history.Store // optional; nil disables run recording
	cfg     common.ServerConfig
	logger  *slog.Logger
}

func New(proc *pipeline.Processor, hist *history.Store, cfg common.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		proc:    proc,
		history: hist,
		cfg:     cfg,
		logger:  logger,
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	if cfg.AccessToken != "" {
		api.Use(AccessTokenRequired(cfg.AccessToken))
	}
	api.POST("/extract", s.handleExtract)
	api.GET("/history", s.handleHistory)

	s.engine = r
	return s
}

func (s *Server) Run() error {
	s.logger.Info("server.listen", "addr", s.cfg.Addr)
	return s.engine.Run(s.cfg.Addr)
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// handleExtract accepts a multipart PDF upload and runs one pipeline
// invocation. `?format=csv` (default) and `?format=xlsx` stream the artifact
// as an attachment; `?format=json` returns the parsed order plus the
// validation verdict for the caller to render.
func (s *Server) handleExtract(c *gin.Context) {
	if s.cfg.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'file' upload"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open upload"})
		return
	}
	defer f.Close()
	pdfBytes, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
		return
	}

	res, err := s.proc.Process(c.Request.Context(), pdfBytes)
	if err != nil {
		status := statusForError(err)
		s.logger.Error("server.extract.failed", "status", status, "error", err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	s.recordRun(c, res)

	switch strings.ToLower(c.DefaultQuery("format", "csv")) {
	case "json":
		c.JSON(http.StatusOK, gin.H{
			"order":      res.Order,
			"validation": res.Validation,
			"item_count": len(res.Order.Items),
			"filename":   res.Filename,
			"elapsed_ms": res.Elapsed.Milliseconds(),
		})
	case "xlsx":
		xlsxBytes, err := export.OrderXLSX(res.Order, res.Validation)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "render xlsx: " + err.Error()})
			return
		}
		name := export.Filename(res.Order, "xlsx")
		c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", xlsxBytes)
	default:
		c.Header("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
		c.Header("X-Validation-Ok", strconv.FormatBool(res.Validation.OK()))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", res.CSV)
	}
}

func (s *Server) handleHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history disabled"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	runs, err := s.history.ListRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) recordRun(c *gin.Context, res *pipeline.Result) {
	if s.history == nil {
		return
	}
	_, err := s.history.Record(c.Request.Context(), history.Run{
		OrderNumber:         res.Order.OrderNumber,
		ItemCount:           len(res.Order.Items),
		TotalsMatch:         res.Validation.TotalsMatch,
		QuantitiesMatch:     res.Validation.QuantitiesMatch,
		ComputedTotalSum:    res.Validation.ComputedTotalSum,
		ComputedQuantitySum: res.Validation.ComputedQuantitySum,
		Message:             res.Validation.Message,
		ElapsedMS:           res.Elapsed.Milliseconds(),
	})
	if err != nil {
		// History is best-effort; never fail the extraction over it.
		s.logger.Warn("server.history.record_failed", "error", err)
	}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrDocumentOpen):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrRemoteService), errors.Is(err, common.ErrMalformedExtraction):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
