// Package api exposes the registry, index actions and document mapping over HTTP.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/document"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/logger"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/registry"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/service"
)

// Handler handles HTTP requests for the elastic-tool API
type Handler struct {
	registry        *registry.Registry
	indexService    *service.IndexService
	documentService *service.DocumentService
	logger          logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(
	reg *registry.Registry, indexService *service.IndexService,
	documentService *service.DocumentService, log logger.Logger,
) *Handler {
	return &Handler{
		registry:        reg,
		indexService:    indexService,
		documentService: documentService,
		logger:          log,
	}
}

// GetRegistry handles GET /api/v1/registry
func (h *Handler) GetRegistry(c *gin.Context) {
	resp := RegistryResponse{
		Connections: []ConnectionInfo{},
		Schemas:     []SchemaInfo{},
		Indices:     []IndexInfo{},
	}
	for _, conn := range h.registry.Connections() {
		resp.Connections = append(resp.Connections, ConnectionInfo{ID: conn.ID(), Hosts: conn.Hosts()})
	}
	for _, s := range h.registry.Schemas() {
		resp.Schemas = append(resp.Schemas, SchemaInfo{
			ID:      s.ID,
			Name:    s.Name,
			Version: s.Version,
			Fields:  s.Mapper().Table().Len(),
			Aliases: s.Mapper().Table().AliasCount(),
		})
	}
	for _, idx := range h.registry.Indices() {
		resp.Indices = append(resp.Indices, newIndexInfo(idx))
	}
	c.JSON(http.StatusOK, resp)
}

// ListIndices handles GET /api/v1/indices
func (h *Handler) ListIndices(c *gin.Context) {
	indices := h.registry.InGroup(c.Query("group"))

	infos := make([]IndexInfo, 0, len(indices))
	for _, idx := range indices {
		infos = append(infos, newIndexInfo(idx))
	}
	c.JSON(http.StatusOK, gin.H{
		"indices": infos,
		"count":   len(infos),
	})
}

// GetIndexStats handles GET /api/v1/indices/:id/stats
func (h *Handler) GetIndexStats(c *gin.Context) {
	sel, ok := h.selectIndices(c)
	if !ok {
		return
	}

	rows := h.indexService.Stats(c.Request.Context(), sel.Indices)
	out := make([]StatsResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, newStatsResponse(row))
	}
	c.JSON(http.StatusOK, gin.H{"stats": out, "count": len(out)})
}

// RunAction handles POST /api/v1/indices/:id/actions/:action
func (h *Handler) RunAction(c *gin.Context) {
	action, err := service.ParseAction(c.Param("action"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req ActionRequest
	if c.Request.ContentLength != 0 {
		if err = c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if len(req.Include) > 0 && !action.AcceptsInclude() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action " + string(action) + " does not accept include"})
		return
	}

	sel, ok := h.selectIndices(c)
	if !ok {
		return
	}

	log := logger.FromContext(c.Request.Context())
	log.Info("Running index action",
		logger.String("action", string(action)),
		logger.Int("indices", len(sel.Indices)),
	)

	reports, err := h.indexService.Run(c.Request.Context(), action, sel.Indices,
		service.Options{Include: req.Include, Force: req.Force}, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out := make([]ReportResponse, 0, len(reports))
	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
		}
		out = append(out, newReportResponse(r))
	}

	status := http.StatusOK
	if failed > 0 {
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"action": action, "reports": out, "failed": failed})
}

// MapDocument handles POST /api/v1/schemas/:id/map
func (h *Handler) MapDocument(c *gin.Context) {
	doc, ok := bindDocument(c)
	if !ok {
		return
	}

	mapped, stats, err := h.documentService.Map(c.Param("id"), doc)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, DocumentResponse{Document: mapped, Pruned: stats.Pruned})
}

// RefreshSchema handles POST /api/v1/schemas/:id/refresh
func (h *Handler) RefreshSchema(c *gin.Context) {
	paths, err := h.documentService.Refresh(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schema": c.Param("id"), "paths": paths})
}

// PutDocument handles PUT /api/v1/indices/:id/documents/:doc_id
func (h *Handler) PutDocument(c *gin.Context) {
	doc, ok := bindDocument(c)
	if !ok {
		return
	}

	refresh, _ := strconv.ParseBool(c.DefaultQuery("refresh", "false"))
	result, err := h.documentService.Index(c.Request.Context(), c.Param("id"), c.Param("doc_id"), doc, refresh)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, DocumentResponse{ID: result.ID, Document: result.Document, Pruned: result.Mapping.Pruned})
}

// selectIndices resolves the :id parameter, a comma-separated list or "all",
// within the optional group query parameter. It writes the error response
// and returns false when nothing usable was selected.
func (h *Handler) selectIndices(c *gin.Context) (registry.Selection, bool) {
	sel := h.registry.Select(registry.ParseIDs(c.Param("id")), c.Query("group"))
	if len(sel.NotFound) > 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "index not found", "details": sel.NotFound})
		return sel, false
	}
	if len(sel.Indices) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No index found."})
		return sel, false
	}
	return sel, true
}

func bindDocument(c *gin.Context) (*document.Map, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	doc, err := document.ParseMap(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return doc, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var esErr *elasticsearch.ResponseError
	switch {
	case errors.Is(err, registry.ErrSchemaNotFound), errors.Is(err, registry.ErrIndexNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &esErr):
		logger.FromContext(c.Request.Context()).Error("Elasticsearch request failed", logger.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		logger.FromContext(c.Request.Context()).Error("Request failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
