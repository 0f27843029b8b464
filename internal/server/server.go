package server

import (
	"log/slog"
	"net/http"

	"fruitdash/internal/handlers"
	"fruitdash/internal/services"
)

type Server struct {
	dataset       *services.Dataset
	mux           *http.ServeMux
	logger        *slog.Logger
	apiHandlers   *handlers.APIHandlers
	sseHandlers   *handlers.SSEHandlers
	chartHandlers *handlers.ChartHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(dataset *services.Dataset, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		dataset:       dataset,
		mux:           http.NewServeMux(),
		logger:        logger,
		apiHandlers:   handlers.NewAPIHandlers(dataset, logger),
		sseHandlers:   handlers.NewSSEHandlers(dataset, logger),
		chartHandlers: handlers.NewChartHandlers(dataset, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard page and operational endpoints
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API, one endpoint per analysis page
	s.mux.HandleFunc("GET /api/options", s.apiHandlers.HandleOptions)
	s.mux.HandleFunc("GET /api/overview", s.apiHandlers.HandleOverview)
	s.mux.HandleFunc("GET /api/transport", s.apiHandlers.HandleTransport)
	s.mux.HandleFunc("GET /api/importers", s.apiHandlers.HandleImporters)
	s.mux.HandleFunc("GET /api/exporters", s.apiHandlers.HandleExporters)
	s.mux.HandleFunc("GET /api/ports", s.apiHandlers.HandlePorts)
	s.mux.HandleFunc("GET /api/timeline", s.apiHandlers.HandleTimeline)
	s.mux.HandleFunc("GET /api/shipments", s.apiHandlers.HandleShipments)
	s.mux.HandleFunc("GET /api/export", s.apiHandlers.HandleExport)

	// Server-rendered chart images
	s.mux.HandleFunc("GET /charts/transport.png", s.chartHandlers.HandleTransportChart)
	s.mux.HandleFunc("GET /charts/importers.png", s.chartHandlers.HandleImportersChart)
	s.mux.HandleFunc("GET /charts/exporters.png", s.chartHandlers.HandleExportersChart)
	s.mux.HandleFunc("GET /charts/ports.png", s.chartHandlers.HandlePortsChart)
	s.mux.HandleFunc("GET /charts/seasons.png", s.chartHandlers.HandleSeasonsChart)
	s.mux.HandleFunc("GET /charts/timeline.png", s.chartHandlers.HandleTimelineChart)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/refresh", s.sseHandlers.HandleRefresh)
	s.mux.HandleFunc("GET /sse/shipments", s.sseHandlers.HandleShipments)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
