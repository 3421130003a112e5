// Package server exposes the map page and the REST API over HTTP.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/BearMapper/BearDeterrenceMap/internal/bears"
	"github.com/BearMapper/BearDeterrenceMap/internal/config"
	"github.com/BearMapper/BearDeterrenceMap/internal/db"
	"github.com/BearMapper/BearDeterrenceMap/internal/deterrent"
	"github.com/BearMapper/BearDeterrenceMap/internal/drawings"
)

// Server serves the interactive map and its data API.
type Server struct {
	cfg      *config.Config
	db       *db.DB
	devices  *deterrent.Store
	drawings *drawings.Store
	bears    *bears.Store
	hub      *Hub

	router     chi.Router
	httpServer *http.Server
}

// New creates a server over the given database.
func New(cfg *config.Config, database *db.DB) *Server {
	s := &Server{
		cfg:      cfg,
		db:       database,
		devices:  deterrent.NewStore(database),
		drawings: drawings.NewStore(database),
		bears:    bears.NewStore(database),
		hub:      NewHub(),
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", s.handleMapPage)
	r.Get("/about", s.handleAbout)
	r.Get("/ws", s.hub.Handle)

	r.Route("/api", func(r chi.Router) {
		r.Get("/markers", s.handleListMarkers)
		r.Post("/markers", s.handleSaveMarker)
		r.Delete("/markers", s.handleDeleteAllMarkers)
		r.Delete("/markers/{id}", s.handleDeleteMarker)

		r.Get("/polygons", s.handleListPolygons)
		r.Post("/polygons", s.handleSavePolygon)
		r.Put("/polygons/{id}/name", s.handleRenamePolygon)
		r.Delete("/polygons", s.handleDeleteAllPolygons)
		r.Delete("/polygons/{id}", s.handleDeletePolygon)

		r.Post("/drawings", s.handleSaveDrawings)

		r.Get("/devices", s.handleListDevices)
		r.Get("/devices/nearest", s.handleNearestDevices)
		r.Get("/devices/{id}/images", s.handleDeviceImages)

		r.Get("/bears", s.handleListBears)
		r.Get("/bears/track", s.handleBearTrack)
	})

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured host and port.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("beardmap server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
