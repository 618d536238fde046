package ui

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"minevision/adapters/excel"
	"minevision/app"
	"minevision/domain/agg"
	"minevision/domain/core"
	"minevision/domain/event"
	"minevision/domain/schema"
	"minevision/internal/profiling"
)

// App is the headless JSON API: the same analytics surface as the dashboard
// server, without templates. Used by cmd/api for integrations that consume
// the aggregates directly.
type App struct {
	router   *chi.Mux
	pipeline *app.PipelineService
	chat     *app.ChatService
	port     string
}

// AppConfig holds headless API configuration
type AppConfig struct {
	Port string
}

// NewApp creates a new headless API application
func NewApp(config AppConfig, pipeline *app.PipelineService, chat *app.ChatService) *App {
	a := &App{
		router:   chi.NewRouter(),
		pipeline: pipeline,
		chat:     chat,
		port:     config.Port,
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/api/status", a.handleStatus)
	a.router.Get("/api/summary", a.handleSummary)
	a.router.Get("/api/aggregate", a.handleAggregate)
	a.router.Get("/api/insights", a.handleInsights)
	a.router.Get("/api/profile", a.handleSpeedProfile)
	a.router.Get("/api/export.csv", a.handleExportCSV)

	a.router.Post("/api/chat/session", a.handleChatSession)
	a.router.Post("/api/chat", a.handleChat)
	a.router.Get("/api/chat/history", a.handleChatHistory)
}

// Start starts the HTTP server
func (a *App) Start() error {
	addr := ":" + a.port
	log.Printf("Starting MineVision API server on %s", addr)
	return http.ListenAndServe(addr, a.router)
}

// Router exposes the underlying handler for tests.
func (a *App) Router() http.Handler {
	return a.router
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("JSON encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (a *App) view(w http.ResponseWriter, r *http.Request) (*app.View, bool) {
	view, err := a.pipeline.View(parseFilterQuery(r.URL.Query()))
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return nil, false
	}
	return view, true
}

func (a *App) handleStatus(w http.ResponseWriter, r *http.Request) {
	table, err := a.pipeline.Load()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	roles := map[string]string{}
	for _, role := range schema.Roles {
		if table.Roles.Bound(role) {
			roles[string(role)] = table.Roles.Column(role)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"source_file": a.pipeline.SourceFile(),
		"fingerprint": table.Fingerprint.Short(),
		"records":     table.Len(),
		"columns":     table.Headers,
		"roles":       roles,
	})
}

func (a *App) handleSummary(w http.ResponseWriter, r *http.Request) {
	view, ok := a.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, app.Summarize(view.Records))
}

func (a *App) handleAggregate(w http.ResponseWriter, r *http.Request) {
	facet, ok := event.ParseFacet(r.URL.Query().Get("facet"))
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown facet %q", r.URL.Query().Get("facet")))
		return
	}
	view, ok := a.view(w, r)
	if !ok {
		return
	}

	if by := r.URL.Query().Get("by"); by != "" {
		second, ok := event.ParseFacet(by)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown facet %q", by))
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"facet": facet,
			"by":    second,
			"cells": agg.GroupCount2(view.Records, facet, second),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"facet":   facet,
		"total":   len(view.Records),
		"buckets": agg.GroupCount(view.Records, facet),
	})
}

func (a *App) handleInsights(w http.ResponseWriter, r *http.Request) {
	view, ok := a.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"insights": app.GenerateInsights(view),
	})
}

func (a *App) handleSpeedProfile(w http.ResponseWriter, r *http.Request) {
	view, ok := a.view(w, r)
	if !ok {
		return
	}
	profile, ok := profiling.AnalyzeSpeeds(view.Records)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{"available": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"available": true, "profile": profile})
}

func (a *App) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	view, ok := a.view(w, r)
	if !ok {
		return
	}

	filename := fmt.Sprintf("fatigue_alerts_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := excel.ExportCSV(w, view.Table.Headers, view.Records); err != nil {
		log.Printf("CSV export error: %v", err)
	}
}

func (a *App) handleChatSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"session_id": a.chat.NewSession().String()})
}

func (a *App) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" || req.Question == "" {
		writeError(w, http.StatusBadRequest, "session_id and question are required")
		return
	}

	sessionID, err := core.ParseSessionID(req.SessionID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	answer, err := a.chat.Ask(sessionID, req.Question, parseFilterQuery(r.URL.Query()))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"answer": answer,
		"html":   renderMarkdown(answer),
	})
}

func (a *App) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	sessionID, err := core.ParseSessionID(r.URL.Query().Get("session_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	history, err := a.chat.History(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": history})
}
