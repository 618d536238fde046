package ui

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"minevision/adapters/excel"
	"minevision/app"
	"minevision/domain/agg"
	"minevision/domain/core"
	"minevision/domain/event"
	"minevision/domain/schema"
	"minevision/internal/profiling"
)

// handleIndex renders the dashboard page: KPI strip, hourly distribution,
// top operators, and insight cards, all scoped to the request's filters.
func (s *Server) handleIndex(c *gin.Context) {
	view, err := s.pipeline.View(parseFilterQuery(c.Request.URL.Query()))
	if err != nil {
		s.renderTemplate(c, "index.html", gin.H{
			"Error":      err.Error(),
			"SourceFile": s.pipeline.SourceFile(),
		})
		return
	}

	var insightHTML []template.HTML
	for _, insight := range app.GenerateInsights(view) {
		insightHTML = append(insightHTML, template.HTML(renderMarkdown(insight.Text)))
	}

	s.renderTemplate(c, "index.html", gin.H{
		"SourceFile":    s.pipeline.SourceFile(),
		"Summary":       app.Summarize(view.Records),
		"Insights":      insightHTML,
		"HourBuckets":   agg.GroupCount(view.Records, event.FacetHour),
		"TopOperators":  agg.TopN(view.Records, event.FacetOperator, s.config.Data.TopN),
		"TopAssets":     agg.TopN(view.Records, event.FacetFleet, s.config.Data.TopN),
		"TierBuckets":   agg.GroupCount(view.Records, event.FacetRiskTier),
		"HasThresholds": view.HasThresholds,
		"Thresholds":    view.Thresholds,
		"Filter":        view.Filter,
	})
}

// handleStatus reports what the resolver bound and how many records loaded.
func (s *Server) handleStatus(c *gin.Context) {
	table, err := s.pipeline.Load()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	roles := gin.H{}
	for _, role := range schema.Roles {
		if table.Roles.Bound(role) {
			roles[string(role)] = table.Roles.Column(role)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"source_file": s.pipeline.SourceFile(),
		"fingerprint": table.Fingerprint.Short(),
		"records":     table.Len(),
		"columns":     table.Headers,
		"roles":       roles,
	})
}

func (s *Server) handleSummary(c *gin.Context) {
	view, ok := s.viewOrFail(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, app.Summarize(view.Records))
}

// handleAggregate groups the working set along one facet (?facet=hour), or
// two (?facet=hour&by=shift). ?top=N truncates the single-facet ranking.
func (s *Server) handleAggregate(c *gin.Context) {
	facet, ok := event.ParseFacet(c.Query("facet"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown facet %q", c.Query("facet"))})
		return
	}

	view, ok := s.viewOrFail(c)
	if !ok {
		return
	}

	if by := c.Query("by"); by != "" {
		second, ok := event.ParseFacet(by)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown facet %q", by)})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"facet": facet,
			"by":    second,
			"cells": agg.GroupCount2(view.Records, facet, second),
		})
		return
	}

	buckets := agg.GroupCount(view.Records, facet)
	if raw := c.Query("top"); raw != "" {
		if top, err := strconv.Atoi(raw); err == nil && top > 0 {
			buckets = agg.TopN(view.Records, facet, top)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"facet":   facet,
		"total":   len(view.Records),
		"buckets": buckets,
	})
}

func (s *Server) handleInsights(c *gin.Context) {
	view, ok := s.viewOrFail(c)
	if !ok {
		return
	}

	type renderedInsight struct {
		Tag  string `json:"tag"`
		Text string `json:"text"`
		HTML string `json:"html"`
	}
	insights := app.GenerateInsights(view)
	out := make([]renderedInsight, 0, len(insights))
	for _, insight := range insights {
		out = append(out, renderedInsight{
			Tag:  insight.Tag,
			Text: insight.Text,
			HTML: renderMarkdown(insight.Text),
		})
	}
	c.JSON(http.StatusOK, gin.H{"insights": out})
}

func (s *Server) handleSpeedProfile(c *gin.Context) {
	view, ok := s.viewOrFail(c)
	if !ok {
		return
	}
	profile, ok := profiling.AnalyzeSpeeds(view.Records)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"available": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": true, "profile": profile})
}

// handleExportCSV streams the filtered working set with derived columns.
func (s *Server) handleExportCSV(c *gin.Context) {
	view, ok := s.viewOrFail(c)
	if !ok {
		return
	}

	filename := fmt.Sprintf("fatigue_alerts_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := excel.ExportCSV(c.Writer, view.Table.Headers, view.Records); err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

func (s *Server) handleChatSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"session_id": s.chat.NewSession().String()})
}

type chatRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Question  string `json:"question" binding:"required"`
}

// handleChat answers one question scoped to the request's filter query.
func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id and question are required"})
		return
	}

	sessionID, err := core.ParseSessionID(req.SessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := s.chat.Ask(sessionID, req.Question, parseFilterQuery(c.Request.URL.Query()))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"answer": answer,
		"html":   renderMarkdown(answer),
	})
}

func (s *Server) handleChatHistory(c *gin.Context) {
	sessionID, err := core.ParseSessionID(c.Query("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	history, err := s.chat.History(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": history})
}

// viewOrFail builds the filtered working set or writes a 503 when the
// source cannot be read.
func (s *Server) viewOrFail(c *gin.Context) (*app.View, bool) {
	view, err := s.pipeline.View(parseFilterQuery(c.Request.URL.Query()))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return nil, false
	}
	return view, true
}
