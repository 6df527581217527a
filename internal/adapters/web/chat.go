package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"business-dashboard/internal/app"
	"business-dashboard/internal/logger"

	"go.uber.org/zap"
)

// ── SSE helpers ───────────────────────────────────────────────────────────────

// sendSSE writes one SSE event and flushes. data is JSON-marshalled.
func sendSSE(w http.ResponseWriter, f http.Flusher, event string, data any) {
	b, _ := json.Marshal(data)
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(b))
	f.Flush()
}

// ── chatMessage · POST /api/chat ──────────────────────────────────────────────

type chatMessageRequest struct {
	Prompt string `json:"prompt"`
}

// chatMessage accepts a question and streams the analyst's reply via SSE.
//
// SSE event types:
//
//	status  {"status":"thinking"}
//	answer  {"text":"...","degraded":false}
//	error   {"message":"...","code":"..."}
//	done    {}
func (h *Handler) chatMessage(w http.ResponseWriter, r *http.Request) {
	var req chatMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ask := app.AskRequest{Prompt: req.Prompt}
	if err := ask.Validate(); err != nil {
		writeServiceError(w, r, err)
		return
	}
	// Resolve snapshot errors before the stream commits to a 200.
	if _, err := h.svc.Dataset(r.Context()); err != nil {
		writeServiceError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, "streaming not supported", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	sendSSE(w, flusher, "status", map[string]any{"status": "thinking"})

	result, err := h.svc.Ask(r.Context(), ask)
	if err != nil {
		logger.FromContext(r.Context()).Warn("chat request rejected", zap.Error(err))
		msg, code, _ := serviceError(err)
		sendSSE(w, flusher, "error", map[string]any{"message": msg, "code": code})
		sendSSE(w, flusher, "done", map[string]any{})
		return
	}

	sendSSE(w, flusher, "answer", map[string]any{"text": result.Reply, "degraded": result.Degraded})
	sendSSE(w, flusher, "done", map[string]any{})
}

// ── insights · POST /api/insights ─────────────────────────────────────────────

// insights returns the current snapshot's insights. ?refresh=true skips the cache.
func (h *Handler) insights(w http.ResponseWriter, r *http.Request) {
	refresh := false
	if v := r.URL.Query().Get("refresh"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, "refresh must be true or false", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		refresh = b
	}

	res, err := h.svc.Insights(r.Context(), refresh)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}
