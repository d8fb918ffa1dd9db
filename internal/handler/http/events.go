package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/guardline/roster-backend/internal/domain/site"
	"github.com/guardline/roster-backend/internal/handler/http/middleware"
	"github.com/guardline/roster-backend/internal/handler/http/response"
	"github.com/guardline/roster-backend/internal/pkg/jwt"
	"github.com/guardline/roster-backend/internal/pkg/sse"
)

type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

type EventHandler interface {
	GetStreamToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type eventHandlerImpl struct {
	hub         *sse.Hub
	jwtService  jwt.Service
	siteService site.SiteService
	keepalive   time.Duration
}

func NewEventHandler(hub *sse.Hub, jwtService jwt.Service, siteService site.SiteService) EventHandler {
	return &eventHandlerImpl{
		hub:         hub,
		jwtService:  jwtService,
		siteService: siteService,
		keepalive:   30 * time.Second,
	}
}

// GetStreamToken generates a short-lived token for one site's board stream
func (h *eventHandlerImpl) GetStreamToken(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	siteID := chi.URLParam(r, "id")
	if _, err := h.siteService.GetSite(r.Context(), siteID); err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(principal.ID, siteID)
	if err != nil {
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, SSETokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream handles the SSE connection of a console watching a site's board
func (h *eventHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	siteID := chi.URLParam(r, "id")

	// Get token from query parameter (SSE doesn't support custom headers)
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	if _, err := h.jwtService.ValidateSSEToken(tokenStr, siteID); err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	// Check if streaming is supported
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(siteID)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"site_id\":%q}\n\n", siteID)
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
