package handler

import (
	"net/http"

	"github.com/wabisaby/toolrank/internal/model"
)

// NoToolsMessage is returned when the snapshot has nothing to serve.
const NoToolsMessage = "No tools available, check backend setup"

// RequestObserver counts responses by status code.
type RequestObserver interface {
	ObserveRequest(status int)
}

type ToolsHandler struct {
	snapshot *model.Snapshot
	observer RequestObserver
}

// NewToolsHandler serves a snapshot that was fully built before the call.
func NewToolsHandler(snapshot *model.Snapshot, observer RequestObserver) *ToolsHandler {
	return &ToolsHandler{snapshot: snapshot, observer: observer}
}

// ListTools returns the ranked tool list
func (h *ToolsHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	if h.snapshot.Empty() {
		h.observe(http.StatusInternalServerError)
		SendError(w, NoToolsMessage, http.StatusInternalServerError)
		return
	}
	h.observe(http.StatusOK)
	SendRawJSON(w, http.StatusOK, h.snapshot.JSON())
}

func (h *ToolsHandler) observe(status int) {
	if h.observer != nil {
		h.observer.ObserveRequest(status)
	}
}
