package scanner

import (
	"errors"
	"fmt"
	"net/http"

	"tailscale.com/tsweb"

	"github.com/banshee-data/roomscan/internal/httputil"
)

// AttachAdminRoutes mounts the last cycle report and a rescan trigger under
// /debug/.
func (s *Scanner) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)
	debug.HandleFunc("scene", "Last scene query cycle as JSON", s.handleLast)
	// POST only; re-arms the trigger and runs a cycle with the last handles.
	debug.HandleSilentFunc("scene-rescan", s.handleRescan)
}

func (s *Scanner) handleLast(w http.ResponseWriter, r *http.Request) {
	rep := s.Last()
	if rep == nil {
		httputil.NotFound(w, "no cycle has run yet")
		return
	}
	httputil.WriteJSONOK(w, rep)
}

func (s *Scanner) handleRescan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w, http.MethodPost)
		return
	}
	rep, err := s.Rescan(r.Context())
	if errors.Is(err, ErrNoHandles) {
		httputil.WriteJSONError(w, http.StatusConflict, err.Error())
		return
	}
	if rep == nil {
		httputil.InternalServerError(w, fmt.Sprintf("rescan failed: %v", err))
		return
	}
	// A failed cycle is still a report worth returning.
	httputil.WriteJSONOK(w, rep)
}
