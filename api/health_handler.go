package api

import (
	"net/http"

	"github.com/raushankrgupta/virtual-tryon/utils"
)

// Health checks every backing service and reports 503 if any is down
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	services := make(map[string]string, len(h.Checks))
	degraded := false
	for name, check := range h.Checks {
		services[name] = "ok"
		if err := check(r.Context()); err != nil {
			services[name] = "degraded"
			degraded = true
		}
	}

	status, code := "ok", http.StatusOK
	if degraded {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	utils.RespondJSON(w, code, map[string]any{
		"status":   status,
		"services": services,
	})
}
