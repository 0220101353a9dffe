package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/raushankrgupta/virtual-tryon/models"
	"github.com/raushankrgupta/virtual-tryon/store"
	"github.com/raushankrgupta/virtual-tryon/utils"
)

// GalleryResponse represents the response structure for the gallery API
type GalleryResponse struct {
	TryOns []models.TryOn `json:"tryOns"`
}

// Gallery lists the user's try-ons, newest first
func (h *Handler) Gallery(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLog("gallery", &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Gallery API]")

	identity, err := GetIdentityFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.Users.FindBySubject(r.Context(), identity.Subject)
	if errors.Is(err, store.ErrNotFound) {
		// No try-on yet, so no user record either
		utils.RespondJSON(w, http.StatusOK, GalleryResponse{TryOns: []models.TryOn{}})
		return
	}
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("User lookup failed: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	tryOns, err := h.TryOns.ListByUser(r.Context(), user.ID)
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Listing failed: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Returning %d try-ons", len(tryOns)))
	utils.RespondJSON(w, http.StatusOK, GalleryResponse{TryOns: tryOns})
}
