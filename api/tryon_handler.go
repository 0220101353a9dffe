package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/raushankrgupta/virtual-tryon/tryon"
	"github.com/raushankrgupta/virtual-tryon/utils"
)

const missingInputMessage = "Both user photo and garment image are required"

// TryOnRequest represents the request body for virtual try-on.
// GarmentPageURL is resolved to an image when GarmentImageURL is empty.
type TryOnRequest struct {
	UserPhotoURL       string `json:"userPhotoUrl"`
	GarmentImageURL    string `json:"garmentImageUrl"`
	GarmentPageURL     string `json:"garmentPageUrl,omitempty"`
	GarmentDescription string `json:"garmentDescription,omitempty"`
}

type TryOnResponse struct {
	TryOnID   string `json:"tryOnId"`
	ResultURL string `json:"resultUrl"`
	Status    string `json:"status"`
}

// TryOn handles the virtual try-on request
func (h *Handler) TryOn(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLog("tryon", &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Virtual Try-On API]")

	identity, err := GetIdentityFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req TryOnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.UserPhotoURL == "" || (req.GarmentImageURL == "" && req.GarmentPageURL == "") {
		utils.RespondError(w, &logMessageBuilder, missingInputMessage, http.StatusBadRequest)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Try-On Request: user=%s photo=%s garment=%s%s",
		identity.Subject, req.UserPhotoURL, req.GarmentImageURL, req.GarmentPageURL))

	user, err := h.Users.FindOrCreate(r.Context(), identity.Subject, identity.Email, identity.Name)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Failed to load user: %v", err), http.StatusInternalServerError)
		return
	}

	session := tryon.Restore(user.ID, identity.Subject, req.UserPhotoURL, req.GarmentImageURL, req.GarmentDescription)
	if req.GarmentImageURL == "" {
		session, err = h.Orchestrator.ResolveGarment(r.Context(), session, req.GarmentPageURL)
		if err != nil {
			respondResolveError(w, &logMessageBuilder, err)
			return
		}
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Resolved garment: %s", session.GarmentURL))
	}

	session, err = h.Orchestrator.Generate(r.Context(), session)
	if err != nil {
		if errors.Is(err, tryon.ErrMissingInput) {
			utils.RespondError(w, &logMessageBuilder, missingInputMessage, http.StatusBadRequest)
			return
		}
		utils.RespondError(w, &logMessageBuilder, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Try-on %s completed", session.Result.ID.Hex()))
	utils.RespondJSON(w, http.StatusOK, TryOnResponse{
		TryOnID:   session.Result.ID.Hex(),
		ResultURL: session.Result.ResultURL,
		Status:    session.Result.Status,
	})
}
