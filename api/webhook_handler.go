package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/raushankrgupta/virtual-tryon/utils"
)

// ReplicatePrediction is the subset of a Replicate prediction webhook we read
type ReplicatePrediction struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  any    `json:"error,omitempty"`
}

// ReplicateWebhook acknowledges prediction updates. Nothing is written:
// try-on records are finalized only by the request that created them.
func (h *Handler) ReplicateWebhook(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLog("webhook-replicate", &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Replicate Webhook]")

	var p ReplicatePrediction
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Decode error: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if p.ID == "" {
		utils.RespondError(w, &logMessageBuilder, "Invalid payload", http.StatusBadRequest)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Webhook received for %s: %s", p.ID, p.Status))
	if p.Error != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Prediction error: %v", p.Error))
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Webhook processed"})
}
