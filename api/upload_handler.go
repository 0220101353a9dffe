package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/raushankrgupta/virtual-tryon/tryon"
	"github.com/raushankrgupta/virtual-tryon/utils"
)

const defaultMaxUploadBytes = 10 << 20

// Upload stores the user's photo and returns its URL
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLog("upload", &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Upload API]")

	identity, err := GetIdentityFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Unauthorized", http.StatusUnauthorized)
		return
	}

	maxBytes := h.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile("photo")
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Form error: %v", err))
		utils.RespondError(w, &logMessageBuilder, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Failed to read uploaded file", http.StatusBadRequest)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Received %s (%d bytes)", header.Filename, len(data)))

	session := tryon.NewSession(primitive.NilObjectID, identity.Subject)
	session, err = h.Orchestrator.UploadPhoto(r.Context(), session, tryon.Photo{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		if errors.Is(err, utils.ErrNotAnImage) {
			utils.RespondError(w, &logMessageBuilder, "Uploaded file is not a supported image", http.StatusBadRequest)
			return
		}
		utils.RespondError(w, &logMessageBuilder, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Stored at %s", session.PhotoURL))
	utils.RespondJSON(w, http.StatusOK, map[string]string{"url": session.PhotoURL})
}
