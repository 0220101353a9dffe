package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/raushankrgupta/virtual-tryon/models"
	"github.com/raushankrgupta/virtual-tryon/store"
	"github.com/raushankrgupta/virtual-tryon/utils"
)

// Products lists active catalog products, optionally by category and gender
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLog("products", &logMessageBuilder)

	filter := store.ProductFilter{
		Category: r.URL.Query().Get("category"),
		Gender:   r.URL.Query().Get("gender"),
	}

	products, err := h.Catalog.List(r.Context(), filter)
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Product listing failed: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if len(products) > store.MaxProducts {
		products = products[:store.MaxProducts]
	}

	utils.RespondJSON(w, http.StatusOK, map[string][]models.Product{"products": products})
}
