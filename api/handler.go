package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/raushankrgupta/virtual-tryon/inference"
	"github.com/raushankrgupta/virtual-tryon/models"
	"github.com/raushankrgupta/virtual-tryon/scrapers"
	"github.com/raushankrgupta/virtual-tryon/store"
	"github.com/raushankrgupta/virtual-tryon/tryon"
	"github.com/raushankrgupta/virtual-tryon/utils"
)

// GarmentScraper finds garment images on retailer pages
type GarmentScraper interface {
	Scrape(ctx context.Context, pageURL string) (string, error)
	Resolve(ctx context.Context, input string) (string, error)
}

type BackgroundRemover interface {
	RemoveBackground(ctx context.Context, imageRef string) inference.Segmentation
}

type UserStore interface {
	FindOrCreate(ctx context.Context, subject, email, name string) (*models.User, error)
	FindBySubject(ctx context.Context, subject string) (*models.User, error)
}

type TryOnStore interface {
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.TryOn, error)
}

type ProductLister interface {
	List(ctx context.Context, f store.ProductFilter) ([]models.Product, error)
}

// HealthCheck pings one backing service
type HealthCheck func(ctx context.Context) error

// Handler holds the dependencies of every HTTP endpoint
type Handler struct {
	Scraper      GarmentScraper
	Segmenter    BackgroundRemover
	Orchestrator *tryon.Orchestrator
	Users        UserStore
	TryOns       TryOnStore
	Catalog      ProductLister
	Checks       map[string]HealthCheck

	MaxUploadBytes int64
}

type scrapeRequest struct {
	URL string `json:"url"`
}

// Scrape handles the scraping request: a retailer page in, its product image out
func (h *Handler) Scrape(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLog("scrape", &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Scrape API]")

	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		utils.RespondError(w, &logMessageBuilder, "URL is required", http.StatusBadRequest)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Scraping URL: %s", req.URL))

	imageURL, err := h.Scraper.Scrape(r.Context(), req.URL)
	if err != nil {
		respondResolveError(w, &logMessageBuilder, err)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Found image: %s", imageURL))
	utils.RespondJSON(w, http.StatusOK, map[string]string{"imageUrl": imageURL})
}

// ResolveGarment accepts either a direct image link or a product page
func (h *Handler) ResolveGarment(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLog("garment-resolve", &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Garment Resolve API]")

	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid request body", http.StatusBadRequest)
		return
	}

	garmentURL, err := h.Scraper.Resolve(r.Context(), req.URL)
	if err != nil {
		respondResolveError(w, &logMessageBuilder, err)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Resolved %s -> %s", req.URL, garmentURL))
	utils.RespondJSON(w, http.StatusOK, map[string]string{"garmentUrl": garmentURL})
}

type extractRequest struct {
	ImageURL string `json:"imageUrl"`
}

// ExtractGarment removes the background of a garment image. Segmentation
// problems never fail the request; the original image comes back instead.
func (h *Handler) ExtractGarment(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLog("extract-garment", &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Extract Garment API]")

	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		utils.RespondError(w, &logMessageBuilder, "Image URL is required", http.StatusBadRequest)
		return
	}

	seg := h.Segmenter.RemoveBackground(r.Context(), req.ImageURL)
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Segmented=%t reason=%q url=%s", seg.Segmented, seg.Reason, seg.URL))
	utils.RespondJSON(w, http.StatusOK, seg)
}

func respondResolveError(w http.ResponseWriter, logger *strings.Builder, err error) {
	switch {
	case errors.Is(err, scrapers.ErrInvalidInput):
		utils.RespondError(w, logger, "URL is required", http.StatusBadRequest)
	case errors.Is(err, scrapers.ErrFetchFailed):
		utils.RespondError(w, logger, err.Error(), http.StatusBadRequest)
	case errors.Is(err, scrapers.ErrExtractionFailed):
		utils.RespondError(w, logger, "Could not find product image on this page", http.StatusNotFound)
	default:
		utils.RespondError(w, logger, fmt.Sprintf("Scraping failed: %v", err), http.StatusInternalServerError)
	}
}
