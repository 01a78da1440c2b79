package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"storefront-service/internal/catalog"
	"storefront-service/internal/models"
	"storefront-service/internal/money"
	"storefront-service/internal/service"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	catalogService  *service.CatalogService
	formatter       *money.Formatter
	defaultPageSize int
}

// NewHandler creates a new HTTP handler
func NewHandler(catalogService *service.CatalogService, formatter *money.Formatter, defaultPageSize int) *Handler {
	return &Handler{
		catalogService:  catalogService,
		formatter:       formatter,
		defaultPageSize: defaultPageSize,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.queryProducts)
		v1.GET("/products/:sku", h.getProduct)
		v1.GET("/categories", h.getCategories)
		v1.POST("/catalog/refresh", h.refreshCatalog)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready once a catalog snapshot is queryable
func (h *Handler) readinessCheck(c *gin.Context) {
	if !h.catalogService.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "no catalog snapshot",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

var sortModes = map[string]models.SortMode{
	"":                           models.SortNatural,
	string(models.SortNatural):   models.SortNatural,
	string(models.SortPriceAsc):  models.SortPriceAsc,
	string(models.SortPriceDesc): models.SortPriceDesc,
	string(models.SortNameAsc):   models.SortNameAsc,
	string(models.SortNameDesc):  models.SortNameDesc,
}

// queryProducts runs the query pipeline over the current snapshot
func (h *Handler) queryProducts(c *gin.Context) {
	sortMode, ok := sortModes[c.Query("sort")]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid sort mode",
		})
		return
	}

	page := 1
	if pageStr := c.Query("page"); pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid page",
			})
			return
		}
		page = p
	}

	// page_size: absent uses the configured default, 0 disables
	// pagination entirely.
	pageSize := &h.defaultPageSize
	if sizeStr := c.Query("page_size"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil || size < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid page_size",
			})
			return
		}
		if size == 0 {
			pageSize = nil
		} else {
			pageSize = &size
		}
	}

	params := models.QueryParams{
		SearchText:     c.Query("q"),
		ActiveCategory: c.Query("category"),
		SortMode:       sortMode,
		Page:           page,
		PageSize:       pageSize,
	}

	result, snapshot, err := h.catalogService.Query(c.Request.Context(), params)
	if err != nil {
		h.renderServiceError(c, err)
		return
	}

	items := make([]productView, len(result.Items))
	for i := range result.Items {
		items[i] = h.toProductView(&result.Items[i], &snapshot.Settings)
	}

	c.JSON(http.StatusOK, gin.H{
		"items":            items,
		"total_matched":    result.TotalMatched,
		"total_pages":      result.TotalPages,
		"page":             result.Page,
		"is_empty":         result.IsEmpty,
		"is_promo_query":   catalog.IsPromoKeyword(params.SearchText),
		"snapshot_version": snapshot.Version,
	})
}

// getProduct returns one product with its contact deep links
func (h *Handler) getProduct(c *gin.Context) {
	sku := c.Param("sku")

	product, snapshot, err := h.catalogService.GetProduct(c.Request.Context(), sku)
	if err != nil {
		h.renderServiceError(c, err)
		return
	}

	view := h.toProductView(product, &snapshot.Settings)
	c.JSON(http.StatusOK, gin.H{
		"product":   view,
		"sizes":     product.Sizes,
		"contact":   h.contactLinks(product, &snapshot.Settings),
		"loaded_at": snapshot.LoadedAt,
	})
}

// defaultCategoryLabels maps sku prefixes to their storefront names.
// Settings may override individual entries.
var defaultCategoryLabels = map[string]string{
	"C": "Camisetas",
	"Z": "Zapatillas",
	"A": "Accesorios",
	"P": "Pantalones",
	"S": "Sudaderas",
	"B": "Bolsos",
	"R": "Relojes",
}

// getCategories returns the derived category codes with display labels
func (h *Handler) getCategories(c *gin.Context) {
	codes, snapshot, err := h.catalogService.Categories(c.Request.Context())
	if err != nil {
		h.renderServiceError(c, err)
		return
	}

	type categoryView struct {
		Code  string `json:"code"`
		Label string `json:"label"`
	}
	categories := make([]categoryView, len(codes))
	for i, code := range codes {
		label := code
		if l, ok := defaultCategoryLabels[code]; ok {
			label = l
		}
		if l, ok := snapshot.Settings.CategoryLabels[code]; ok {
			label = l
		}
		categories[i] = categoryView{Code: code, Label: label}
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
	})
}

// refreshCatalog triggers a manual catalog reload
func (h *Handler) refreshCatalog(c *gin.Context) {
	if err := h.catalogService.RequestRefresh(c.Request.Context(), "api", true); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to trigger refresh",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"status": "refresh requested",
	})
}

func (h *Handler) renderServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoSnapshot):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Catalog not loaded yet",
		})
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Catalog query failed",
			"details": err.Error(),
		})
	}
}

// productView is the wire form of a priced product, with prices
// pre-formatted for display.
type productView struct {
	SKU             string   `json:"sku"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Image           string   `json:"image"`
	Category        string   `json:"category"`
	Price           string   `json:"price"`
	PriceDisplay    string   `json:"price_display"`
	OriginalPrice   *string  `json:"original_price,omitempty"`
	OriginalDisplay *string  `json:"original_price_display,omitempty"`
	DiscountPercent *string  `json:"discount_percent,omitempty"`
	IsSoldOut       bool     `json:"is_sold_out"`
	IsLowStock      bool     `json:"is_low_stock"`
	Sizes           []string `json:"sizes,omitempty"`
}

func (h *Handler) toProductView(p *models.PricedProduct, settings *models.Settings) productView {
	view := productView{
		SKU:          p.SKU,
		Title:        p.Title,
		Description:  p.Description,
		Image:        p.Image,
		Category:     p.Category(),
		Price:        p.EffectivePrice.String(),
		PriceDisplay: h.formatter.Format(p.EffectivePrice, settings.Currency),
		IsSoldOut:    p.IsSoldOut,
		IsLowStock:   p.IsLowStock,
		Sizes:        p.Sizes,
	}
	if p.HasDiscount() {
		original := p.OriginalPrice.String()
		originalDisplay := h.formatter.Format(*p.OriginalPrice, settings.Currency)
		percent := p.DiscountPercent.String()
		view.OriginalPrice = &original
		view.OriginalDisplay = &originalDisplay
		view.DiscountPercent = &percent
	}
	return view
}

// contactLinks builds the messaging deep links for a product, preferring
// per-product overrides over the settings defaults.
func (h *Handler) contactLinks(p *models.PricedProduct, settings *models.Settings) gin.H {
	instagram := p.Instagram
	if instagram == "" {
		instagram = settings.Instagram
	}

	whatsapp := "#"
	number := p.WhatsApp
	if number == "" {
		number = settings.WhatsApp
	}
	if number != "" {
		message := fmt.Sprintf("Hola, me interesa %s (SKU: %s).", p.Title, p.SKU)
		whatsapp = fmt.Sprintf("https://wa.me/%s?text=%s", number, url.QueryEscape(message))
	}

	return gin.H{
		"instagram": instagram,
		"whatsapp":  whatsapp,
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
