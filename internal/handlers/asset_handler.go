package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradebook/internal/models"
	"tradebook/internal/pagination"
	"tradebook/internal/services"
)

// AssetHandler handles asset ledger requests.
type AssetHandler struct {
	assetService services.AssetServicer
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(assetService services.AssetServicer) *AssetHandler {
	return &AssetHandler{assetService: assetService}
}

// CreateAssetRequest represents the request payload for creating an asset.
type CreateAssetRequest struct {
	Symbol       string           `json:"symbol" binding:"required,max=20"`
	Name         string           `json:"name" binding:"required,max=200"`
	Type         models.AssetType `json:"type" binding:"required,asset_type"`
	Currency     string           `json:"currency" binding:"omitempty,iso4217"`
	CurrentPrice float64          `json:"currentPrice" binding:"gte=0"`
	MarketCap    *float64         `json:"marketCap" binding:"omitempty,gte=0"`
	Sector       *string          `json:"sector" binding:"omitempty,max=100"`
	IsActive     *bool            `json:"isActive"`
}

// UpdateAssetRequest represents the request payload for updating an asset.
type UpdateAssetRequest struct {
	Symbol       *string           `json:"symbol" binding:"omitempty,min=1,max=20"`
	Name         *string           `json:"name" binding:"omitempty,min=1,max=200"`
	Type         *models.AssetType `json:"type" binding:"omitempty,asset_type"`
	Currency     *string           `json:"currency" binding:"omitempty,iso4217"`
	CurrentPrice *float64          `json:"currentPrice" binding:"omitempty,gte=0"`
	MarketCap    *float64          `json:"marketCap" binding:"omitempty,gte=0"`
	Sector       *string           `json:"sector" binding:"omitempty,max=100"`
	IsActive     *bool             `json:"isActive"`
}

// UpdatePriceRequest represents the request payload for a single price update.
type UpdatePriceRequest struct {
	Price        *float64 `json:"price" binding:"required,gte=0"`
	AddToHistory *bool    `json:"addToHistory"`
}

// BulkPriceRequest represents the request payload for a bulk price update.
type BulkPriceRequest struct {
	Updates []services.PriceUpdate `json:"updates" binding:"required,min=1,max=500"`
}

// BulkPriceResponse reports the per-entry outcome of a bulk price update.
type BulkPriceResponse struct {
	Results   []services.PriceUpdateResult `json:"results"`
	Succeeded int                          `json:"succeeded"`
	Failed    int                          `json:"failed"`
}

// ListAssetsQuery represents the query parameters for listing assets.
type ListAssetsQuery struct {
	pagination.PageRequest
	Type     *models.AssetType `form:"type" binding:"omitempty,asset_type"`
	IsActive *bool             `form:"active"`
}

// ListAssets handles listing assets.
// @Summary     List assets
// @Description Get a page of assets, optionally filtered by type and active flag
// @Tags        assets
// @Produce     json
// @Param       type      query string false "Asset type"
// @Param       active    query bool   false "Only active or inactive assets"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Asset]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /assets [get]
func (h *AssetHandler) ListAssets(c *gin.Context) {
	var query ListAssetsQuery
	if !bindQuery(c, &query) {
		return
	}

	assets, err := h.assetService.ListAssets(services.AssetFilter{Type: query.Type, IsActive: query.IsActive})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Paginate(assets, query.PageRequest))
}

// GetAsset handles retrieving an asset.
// @Summary     Get asset by ID
// @Tags        assets
// @Produce     json
// @Param       id path string true "Asset ID"
// @Success     200 {object} models.Asset
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Router      /assets/{id} [get]
func (h *AssetHandler) GetAsset(c *gin.Context) {
	asset, err := h.assetService.GetAsset(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

// GetAssetBySymbol handles retrieving an asset by its symbol.
// @Summary     Get asset by symbol
// @Tags        assets
// @Produce     json
// @Param       symbol path string true "Asset symbol"
// @Success     200 {object} models.Asset
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Router      /assets/symbol/{symbol} [get]
func (h *AssetHandler) GetAssetBySymbol(c *gin.Context) {
	asset, err := h.assetService.GetAssetBySymbol(c.Param("symbol"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

// CreateAsset handles creating an asset.
// @Summary     Create asset
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateAssetRequest true "Asset data"
// @Success     201 {object} models.Asset
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Insufficient permissions"
// @Failure     409 {object} ErrorResponse "Duplicate symbol"
// @Router      /assets [post]
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	var req CreateAssetRequest
	if !bindJSON(c, &req) {
		return
	}

	asset, err := h.assetService.CreateAsset(services.CreateAssetInput{
		Symbol:       req.Symbol,
		Name:         req.Name,
		Type:         req.Type,
		Currency:     req.Currency,
		CurrentPrice: req.CurrentPrice,
		MarketCap:    req.MarketCap,
		Sector:       req.Sector,
		IsActive:     req.IsActive,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"asset": asset})
}

// UpdateAsset handles updating an asset.
// @Summary     Update asset
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Asset ID"
// @Param       request body UpdateAssetRequest true "Fields to change"
// @Success     200 {object} models.Asset
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     409 {object} ErrorResponse "Duplicate symbol"
// @Router      /assets/{id} [put]
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	var req UpdateAssetRequest
	if !bindJSON(c, &req) {
		return
	}

	asset, err := h.assetService.UpdateAsset(c.Param("id"), models.AssetPatch{
		Symbol:       req.Symbol,
		Name:         req.Name,
		Type:         req.Type,
		Currency:     req.Currency,
		CurrentPrice: req.CurrentPrice,
		MarketCap:    req.MarketCap,
		Sector:       req.Sector,
		IsActive:     req.IsActive,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

// UpdatePrice handles setting an asset's current price.
// @Summary     Update asset price
// @Description Set the current price. The price is appended to the history unless addToHistory is false.
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Asset ID"
// @Param       request body UpdatePriceRequest true "New price"
// @Success     200 {object} models.Asset
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Router      /assets/{id}/price [put]
func (h *AssetHandler) UpdatePrice(c *gin.Context) {
	var req UpdatePriceRequest
	if !bindJSON(c, &req) {
		return
	}
	addToHistory := true
	if req.AddToHistory != nil {
		addToHistory = *req.AddToHistory
	}

	asset, err := h.assetService.UpdateAssetPrice(c.Param("id"), *req.Price, addToHistory)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

// BulkUpdatePrices handles updating many prices at once. Each entry succeeds or
// fails on its own.
// @Summary     Bulk update prices
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BulkPriceRequest true "Price updates"
// @Success     200 {object} BulkPriceResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /assets/prices/bulk [post]
func (h *AssetHandler) BulkUpdatePrices(c *gin.Context) {
	var req BulkPriceRequest
	if !bindJSON(c, &req) {
		return
	}

	results := h.assetService.BulkUpdatePrices(req.Updates)
	resp := BulkPriceResponse{Results: results}
	for _, r := range results {
		if r.Success {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteAsset handles deleting an asset that no trade references.
// @Summary     Delete asset
// @Tags        assets
// @Security    BearerAuth
// @Param       id path string true "Asset ID"
// @Success     204
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     409 {object} ErrorResponse "Asset in use"
// @Router      /assets/{id} [delete]
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	if err := h.assetService.DeleteAsset(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
