package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"storefront-service/internal/middleware"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// CartHandler serves the session-scoped cart, wishlist and most-viewed
// endpoints.
type CartHandler struct {
	store         repository.SessionStore
	logger        *logrus.Entry
	trendingLimit int
}

// NewCartHandler creates a cart handler.
func NewCartHandler(store repository.SessionStore, logger *logrus.Logger, trendingLimit int) *CartHandler {
	return &CartHandler{
		store:         store,
		logger:        logger.WithField("component", "cart-handler"),
		trendingLimit: trendingLimit,
	}
}

// GetCart returns the session's cart.
// @Summary Get cart
// @Tags cart
// @Produce json
// @Success 200 {object} models.CartResponse
// @Router /storefront/cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	items, err := h.store.GetCart(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		h.respondStoreError(c, err, "fetch cart")
		return
	}
	c.JSON(http.StatusOK, cartResponse(items))
}

// AddCartItem adds a variation to the cart. Adding a variation that is
// already present increments its quantity; the cart never holds two entries
// for the same variation.
// @Summary Add cart item
// @Tags cart
// @Accept json
// @Produce json
// @Param item body models.AddCartItemRequest true "Item"
// @Success 200 {object} models.CartResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /storefront/cart/items [post]
func (h *CartHandler) AddCartItem(c *gin.Context) {
	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	item := models.CartItem{
		ProductID:   req.ProductID,
		VariationID: req.VariationID,
		Title:       req.Title,
		SKU:         req.SKU,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Image:       req.Image,
	}

	items, err := h.store.AddCartItem(c.Request.Context(), middleware.GetSessionID(c), item)
	if err != nil {
		h.respondStoreError(c, err, "add cart item")
		return
	}
	c.JSON(http.StatusOK, cartResponse(items))
}

// UpdateCartItem sets the quantity of a cart entry.
// @Summary Update cart item quantity
// @Tags cart
// @Accept json
// @Produce json
// @Param variationId path string true "Variation ID"
// @Param quantity body models.UpdateCartQuantityRequest true "Quantity"
// @Success 200 {object} models.CartResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /storefront/cart/items/{variationId} [put]
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	var req models.UpdateCartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	items, err := h.store.UpdateCartQuantity(c.Request.Context(), middleware.GetSessionID(c), c.Param("variationId"), req.Quantity)
	if err != nil {
		h.respondStoreError(c, err, "update cart item")
		return
	}
	c.JSON(http.StatusOK, cartResponse(items))
}

// RemoveCartItem removes a cart entry.
// @Summary Remove cart item
// @Tags cart
// @Produce json
// @Param variationId path string true "Variation ID"
// @Success 200 {object} models.CartResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /storefront/cart/items/{variationId} [delete]
func (h *CartHandler) RemoveCartItem(c *gin.Context) {
	items, err := h.store.RemoveCartItem(c.Request.Context(), middleware.GetSessionID(c), c.Param("variationId"))
	if err != nil {
		h.respondStoreError(c, err, "remove cart item")
		return
	}
	c.JSON(http.StatusOK, cartResponse(items))
}

// ClearCart empties the session's cart.
// @Summary Clear cart
// @Tags cart
// @Produce json
// @Success 200 {object} models.CartResponse
// @Router /storefront/cart [delete]
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.store.ClearCart(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		h.respondStoreError(c, err, "clear cart")
		return
	}
	c.JSON(http.StatusOK, cartResponse([]models.CartItem{}))
}

// GetWishlist returns the session's wishlist.
// @Summary Get wishlist
// @Tags wishlist
// @Produce json
// @Success 200 {object} models.WishlistResponse
// @Router /storefront/wishlist [get]
func (h *CartHandler) GetWishlist(c *gin.Context) {
	items, err := h.store.GetWishlist(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		h.respondStoreError(c, err, "fetch wishlist")
		return
	}
	c.JSON(http.StatusOK, models.WishlistResponse{Success: true, Items: items})
}

// AddWishlistItem adds a variation to the wishlist; duplicates are ignored.
// @Summary Add wishlist item
// @Tags wishlist
// @Accept json
// @Produce json
// @Param item body models.AddWishlistItemRequest true "Item"
// @Success 200 {object} models.WishlistResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /storefront/wishlist/items [post]
func (h *CartHandler) AddWishlistItem(c *gin.Context) {
	var req models.AddWishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	item := models.WishlistItem{
		ProductID:   req.ProductID,
		VariationID: req.VariationID,
		Title:       req.Title,
		SKU:         req.SKU,
		Price:       req.Price,
		Image:       req.Image,
	}

	items, err := h.store.AddWishlistItem(c.Request.Context(), middleware.GetSessionID(c), item)
	if err != nil {
		h.respondStoreError(c, err, "add wishlist item")
		return
	}
	c.JSON(http.StatusOK, models.WishlistResponse{Success: true, Items: items})
}

// RemoveWishlistItem removes a wishlist entry.
// @Summary Remove wishlist item
// @Tags wishlist
// @Produce json
// @Param variationId path string true "Variation ID"
// @Success 200 {object} models.WishlistResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /storefront/wishlist/items/{variationId} [delete]
func (h *CartHandler) RemoveWishlistItem(c *gin.Context) {
	items, err := h.store.RemoveWishlistItem(c.Request.Context(), middleware.GetSessionID(c), c.Param("variationId"))
	if err != nil {
		h.respondStoreError(c, err, "remove wishlist item")
		return
	}
	c.JSON(http.StatusOK, models.WishlistResponse{Success: true, Items: items})
}

// ClearWishlist empties the session's wishlist.
// @Summary Clear wishlist
// @Tags wishlist
// @Produce json
// @Success 200 {object} models.WishlistResponse
// @Router /storefront/wishlist [delete]
func (h *CartHandler) ClearWishlist(c *gin.Context) {
	if err := h.store.ClearWishlist(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		h.respondStoreError(c, err, "clear wishlist")
		return
	}
	c.JSON(http.StatusOK, models.WishlistResponse{Success: true, Items: []models.WishlistItem{}})
}

// RecordView bumps the most-viewed counter for a product.
// @Summary Record product view
// @Tags storefront
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.SuccessResponse
// @Router /storefront/products/{id}/view [post]
func (h *CartHandler) RecordView(c *gin.Context) {
	views, err := h.store.RecordView(c.Request.Context(), middleware.GetSessionID(c), c.Param("id"))
	if err != nil {
		h.respondStoreError(c, err, "record view")
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data: models.ViewCount{
			ProductID: c.Param("id"),
			Views:     views,
		},
	})
}

// GetTrending returns the session's most viewed products.
// @Summary Most viewed products
// @Tags storefront
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /storefront/products/trending [get]
func (h *CartHandler) GetTrending(c *gin.Context) {
	counts, err := h.store.TopViewed(c.Request.Context(), middleware.GetSessionID(c), h.trendingLimit)
	if err != nil {
		h.respondStoreError(c, err, "fetch trending")
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: counts})
}

func (h *CartHandler) respondStoreError(c *gin.Context, err error, op string) {
	if errors.Is(err, repository.ErrItemNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "ITEM_NOT_FOUND",
				Message: "No entry exists for that variation.",
			},
		})
		return
	}
	h.logger.WithError(err).Errorf("failed to %s", op)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "SESSION_STORE_ERROR",
			Message: "Failed to access session state.",
		},
	})
}

func cartResponse(items []models.CartItem) models.CartResponse {
	var subtotal float64
	count := 0
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
		count += item.Quantity
	}
	return models.CartResponse{
		Success:   true,
		Items:     items,
		Subtotal:  subtotal,
		ItemCount: count,
	}
}

func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "VALIDATION_ERROR",
			Message: err.Error(),
		},
	})
}
