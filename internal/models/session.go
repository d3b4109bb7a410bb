package models

// CartItem is one entry of a session cart. At most one entry exists per
// variation ID; adding the same variation again increments the quantity.
type CartItem struct {
	ProductID   string  `json:"productId"`
	VariationID string  `json:"variationId"`
	Title       string  `json:"title"`
	SKU         string  `json:"sku"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Image       string  `json:"image,omitempty"`
}

// WishlistItem is one entry of a session wishlist. At most one entry exists
// per variation ID.
type WishlistItem struct {
	ProductID   string  `json:"productId"`
	VariationID string  `json:"variationId"`
	Title       string  `json:"title"`
	SKU         string  `json:"sku"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
}

// AddCartItemRequest adds a variation to the cart.
type AddCartItemRequest struct {
	ProductID   string  `json:"productId" binding:"required"`
	VariationID string  `json:"variationId" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	SKU         string  `json:"sku"`
	Price       float64 `json:"price" binding:"required"`
	Quantity    int     `json:"quantity"`
	Image       string  `json:"image"`
}

// UpdateCartQuantityRequest adjusts the quantity of a cart entry.
type UpdateCartQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// AddWishlistItemRequest adds a variation to the wishlist.
type AddWishlistItemRequest struct {
	ProductID   string  `json:"productId" binding:"required"`
	VariationID string  `json:"variationId" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	SKU         string  `json:"sku"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

// ViewCount is one most-viewed counter entry.
type ViewCount struct {
	ProductID string `json:"productId"`
	Views     int64  `json:"views"`
}

// CartResponse is the cart payload returned to storefront clients.
type CartResponse struct {
	Success   bool       `json:"success"`
	Items     []CartItem `json:"items"`
	Subtotal  float64    `json:"subtotal"`
	ItemCount int        `json:"itemCount"`
}

// WishlistResponse is the wishlist payload returned to storefront clients.
type WishlistResponse struct {
	Success bool           `json:"success"`
	Items   []WishlistItem `json:"items"`
}
