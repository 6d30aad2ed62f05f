package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/digistall/digistall/internal/core/domain"
	"github.com/digistall/digistall/internal/core/service"
)

type HTTPHandler struct {
	items     *service.ItemService
	purchases *service.PurchaseService
	ledger    *service.LedgerService
	logger    *zap.Logger
}

func NewHTTPHandler(
	items *service.ItemService,
	purchases *service.PurchaseService,
	ledger *service.LedgerService,
	logger *zap.Logger,
) *HTTPHandler {
	return &HTTPHandler{items: items, purchases: purchases, ledger: ledger, logger: logger}
}

// Register mounts all routes. authMW guards the authenticated surface.
func (h *HTTPHandler) Register(r *gin.Engine, authMW gin.HandlerFunc) {
	r.GET("/health", h.HealthCheck)

	api := r.Group("/api")
	api.GET("/items", h.ListItems)
	api.GET("/items/:id", h.GetItem)
	api.GET("/ledger", h.Ledger)

	auth := api.Group("")
	auth.Use(authMW)
	auth.POST("/items", h.CreateItem)
	auth.PATCH("/items/:id", h.UpdateItem)
	auth.DELETE("/items/:id", h.DeleteItem)
	auth.GET("/items/:id/sales", h.ItemSales)
	auth.POST("/purchases", h.Purchase)
	auth.GET("/me/purchases", h.MyPurchases)
	auth.GET("/me/items", h.MyItems)
}

type createItemRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Enhance     bool    `json:"enhance"`
}

type updateItemRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

type purchaseRequest struct {
	ItemID string `json:"item_id"`
}

type itemResponse struct {
	ID          string    `json:"id"`
	OwnerUserID *string   `json:"owner_user_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	ShareLink   *string   `json:"share_link,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type purchaseResponse struct {
	ID         string    `json:"id"`
	ItemID     string    `json:"item_id"`
	BuyerLogin string    `json:"buyer_login"`
	CreatedAt  time.Time `json:"created_at"`
}

type ledgerEntryResponse struct {
	ID        string    `json:"id"`
	Product   string    `json:"product"`
	Seller    string    `json:"seller"`
	Buyer     string    `json:"buyer"`
	Price     float64   `json:"price"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HTTPHandler) CreateItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.items.CreateItem(c.Request.Context(), service.CreateItemParams{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Enhance:     req.Enhance,
	}, sessionFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toItemResponse(item))
}

func (h *HTTPHandler) ListItems(c *gin.Context) {
	items, err := h.items.ListItems(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItemResponses(items))
}

func (h *HTTPHandler) GetItem(c *gin.Context) {
	item, err := h.items.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItemResponse(item))
}

func (h *HTTPHandler) UpdateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.items.UpdateItem(c.Request.Context(), c.Param("id"), service.UpdateItemParams{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}, sessionFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItemResponse(item))
}

func (h *HTTPHandler) DeleteItem(c *gin.Context) {
	if err := h.items.DeleteItem(c.Request.Context(), c.Param("id"), sessionFromContext(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) Purchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ItemID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_id is required"})
		return
	}

	purchase, err := h.purchases.Purchase(c.Request.Context(), req.ItemID, sessionFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchaseResponse{
		ID:         purchase.ID,
		ItemID:     purchase.ItemID,
		BuyerLogin: purchase.BuyerLogin,
		CreatedAt:  purchase.CreatedAt,
	})
}

func (h *HTTPHandler) Ledger(c *gin.Context) {
	entries, err := h.ledger.Ledger(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLedgerResponses(entries))
}

func (h *HTTPHandler) MyPurchases(c *gin.Context) {
	entries, err := h.ledger.PurchasesForBuyer(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLedgerResponses(entries))
}

func (h *HTTPHandler) MyItems(c *gin.Context) {
	items, err := h.items.ListOwnItems(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItemResponses(items))
}

func (h *HTTPHandler) ItemSales(c *gin.Context) {
	summary, err := h.ledger.SalesForItem(c.Request.Context(), c.Param("id"), sessionFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	sales := make([]gin.H, 0, len(summary.Sales))
	for _, s := range summary.Sales {
		sales = append(sales, gin.H{
			"id":         s.ID,
			"buyer":      s.Buyer,
			"price_paid": s.PricePaid,
			"status":     s.Status,
			"created_at": s.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"total_sales": summary.TotalSales,
		"revenue":     summary.Revenue,
		"sales":       sales,
	})
}

func (h *HTTPHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, service.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
	case errors.Is(err, service.ErrOutOfStock):
		c.JSON(http.StatusConflict, gin.H{"error": "item out of stock"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, service.ErrInvalidItem):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item"})
	default:
		h.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func toItemResponse(item domain.Item) itemResponse {
	return itemResponse{
		ID:          item.ID,
		OwnerUserID: item.OwnerUserID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		Quantity:    item.Quantity,
		ShareLink:   item.ShareLink,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func toItemResponses(items []domain.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toItemResponse(item))
	}
	return out
}

func toLedgerResponses(entries []domain.LedgerEntry) []ledgerEntryResponse {
	out := make([]ledgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ledgerEntryResponse{
			ID:        e.ID,
			Product:   e.Product,
			Seller:    e.Seller,
			Buyer:     e.Buyer,
			Price:     e.Price,
			Status:    e.Status,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}
