package http

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/go-sales-api-server/internal/domains/inventory/application"
	"github.com/Apurer/go-sales-api-server/internal/domains/inventory/domain"
	"github.com/Apurer/go-sales-api-server/internal/domains/inventory/ports"
	"github.com/Apurer/go-sales-api-server/internal/platform/pubsub"
	"github.com/Apurer/go-sales-api-server/internal/shared/apperrors"
)

// InventoryAPI receives Pub/Sub push deliveries for inventory updates.
type InventoryAPI struct {
	service ports.Service
}

func NewInventoryAPI(service ports.Service) *InventoryAPI {
	return &InventoryAPI{service: service}
}

func (api *InventoryAPI) RegisterRoutes(router gin.IRouter) {
	router.POST("/pubsub/inventory-update", api.HandleInventoryUpdate)
	router.POST("/products", api.SeedProduct)
	router.GET("/products/:productId", api.GetProduct)
}

func (api *InventoryAPI) HandleInventoryUpdate(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		apperrors.BadRequest(c, "Invalid Pub/Sub message format")
		return
	}
	payload, err := pubsub.DecodePush(body)
	if err != nil {
		apperrors.BadRequest(c, "Invalid Pub/Sub message format")
		return
	}

	cmd, err := application.DecodeDecrement(payload)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	result, err := api.service.ApplyDecrement(c.Request.Context(), cmd)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	resp := gin.H{
		"status":     string(result.Outcome),
		"product_id": result.ProductID,
	}
	if result.Outcome == ports.OutcomeApplied {
		resp["new_quantity"] = result.NewQuantity
	}
	c.JSON(http.StatusOK, resp)
}

type seedProductRequest struct {
	ID       *int64 `json:"id"`
	Name     string `json:"name"`
	Quantity *int32 `json:"quantity"`
}

func (api *InventoryAPI) SeedProduct(c *gin.Context) {
	var req seedProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Request body is missing or not JSON")
		return
	}
	if req.ID == nil || *req.ID <= 0 || req.Quantity == nil || *req.Quantity < 0 {
		apperrors.Respond(c, apperrors.Validation("Product id and a non-negative quantity are required"))
		return
	}
	product := &domain.Product{ID: *req.ID, Name: req.Name, Quantity: *req.Quantity}
	if err := api.service.SeedProduct(c.Request.Context(), product); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":       product.ID,
		"name":     product.Name,
		"quantity": product.Quantity,
	})
}

func (api *InventoryAPI) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		apperrors.BadRequest(c, "Product id must be an integer")
		return
	}
	product, err := api.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       product.ID,
		"name":     product.Name,
		"quantity": product.Quantity,
	})
}
