// Package http wires the sales REST surface onto gin.
package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/go-sales-api-server/internal/domains/sales/adapters/http/mapper"
	salesports "github.com/Apurer/go-sales-api-server/internal/domains/sales/ports"
	"github.com/Apurer/go-sales-api-server/internal/shared/apperrors"
)

// SalesAPI exposes the sales service over HTTP.
type SalesAPI struct {
	service salesports.Service
}

// NewSalesAPI creates a SalesAPI backed by the provided service.
func NewSalesAPI(service salesports.Service) SalesAPI {
	return SalesAPI{service: service}
}

// RegisterRoutes mounts the sales endpoints.
func (api SalesAPI) RegisterRoutes(router gin.IRouter) {
	router.POST("/sales", api.CreateSale)
	router.GET("/sales", api.ListSales)
	router.GET("/sales/:saleId", api.GetSaleByID)
	router.PUT("/sales/:saleId", api.UpdateSaleByID)
	router.DELETE("/sales/:saleId", api.DeleteSaleByID)
}

// Post /sales
// Create a sale order and trigger the fulfillment fan-out.
func (api SalesAPI) CreateSale(c *gin.Context) {
	var payload mapper.CreateSaleRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		apperrors.BadRequest(c, "Request body is missing or not JSON")
		return
	}
	input, err := mapper.ToCreateInput(payload)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	saved, err := api.service.CreateSale(c.Request.Context(), input)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/sales/%d", saved.ID))
	c.JSON(http.StatusCreated, mapper.FromDomain(saved))
}

// Get /sales
func (api SalesAPI) ListSales(c *gin.Context) {
	orders, err := api.service.ListSales(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainList(orders))
}

// Get /sales/:saleId
func (api SalesAPI) GetSaleByID(c *gin.Context) {
	id, ok := parseIDParam(c, "saleId")
	if !ok {
		return
	}
	order, err := api.service.GetSale(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomain(order))
}

// Put /sales/:saleId
// Update header fields of an existing sale.
func (api SalesAPI) UpdateSaleByID(c *gin.Context) {
	id, ok := parseIDParam(c, "saleId")
	if !ok {
		return
	}
	var payload mapper.UpdateSaleRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		apperrors.BadRequest(c, "Request body is missing or not JSON")
		return
	}
	input, err := mapper.ToUpdateInput(id, payload)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	updated, err := api.service.UpdateSale(c.Request.Context(), input)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomain(updated))
}

// Delete /sales/:saleId
func (api SalesAPI) DeleteSaleByID(c *gin.Context) {
	id, ok := parseIDParam(c, "saleId")
	if !ok {
		return
	}
	if err := api.service.DeleteSale(c.Request.Context(), id); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		apperrors.BadRequest(c, "Sale id must be an integer")
		return 0, false
	}
	return id, true
}
