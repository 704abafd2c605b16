package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/go-sales-api-server/internal/domains/invoices/ports"
	"github.com/Apurer/go-sales-api-server/internal/platform/pubsub"
	"github.com/Apurer/go-sales-api-server/internal/shared/apperrors"
	"github.com/Apurer/go-sales-api-server/internal/shared/contracts"
)

// InvoicesAPI receives Pub/Sub push deliveries for sale invoice events and
// serves stored invoices for inspection.
type InvoicesAPI struct {
	service ports.Service
}

func NewInvoicesAPI(service ports.Service) *InvoicesAPI {
	return &InvoicesAPI{service: service}
}

func (api *InvoicesAPI) RegisterRoutes(router gin.IRouter) {
	router.POST("/pubsub/sale-invoice", api.HandleSaleInvoice)
	router.GET("/invoices/:nfId", api.GetInvoice)
}

func (api *InvoicesAPI) HandleSaleInvoice(c *gin.Context) {
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

	var event contracts.SaleInvoiceEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		apperrors.BadRequest(c, "Invalid message: body is not JSON")
		return
	}

	if err := api.service.StoreInvoice(c.Request.Context(), event); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stored", "nf_id": event.InvoiceData.NFID})
}

func (api *InvoicesAPI) GetInvoice(c *gin.Context) {
	doc, err := api.service.GetInvoice(c.Request.Context(), c.Param("nfId"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}
