package http_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	saleshttp "github.com/Apurer/go-sales-api-server/internal/domains/sales/adapters/http"
	salesmemory "github.com/Apurer/go-sales-api-server/internal/domains/sales/adapters/memory"
	salesapp "github.com/Apurer/go-sales-api-server/internal/domains/sales/application"
	outboxmemory "github.com/Apurer/go-sales-api-server/internal/shared/outbox/memory"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	service := salesapp.NewService(salesmemory.NewRepository(outboxmemory.NewStore()), nil, nil)
	router := gin.New()
	saleshttp.NewSalesAPI(service).RegisterRoutes(router)
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const createBody = `{
	"client_id": 7,
	"employee_id": 3,
	"date": "2024-05-10T12:00:00Z",
	"payment_method": "card",
	"items": [
		{"product_id": 10, "quantity": 2, "price": 50},
		{"product_id": 20, "quantity": 1, "price": 120, "discount": 10}
	]
}`

func TestCreateSaleEndpoint(t *testing.T) {
	t.Run("creates the order and points at it", func(t *testing.T) {
		router := newTestRouter(t)
		rec := doJSON(router, http.MethodPost, "/sales", createBody)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp struct {
			ID    int64 `json:"id"`
			Items []struct {
				ProductID int64   `json:"product_id"`
				Quantity  int32   `json:"quantity"`
				Price     float64 `json:"price"`
			} `json:"items"`
			Status string `json:"status"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotZero(t, resp.ID)
		require.Equal(t, "PENDING", resp.Status)
		require.Len(t, resp.Items, 2)
		require.Equal(t, fmt.Sprintf("/sales/%d", resp.ID), rec.Header().Get("Location"))
	})

	t.Run("non-JSON body is a bad request", func(t *testing.T) {
		router := newTestRouter(t)
		rec := doJSON(router, http.MethodPost, "/sales", "not json")

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.JSONEq(t, `{"msg":"Request body is missing or not JSON"}`, rec.Body.String())
	})

	t.Run("missing parties is unprocessable", func(t *testing.T) {
		router := newTestRouter(t)
		rec := doJSON(router, http.MethodPost, "/sales", `{"items":[{"product_id":10,"quantity":1,"price":5}]}`)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.JSONEq(t, `{"msg":"Client ID and Employee ID are required"}`, rec.Body.String())
	})

	t.Run("empty items list is unprocessable", func(t *testing.T) {
		router := newTestRouter(t)
		rec := doJSON(router, http.MethodPost, "/sales", `{"client_id":7,"employee_id":3,"items":[]}`)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.JSONEq(t, `{"msg":"Items are required and must be a non-empty list"}`, rec.Body.String())
	})

	t.Run("bad item names the product in details", func(t *testing.T) {
		router := newTestRouter(t)
		rec := doJSON(router, http.MethodPost, "/sales",
			`{"client_id":7,"employee_id":3,"items":[{"product_id":10,"quantity":0,"price":5}]}`)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.JSONEq(t,
			`{"msg":"Item quantity must be a positive integer","details":{"product_id":10}}`,
			rec.Body.String())
	})

	t.Run("non-list items value is unprocessable", func(t *testing.T) {
		router := newTestRouter(t)
		rec := doJSON(router, http.MethodPost, "/sales", `{"client_id":7,"employee_id":3,"items":"nope"}`)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.JSONEq(t, `{"msg":"Items are required and must be a non-empty list"}`, rec.Body.String())
	})

	t.Run("fractional quantity is unprocessable", func(t *testing.T) {
		router := newTestRouter(t)
		rec := doJSON(router, http.MethodPost, "/sales",
			`{"client_id":7,"employee_id":3,"items":[{"product_id":10,"quantity":2.5,"price":5}]}`)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.JSONEq(t, `{"msg":"Item quantity must be a positive integer"}`, rec.Body.String())
	})

	t.Run("non-numeric price is unprocessable", func(t *testing.T) {
		router := newTestRouter(t)
		rec := doJSON(router, http.MethodPost, "/sales",
			`{"client_id":7,"employee_id":3,"items":[{"product_id":10,"quantity":1,"price":"free"}]}`)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.JSONEq(t, `{"msg":"Item price must be a non-negative number"}`, rec.Body.String())
	})

	t.Run("non-object item is unprocessable", func(t *testing.T) {
		router := newTestRouter(t)
		rec := doJSON(router, http.MethodPost, "/sales", `{"client_id":7,"employee_id":3,"items":[5]}`)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.JSONEq(t, `{"msg":"Product ID, quantity, and price are required for each item"}`, rec.Body.String())
	})

	t.Run("carries observacoes onto the order", func(t *testing.T) {
		router := newTestRouter(t)
		rec := doJSON(router, http.MethodPost, "/sales",
			`{"client_id":7,"employee_id":3,"observacoes":"entregar na recepcao","items":[{"product_id":10,"quantity":1,"price":5}]}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.Contains(t, rec.Body.String(), `"observacoes":"entregar na recepcao"`)
	})

	t.Run("bad date is unprocessable", func(t *testing.T) {
		router := newTestRouter(t)
		rec := doJSON(router, http.MethodPost, "/sales",
			`{"client_id":7,"employee_id":3,"date":"10/05/2024","items":[{"product_id":10,"quantity":1,"price":5}]}`)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.JSONEq(t, `{"msg":"Date must be an ISO-8601 timestamp"}`, rec.Body.String())
	})
}

func TestSaleLookupEndpoints(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(router, http.MethodPost, "/sales", createBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	t.Run("fetches one order", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet, fmt.Sprintf("/sales/%d", created.ID), "")
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing order is 404", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet, "/sales/9999", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.JSONEq(t, `{"msg":"Sale not found"}`, rec.Body.String())
	})

	t.Run("non-numeric id is a bad request", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet, "/sales/abc", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("lists orders", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet, "/sales", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var list []json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list, 1)
	})

	t.Run("updates header fields", func(t *testing.T) {
		rec := doJSON(router, http.MethodPut, fmt.Sprintf("/sales/%d", created.ID),
			`{"payment_method":"pix"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"payment_method":"pix"`)
	})

	t.Run("rejects item replacement on update", func(t *testing.T) {
		rec := doJSON(router, http.MethodPut, fmt.Sprintf("/sales/%d", created.ID),
			`{"items":[{"product_id":99,"quantity":1,"price":5}]}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("deletes the order", func(t *testing.T) {
		rec := doJSON(router, http.MethodDelete, fmt.Sprintf("/sales/%d", created.ID), "")
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = doJSON(router, http.MethodGet, fmt.Sprintf("/sales/%d", created.ID), "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
