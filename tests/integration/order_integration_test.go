package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/kendall-kelly/printshop-api/models"
	"github.com/kendall-kelly/printshop-api/orders"
	"github.com/kendall-kelly/printshop-api/tests/apitest"
	"github.com/kendall-kelly/printshop-api/tests/testutil"
)

// OrderIntegrationTestSuite exercises the order endpoints through the full router
type OrderIntegrationTestSuite struct {
	suite.Suite
	api      *apitest.API
	customer models.User
	other    models.User
	shirt    models.Product
}

func TestOrderIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderIntegrationTestSuite))
}

func (s *OrderIntegrationTestSuite) SetupTest() {
	t := s.T()
	s.api = apitest.New(t)
	s.customer = testutil.CreateUser(t, s.api.DB, "auth0|customer", models.RoleCustomer)
	s.other = testutil.CreateUser(t, s.api.DB, "auth0|other", models.RoleCustomer)
	testutil.CreateUser(t, s.api.DB, "auth0|admin", models.RoleAdmin)
	s.shirt = testutil.CreateProduct(t, s.api.DB, "T-Shirt", "12.50")
}

func (s *OrderIntegrationTestSuite) createOrder(body interface{}) apitest.Response {
	return s.api.JSON(s.T(), http.MethodPost, "/api/v1/orders", "auth0|customer", body)
}

func (s *OrderIntegrationTestSuite) TestCreateOrderPricesItems() {
	resp := s.createOrder(map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": s.shirt.ID, "quantity": 50, "options": map[string]string{"size": "XL"}},
		},
		"delivery_method": "pickup",
	})
	s.Require().Equal(http.StatusCreated, resp.Code, resp.Error.Message)

	var order models.Order
	resp.Decode(s.T(), &order)
	s.Require().Len(order.Items, 1)
	// Bulk tier 10.00 plus the XL modifier
	s.True(decimal.RequireFromString("12.00").Equal(order.Items[0].UnitPrice), order.Items[0].UnitPrice.String())
	s.True(decimal.RequireFromString("600.00").Equal(order.Items[0].LineTotal), order.Items[0].LineTotal.String())
	s.True(order.ShippingCost.IsZero())
	s.Equal(s.customer.ID, order.CustomerID)
}

func (s *OrderIntegrationTestSuite) TestCreateOrderValidation() {
	tests := []struct {
		name string
		body map[string]interface{}
		code string
	}{
		{
			name: "no items",
			body: map[string]interface{}{"items": []interface{}{}, "delivery_method": "pickup"},
			code: "VALIDATION_ERROR",
		},
		{
			name: "zero quantity",
			body: map[string]interface{}{
				"items":           []map[string]interface{}{{"product_id": s.shirt.ID, "quantity": 0}},
				"delivery_method": "pickup",
			},
			code: "VALIDATION_ERROR",
		},
		{
			name: "unknown product",
			body: map[string]interface{}{
				"items":           []map[string]interface{}{{"product_id": 9999, "quantity": 1}},
				"delivery_method": "pickup",
			},
			code: "UNKNOWN_PRODUCT",
		},
		{
			name: "unknown option",
			body: map[string]interface{}{
				"items":           []map[string]interface{}{{"product_id": s.shirt.ID, "quantity": 1, "options": map[string]string{"size": "XXS"}}},
				"delivery_method": "pickup",
			},
			code: "INVALID_OPTION",
		},
		{
			name: "shipping without address",
			body: map[string]interface{}{
				"items": []map[string]interface{}{{"product_id": s.shirt.ID, "quantity": 1}},
			},
			code: "MISSING_ADDRESS",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp := s.createOrder(tt.body)
			s.Equal(http.StatusBadRequest, resp.Code)
			s.Equal(tt.code, resp.Error.Code)
		})
	}
}

func (s *OrderIntegrationTestSuite) TestAdminsDoNotPlaceOrders() {
	resp := s.api.JSON(s.T(), http.MethodPost, "/api/v1/orders", "auth0|admin", map[string]interface{}{
		"items":           []map[string]interface{}{{"product_id": s.shirt.ID, "quantity": 1}},
		"delivery_method": "pickup",
	})
	s.Equal(http.StatusForbidden, resp.Code)
}

func (s *OrderIntegrationTestSuite) TestUnknownUser() {
	resp := s.api.JSON(s.T(), http.MethodGet, "/api/v1/orders", "auth0|stranger", nil)
	s.Equal(http.StatusNotFound, resp.Code)
	s.Equal("USER_NOT_FOUND", resp.Error.Code)
}

func (s *OrderIntegrationTestSuite) TestListOrders() {
	t := s.T()
	for i := 0; i < 3; i++ {
		testutil.CreateOrder(t, s.api.DB, s.customer, s.shirt)
	}
	paid := testutil.CreateOrder(t, s.api.DB, s.customer, s.shirt)
	testutil.SetOrderStatus(t, s.api.DB, paid.ID, models.OrderStatusPaid)
	testutil.CreateOrder(t, s.api.DB, s.other, s.shirt)

	var page orders.Page

	resp := s.api.JSON(t, http.MethodGet, "/api/v1/orders", "auth0|customer", nil)
	s.Require().Equal(http.StatusOK, resp.Code)
	resp.Decode(t, &page)
	s.EqualValues(4, page.Total)
	for _, order := range page.Orders {
		s.Equal(s.customer.ID, order.CustomerID)
	}

	resp = s.api.JSON(t, http.MethodGet, "/api/v1/orders?page=2&limit=3", "auth0|customer", nil)
	s.Require().Equal(http.StatusOK, resp.Code)
	resp.Decode(t, &page)
	s.Len(page.Orders, 1)
	s.Equal(2, page.Page)

	resp = s.api.JSON(t, http.MethodGet, "/api/v1/orders?status=paid", "auth0|customer", nil)
	s.Require().Equal(http.StatusOK, resp.Code)
	resp.Decode(t, &page)
	s.Require().Len(page.Orders, 1)
	s.Equal(paid.ID, page.Orders[0].ID)

	resp = s.api.JSON(t, http.MethodGet, "/api/v1/orders", "auth0|admin", nil)
	s.Require().Equal(http.StatusOK, resp.Code)
	resp.Decode(t, &page)
	s.EqualValues(5, page.Total)
}

func (s *OrderIntegrationTestSuite) TestGetOrderAccess() {
	order := testutil.CreateOrder(s.T(), s.api.DB, s.customer, s.shirt)
	path := fmt.Sprintf("/api/v1/orders/%d", order.ID)

	s.Equal(http.StatusOK, s.api.JSON(s.T(), http.MethodGet, path, "auth0|customer", nil).Code)
	s.Equal(http.StatusOK, s.api.JSON(s.T(), http.MethodGet, path, "auth0|admin", nil).Code)
	s.Equal(http.StatusForbidden, s.api.JSON(s.T(), http.MethodGet, path, "auth0|other", nil).Code)

	resp := s.api.JSON(s.T(), http.MethodGet, "/api/v1/orders/9999", "auth0|customer", nil)
	s.Equal(http.StatusNotFound, resp.Code)
	s.Equal("ORDER_NOT_FOUND", resp.Error.Code)

	resp = s.api.JSON(s.T(), http.MethodGet, "/api/v1/orders/abc", "auth0|customer", nil)
	s.Equal(http.StatusBadRequest, resp.Code)
	s.Equal("INVALID_ORDER_ID", resp.Error.Code)
}

func (s *OrderIntegrationTestSuite) TestDiscountRules() {
	order := testutil.CreateOrder(s.T(), s.api.DB, s.customer, s.shirt)
	path := fmt.Sprintf("/api/v1/orders/%d/discount", order.ID)

	resp := s.api.JSON(s.T(), http.MethodPatch, path, "auth0|admin", map[string]string{"amount": "-1"})
	s.Equal(http.StatusBadRequest, resp.Code)
	s.Equal("INVALID_DISCOUNT", resp.Error.Code)

	resp = s.api.JSON(s.T(), http.MethodPatch, path, "auth0|admin", map[string]string{"amount": "100000"})
	s.Equal(http.StatusBadRequest, resp.Code)
	s.Equal("INVALID_DISCOUNT", resp.Error.Code)

	testutil.SetOrderStatus(s.T(), s.api.DB, order.ID, models.OrderStatusProcessing)
	resp = s.api.JSON(s.T(), http.MethodPatch, path, "auth0|admin", map[string]string{"amount": "5"})
	s.Equal(http.StatusConflict, resp.Code)
	s.Equal("ORDER_LOCKED", resp.Error.Code)
}

func (s *OrderIntegrationTestSuite) TestUnknownStatus() {
	order := testutil.CreateOrder(s.T(), s.api.DB, s.customer, s.shirt)

	resp := s.api.JSON(s.T(), http.MethodPatch, fmt.Sprintf("/api/v1/orders/%d/status", order.ID), "auth0|admin",
		map[string]string{"status": "teleported"})
	s.Equal(http.StatusConflict, resp.Code)
	s.Equal("INVALID_STATUS_TRANSITION", resp.Error.Code)
}

func (s *OrderIntegrationTestSuite) TestMessages() {
	order := testutil.CreateOrder(s.T(), s.api.DB, s.customer, s.shirt)
	path := fmt.Sprintf("/api/v1/orders/%d/messages", order.ID)

	resp := s.api.JSON(s.T(), http.MethodPost, path, "auth0|customer", map[string]string{"text": "   "})
	s.Equal(http.StatusBadRequest, resp.Code)
	s.Equal("EMPTY_MESSAGE", resp.Error.Code)

	resp = s.api.JSON(s.T(), http.MethodPost, path, "auth0|customer", map[string]string{})
	s.Equal(http.StatusBadRequest, resp.Code)
	s.Equal("VALIDATION_ERROR", resp.Error.Code)

	resp = s.api.JSON(s.T(), http.MethodPost, path, "auth0|other", map[string]string{"text": "hi"})
	s.Equal(http.StatusForbidden, resp.Code)

	resp = s.api.JSON(s.T(), http.MethodPost, path, "auth0|customer", map[string]string{"text": "  <b>hello</b>  "})
	s.Require().Equal(http.StatusCreated, resp.Code, resp.Error.Message)
	var message models.Message
	resp.Decode(s.T(), &message)
	s.Equal("<b>hello</b>", message.Text)
	s.Equal(s.customer.ID, message.Sender.ID)

	resp = s.api.JSON(s.T(), http.MethodGet, path, "auth0|other", nil)
	s.Equal(http.StatusForbidden, resp.Code)
}

func (s *OrderIntegrationTestSuite) TestNotificationsAreScoped() {
	order := testutil.CreateOrder(s.T(), s.api.DB, s.customer, s.shirt)
	resp := s.api.JSON(s.T(), http.MethodPatch, fmt.Sprintf("/api/v1/orders/%d/status", order.ID), "auth0|admin",
		map[string]string{"status": "paid"})
	s.Require().Equal(http.StatusOK, resp.Code, resp.Error.Message)

	var inbox []models.Notification
	resp = s.api.JSON(s.T(), http.MethodGet, "/api/v1/notifications", "auth0|customer", nil)
	s.Require().Equal(http.StatusOK, resp.Code)
	resp.Decode(s.T(), &inbox)
	s.Require().Len(inbox, 1)
	s.Equal("order.status_changed", inbox[0].Kind)
	s.Equal("paid", inbox[0].Payload["to"])

	resp = s.api.JSON(s.T(), http.MethodGet, "/api/v1/notifications", "auth0|other", nil)
	s.Require().Equal(http.StatusOK, resp.Code)
	resp.Decode(s.T(), &inbox)
	s.Empty(inbox)

	resp = s.api.JSON(s.T(), http.MethodPut, "/api/v1/notifications/1/read", "auth0|other", nil)
	s.Equal(http.StatusNotFound, resp.Code)
}
