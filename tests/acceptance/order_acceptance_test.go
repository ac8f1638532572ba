package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kendall-kelly/cafe-pos-api/models"
	"github.com/kendall-kelly/cafe-pos-api/services"
	"github.com/kendall-kelly/cafe-pos-api/tests/testutil"
	"github.com/stretchr/testify/suite"
)

// ShiftAcceptanceTestSuite plays a full shift against a running server: the
// owner sets up the shop, a cashier takes and settles orders
type ShiftAcceptanceTestSuite struct {
	suite.Suite
	app    *testutil.App
	server *httptest.Server
}

func (suite *ShiftAcceptanceTestSuite) SetupTest() {
	suite.app = testutil.NewApp(suite.T())
	suite.server = httptest.NewServer(suite.app.Router)
}

func (suite *ShiftAcceptanceTestSuite) TearDownTest() {
	suite.server.Close()
}

// call sends a request and returns the status and raw body
func (suite *ShiftAcceptanceTestSuite) call(method, path, token string, body interface{}) (int, []byte) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, suite.server.URL+path, reader)
	suite.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)
	return resp.StatusCode, raw
}

func (suite *ShiftAcceptanceTestSuite) expect(status int, method, path, token string, body, out interface{}) {
	code, raw := suite.call(method, path, token, body)
	suite.Require().Equal(status, code, "%s %s: %s", method, path, raw)
	if out != nil {
		testutil.DecodeData(suite.T(), raw, out)
	}
}

func (suite *ShiftAcceptanceTestSuite) TestFullShift() {
	owner, cashier := testutil.OwnerToken, testutil.CashierToken

	// owner configures the shop and the menu
	suite.expect(http.StatusOK, http.MethodPut, "/api/v1/settings", owner,
		map[string]string{"shop_name": "Kopi Pagi", "tax_rate": "11"}, nil)

	var latte, bagel models.Product
	suite.expect(http.StatusCreated, http.MethodPost, "/api/v1/products", owner,
		map[string]interface{}{"name": "Latte", "category": "coffee", "price": "30000", "stock": 40}, &latte)
	suite.expect(http.StatusCreated, http.MethodPost, "/api/v1/products", owner,
		map[string]interface{}{"name": "Bagel", "category": "bakery", "price": "20000", "stock": 8}, &bagel)

	var menu []models.Product
	suite.expect(http.StatusOK, http.MethodGet, "/api/v1/products?category=bakery", "", nil, &menu)
	suite.Require().Len(menu, 1)
	suite.Equal("Bagel", menu[0].Name)

	// cashier registers a regular and rings up two orders
	var regular models.Customer
	suite.expect(http.StatusCreated, http.MethodPost, "/api/v1/customers", cashier,
		map[string]interface{}{"name": "Rina", "phone": "0812000111"}, &regular)

	var first models.Order
	suite.expect(http.StatusCreated, http.MethodPost, "/api/v1/orders", cashier, map[string]interface{}{
		"customerId": regular.ID.String(),
		"table":      "A3",
		"cart": []map[string]interface{}{
			{"product": map[string]string{"id": latte.ID.String()}, "qty": "2"},
			{"productId": bagel.ID.String(), "quantity": 1},
		},
		"payment": "qris",
	}, &first)
	suite.Equal("80000", first.Subtotal.String())
	suite.Equal("8800", first.Tax.String())
	suite.Equal("88800", first.Total.String())
	suite.Require().NotNil(first.CustomerID)
	suite.Equal(regular.ID, *first.CustomerID)

	var second models.Order
	suite.expect(http.StatusCreated, http.MethodPost, "/api/v1/orders", cashier, map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": latte.ID.String(), "quantity": 1}},
	}, &second)

	firstRef := fmt.Sprint(*first.NumericID)
	secondRef := fmt.Sprint(*second.NumericID)

	// the receipt and its QR code are addressed by the printed number
	var invoice services.Invoice
	suite.expect(http.StatusOK, http.MethodGet, "/api/v1/orders/"+firstRef+"/invoice", cashier, nil, &invoice)
	suite.Equal("Kopi Pagi", invoice.ShopName)
	suite.Equal("11", invoice.TaxRate)
	suite.Equal("88800.00", invoice.Total)
	suite.Equal("Rina", invoice.CustomerName)
	suite.Equal(first.DisplayID, invoice.DisplayID)
	suite.Len(invoice.Lines, 2)

	code, png := suite.call(http.MethodGet, "/api/v1/orders/"+firstRef+"/qr?size=128", cashier, nil)
	suite.Require().Equal(http.StatusOK, code)
	suite.True(bytes.HasPrefix(png, []byte("\x89PNG")))

	// the first order is served, the second walks out
	for _, status := range []string{models.OrderStatusPreparing, models.OrderStatusReady, models.OrderStatusCompleted} {
		suite.expect(http.StatusOK, http.MethodPatch, "/api/v1/orders/"+firstRef+"/status", cashier,
			map[string]string{"status": status}, nil)
	}
	suite.expect(http.StatusOK, http.MethodPatch, "/api/v1/orders/"+secondRef+"/status", cashier,
		map[string]string{"status": models.OrderStatusCancelled}, nil)

	var restocked models.Product
	suite.expect(http.StatusOK, http.MethodGet, "/api/v1/products/"+latte.ID.String(), "", nil, &restocked)
	suite.Equal(38, restocked.Stock)

	var summary services.SalesSummary
	suite.expect(http.StatusOK, http.MethodGet, "/api/v1/sales/summary", owner, nil, &summary)
	suite.Equal(1, summary.Count)
	suite.Equal("88800.00", summary.Total)
	suite.Equal("88800.00", summary.ByPaymentMethod[models.PaymentQRIS])

	var history []models.Order
	suite.expect(http.StatusOK, http.MethodGet, "/api/v1/orders?customer_id="+regular.ID.String(), cashier, nil, &history)
	suite.Require().Len(history, 1)
	suite.Equal(models.OrderStatusCompleted, history[0].Status)

	var sales []models.Sale
	suite.expect(http.StatusOK, http.MethodGet, "/api/v1/sales", owner, nil, &sales)
	suite.Require().Len(sales, 1)
	suite.Equal(*first.NumericID, sales[0].OrderNumber)
}

func (suite *ShiftAcceptanceTestSuite) TestUnknownReferencesAreNotFound() {
	for _, ref := range []string{"1", "999999999", "not-an-id", "550e8400"} {
		code, raw := suite.call(http.MethodGet, "/api/v1/orders/"+ref, testutil.CashierToken, nil)
		suite.Equal(http.StatusNotFound, code, ref)
		suite.Equal("ORDER_NOT_FOUND", testutil.ErrorCode(suite.T(), raw), ref)
	}
}

func TestShiftAcceptanceSuite(t *testing.T) {
	suite.Run(t, new(ShiftAcceptanceTestSuite))
}
