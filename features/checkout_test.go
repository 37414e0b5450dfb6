package features

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rafata1/storefront/apperror"
	"github.com/rafata1/storefront/cache"
	"github.com/rafata1/storefront/kafka"
	"github.com/rafata1/storefront/memstore"
	"github.com/rafata1/storefront/model"
	"github.com/rafata1/storefront/service/cart"
	"github.com/rafata1/storefront/service/order"
	"github.com/rafata1/storefront/service/payment"
)

type nopProducer struct{}

func (nopProducer) Push([]kafka.Message) error { return nil }
func (nopProducer) Close() error               { return nil }

type checkoutTestContext struct {
	store    *memstore.Store
	cart     cart.IService
	orders   order.IService
	payments payment.IService
	products map[string]string
	orderID  string
	total    decimal.Decimal
	err      error
}

func (c *checkoutTestContext) reset() {
	logger := zap.NewNop()
	c.store = memstore.New()
	c.cart = cart.NewService(c.store, cache.Noop(), logger)
	c.orders = order.NewService(c.store, nopProducer{}, cache.Noop(), logger)
	c.payments = payment.NewService(c.store, cache.Noop(), logger)
	c.products = map[string]string{}
	c.orderID = ""
	c.total = decimal.Zero
	c.err = nil
}

func (c *checkoutTestContext) aProductPricedWithInStock(name string, price string, stock int) error {
	id := uuid.NewString()
	now := time.Now().UTC()
	c.store.PutProduct(model.Product{
		ID:            id,
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	c.products[name] = id
	return nil
}

func (c *checkoutTestContext) productID(name string) (string, error) {
	id, ok := c.products[name]
	if !ok {
		return "", fmt.Errorf("unknown product %q", name)
	}
	return id, nil
}

func (c *checkoutTestContext) line(owner, name string) (*model.CartLine, error) {
	id, err := c.productID(name)
	if err != nil {
		return nil, err
	}
	lines, err := c.cart.ListItems(context.Background(), owner)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		if lines[i].ProductID == id {
			return &lines[i], nil
		}
	}
	return nil, nil
}

func (c *checkoutTestContext) ownerAddsToTheCart(owner string, qty int, name string) error {
	id, err := c.productID(name)
	if err != nil {
		return err
	}
	c.err = c.cart.AddItem(context.Background(), owner, model.AddToCartInput{ProductID: id, Quantity: qty})
	return nil
}

func (c *checkoutTestContext) ownerSetsTheQuantityOfTo(owner, name string, qty int) error {
	line, err := c.line(owner, name)
	if err != nil {
		return err
	}
	if line == nil {
		return fmt.Errorf("%s has no %q in the cart", owner, name)
	}
	c.err = c.cart.SetQuantity(context.Background(), owner, model.UpdateCartQuantityInput{CartItemID: line.ID, Quantity: qty})
	return nil
}

func (c *checkoutTestContext) ownerChecksOut(owner string) error {
	res, err := c.orders.CreateOrder(context.Background(), owner, model.CreateOrderInput{
		ShippingAddress: model.ShippingAddress{
			RecipientName: "Kim Minsu",
			Phone:         "010-1234-5678",
			PostalCode:    "06236",
			Address:       "Teheran-ro 123",
			DetailAddress: "4F",
		},
	})
	c.err = err
	if err == nil {
		c.orderID = res.OrderID
		c.total = res.TotalAmount
	}
	return nil
}

func (c *checkoutTestContext) ownerConfirmsPaymentFor(owner, ref, amount string) error {
	c.err = c.payments.ConfirmPayment(context.Background(), owner, model.ConfirmPaymentInput{
		OrderID:          c.orderID,
		PaymentReference: ref,
		Amount:           decimal.RequireFromString(amount),
	})
	return nil
}

func (c *checkoutTestContext) ownerCancelsThePayment(owner string) error {
	c.err = c.payments.CancelPayment(context.Background(), owner, model.CancelPaymentInput{OrderID: c.orderID})
	return nil
}

func (c *checkoutTestContext) theCartOfHasOf(owner string, qty int, name string) error {
	line, err := c.line(owner, name)
	if err != nil {
		return err
	}
	if line == nil {
		return fmt.Errorf("expected %q in the cart of %s", name, owner)
	}
	if line.Quantity != qty {
		return fmt.Errorf("expected quantity %d, got %d", qty, line.Quantity)
	}
	return nil
}

func (c *checkoutTestContext) theCartOfIsEmpty(owner string) error {
	lines, err := c.cart.ListItems(context.Background(), owner)
	if err != nil {
		return err
	}
	if len(lines) != 0 {
		return fmt.Errorf("expected empty cart, got %d lines", len(lines))
	}
	return nil
}

func (c *checkoutTestContext) appErr() (*apperror.Error, error) {
	if c.err == nil {
		return nil, errors.New("expected the request to fail but it succeeded")
	}
	var appErr *apperror.Error
	if !errors.As(c.err, &appErr) {
		return nil, fmt.Errorf("unexpected error type: %v", c.err)
	}
	return appErr, nil
}

func (c *checkoutTestContext) theRequestFailsWith(kind string) error {
	appErr, err := c.appErr()
	if err != nil {
		return err
	}
	if appErr.Kind.String() != kind {
		return fmt.Errorf("expected %s, got %s (%s)", kind, appErr.Kind, appErr.Message)
	}
	return nil
}

func (c *checkoutTestContext) theReportedAvailableStockIs(available int) error {
	appErr, err := c.appErr()
	if err != nil {
		return err
	}
	if appErr.Available != available {
		return fmt.Errorf("expected available %d, got %d", available, appErr.Available)
	}
	return nil
}

func (c *checkoutTestContext) theOrderTotalIs(total string) error {
	if c.err != nil {
		return fmt.Errorf("checkout failed: %v", c.err)
	}
	if !c.total.Equal(decimal.RequireFromString(total)) {
		return fmt.Errorf("expected total %s, got %s", total, c.total)
	}
	return nil
}

func (c *checkoutTestContext) theOrderOfHasStatusAndLine(owner, status string, lines int) error {
	detail, err := c.orders.GetOrderByID(context.Background(), owner, c.orderID)
	if err != nil {
		return err
	}
	if detail == nil {
		return fmt.Errorf("order %s not found for %s", c.orderID, owner)
	}
	if string(detail.Status) != status {
		return fmt.Errorf("expected status %s, got %s", status, detail.Status)
	}
	if len(detail.Items) != lines {
		return fmt.Errorf("expected %d lines, got %d", lines, len(detail.Items))
	}
	return nil
}

func (c *checkoutTestContext) ownerHasOrders(owner string, n int) error {
	orders, err := c.orders.ListOrders(context.Background(), owner)
	if err != nil {
		return err
	}
	if len(orders) != n {
		return fmt.Errorf("expected %d orders, got %d", n, len(orders))
	}
	return nil
}

func (c *checkoutTestContext) ownerCannotSeeTheOrder(owner string) error {
	detail, err := c.orders.GetOrderByID(context.Background(), owner, c.orderID)
	if err != nil {
		return err
	}
	if detail != nil {
		return fmt.Errorf("%s can see order %s", owner, c.orderID)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a product "([^"]*)" priced (\d+(?:\.\d+)?) with (\d+) in stock$`, tc.aProductPricedWithInStock)

	// When steps
	ctx.Step(`^owner "([^"]*)" adds (\d+) of "([^"]*)" to the cart$`, tc.ownerAddsToTheCart)
	ctx.Step(`^owner "([^"]*)" sets the quantity of "([^"]*)" to (\d+)$`, tc.ownerSetsTheQuantityOfTo)
	ctx.Step(`^owner "([^"]*)" checks out$`, tc.ownerChecksOut)
	ctx.Step(`^owner "([^"]*)" confirms payment "([^"]*)" for (\d+(?:\.\d+)?)$`, tc.ownerConfirmsPaymentFor)
	ctx.Step(`^owner "([^"]*)" cancels the payment$`, tc.ownerCancelsThePayment)

	// Then steps
	ctx.Step(`^the cart of "([^"]*)" has (\d+) of "([^"]*)"$`, tc.theCartOfHasOf)
	ctx.Step(`^the cart of "([^"]*)" is empty$`, tc.theCartOfIsEmpty)
	ctx.Step(`^the request fails with "([^"]*)"$`, tc.theRequestFailsWith)
	ctx.Step(`^the reported available stock is (\d+)$`, tc.theReportedAvailableStockIs)
	ctx.Step(`^the order total is (\d+(?:\.\d+)?)$`, tc.theOrderTotalIs)
	ctx.Step(`^the order of "([^"]*)" has status "([^"]*)" and (\d+) lines?$`, tc.theOrderOfHasStatusAndLine)
	ctx.Step(`^owner "([^"]*)" has (\d+) orders$`, tc.ownerHasOrders)
	ctx.Step(`^owner "([^"]*)" cannot see the order$`, tc.ownerCannotSeeTheOrder)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
