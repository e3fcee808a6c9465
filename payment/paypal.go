package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/course-shop/core/order"
	"github.com/plutov/paypal/v4"
	"github.com/shopspring/decimal"
)

// Paypal charges a vaulted PayPal billing agreement. The payer approved the
// agreement once, out of band, so orders created against it are capturable
// right away; there is no redirect to PayPal for each purchase.
type Paypal struct {
	client   *paypal.Client
	currency string
	token    string
}

type createOrderRequest struct {
	Intent        string                       `json:"intent"`
	PurchaseUnits []paypal.PurchaseUnitRequest `json:"purchase_units"`
	PaymentSource *paymentSource               `json:"payment_source,omitempty"`
}

type paymentSource struct {
	Token paymentToken `json:"token"`
}

type paymentToken struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

func NewPaypal(client *paypal.Client, currency, billingToken string) (*Paypal, error) {
	if billingToken == "" {
		return nil, errors.New("paypal gateway needs a billing agreement token")
	}
	return &Paypal{client: client, currency: currency, token: billingToken}, nil
}

// Submit creates a CAPTURE order for the whole cart against the billing
// agreement and captures it.
func (p *Paypal) Submit(ctx context.Context, ord order.Order) (order.Receipt, error) {
	items := make([]paypal.Item, 0, len(ord.Items))
	for _, c := range ord.Items {
		items = append(items, paypal.Item{
			Quantity:    "1",
			Name:        c.Title,
			Description: c.Short,
			SKU:         c.ID,

			UnitAmount: &paypal.Money{
				Currency: p.currency,
				Value:    decimal.NewFromFloat(c.Price).StringFixed(2),
			},
		})
	}

	body := createOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []paypal.PurchaseUnitRequest{{
			ReferenceID: ord.ID,
			Items:       items,

			Amount: &paypal.PurchaseUnitAmount{
				Currency: p.currency,
				Value:    ord.Total,

				Breakdown: &paypal.PurchaseUnitAmountBreakdown{ItemTotal: &paypal.Money{
					Currency: p.currency,
					Value:    ord.Total,
				}},
			},
		}},
	}
	if p.token != "" {
		body.PaymentSource = &paymentSource{Token: paymentToken{ID: p.token, Type: "BILLING_AGREEMENT"}}
	}

	req, err := p.client.NewRequest(ctx, http.MethodPost, fmt.Sprintf("%s%s", p.client.APIBase, "/v2/checkout/orders"), body)
	if err != nil {
		return order.Receipt{}, fmt.Errorf("building paypal order request for order[%s]: %w", ord.ID, err)
	}
	req.Header.Set("PayPal-Request-Id", ord.ID)

	created := &paypal.Order{}
	if err := p.client.SendWithAuth(req, created); err != nil {
		return order.Receipt{}, fmt.Errorf("creating paypal order for order[%s]: %w", ord.ID, err)
	}

	if created.Status == "COMPLETED" {
		return order.Receipt{Provider: "paypal", ProviderID: created.ID}, nil
	}

	resp, err := p.client.CaptureOrder(ctx, created.ID, paypal.CaptureOrderRequest{})
	if err != nil {
		return order.Receipt{}, fmt.Errorf("capturing paypal order[%s]: %w", created.ID, err)
	}

	if resp.Status != "COMPLETED" {
		return order.Receipt{}, fmt.Errorf("captured paypal order[%s] with status[%s] different from 'COMPLETED'", created.ID, resp.Status)
	}

	return order.Receipt{Provider: "paypal", ProviderID: created.ID}, nil
}
