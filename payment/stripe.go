package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/irsalhamdi/course-shop/core/order"
	"github.com/irsalhamdi/course-shop/validate"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
)

type Stripe struct {
	api           *stripecl.API
	currency      string
	paymentMethod string
}

func NewStripe(api *stripecl.API, currency string, paymentMethod string) *Stripe {
	return &Stripe{
		api:           api,
		currency:      strings.ToLower(currency),
		paymentMethod: paymentMethod,
	}
}

// Submit creates and confirms a payment intent for the order total.
func (s *Stripe) Submit(ctx context.Context, ord order.Order) (order.Receipt, error) {
	total, err := decimal.NewFromString(ord.Total)
	if err != nil {
		return order.Receipt{}, fmt.Errorf("parsing total of order[%s]: %w", ord.ID, err)
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(total.Shift(2).IntPart()),
		Currency:      stripe.String(s.currency),
		Confirm:       stripe.Bool(true),
		PaymentMethod: stripe.String(s.paymentMethod),
		Description:   stripe.String(ord.ID),
		ReceiptEmail:  stripe.String(ord.Email),
	}
	params.Context = ctx
	params.SetIdempotencyKey(validate.GenerateID())
	params.AddMetadata("order_id", ord.ID)

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return order.Receipt{}, fmt.Errorf("creating stripe payment intent for order[%s]: %w", ord.ID, err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return order.Receipt{}, fmt.Errorf("payment intent[%s] ended with status[%s]", pi.ID, pi.Status)
	}

	return order.Receipt{Provider: "stripe", ProviderID: pi.ID}, nil
}
