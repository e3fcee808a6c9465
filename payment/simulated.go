// Package payment holds the gateways a checkout can confirm orders through.
package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/irsalhamdi/course-shop/core/order"
)

// Simulated confirms every order after a fixed delay.
type Simulated struct {
	Delay time.Duration
}

func (s Simulated) Submit(ctx context.Context, ord order.Order) (order.Receipt, error) {
	t := time.NewTimer(s.Delay)
	defer t.Stop()

	select {
	case <-t.C:
	case <-ctx.Done():
		return order.Receipt{}, fmt.Errorf("submitting order[%s]: %w", ord.ID, ctx.Err())
	}

	return order.Receipt{Provider: "simulated", ProviderID: ord.ID}, nil
}
