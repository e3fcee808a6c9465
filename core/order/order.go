package order

import (
	"fmt"
	"time"

	"github.com/irsalhamdi/course-shop/core/course"
)

type Order struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Items      []course.Course `json:"items"`
	Total      string          `json:"total"`
	Provider   string          `json:"provider,omitempty"`
	ProviderID string          `json:"providerId,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Receipt is what a payment provider hands back for a confirmed order.
type Receipt struct {
	Provider   string
	ProviderID string
}

func NewID(t time.Time) string {
	return fmt.Sprintf("ORD-%d", t.UnixMilli())
}

// Confirm returns a copy of o bound to the provider receipt.
func (o Order) Confirm(rc Receipt) Order {
	o.Items = append([]course.Course(nil), o.Items...)
	o.Provider = rc.Provider
	o.ProviderID = rc.ProviderID
	return o
}
