// Package checkout drives a shopper from an open checkout form to a confirmed
// order.
//
//	idle --Open--> open --Submit--> submitting --gateway ok--> confirmed --timeout--> idle
//
// A rejected submission stays open with a single error message; a gateway
// failure returns to open with the cart untouched.
package checkout

import (
	"errors"
	"strings"

	"github.com/irsalhamdi/course-shop/core/order"
	"github.com/irsalhamdi/course-shop/validate"
)

type State string

const (
	Idle       State = "idle"
	Open       State = "open"
	Submitting State = "submitting"
	Confirmed  State = "confirmed"
)

var (
	ErrNotOpen    = errors.New("checkout is not open")
	ErrSubmitting = errors.New("an order is being submitted")
)

// Messages shown to the shopper.
var (
	ErrMissingContact = errors.New("fill in name and email")
	ErrEmptyCart      = errors.New("the cart is empty")
	ErrInvalidEmail   = errors.New("invalid email")
	ErrPaymentFailed  = errors.New("payment could not be completed")
)

type Form struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Agree bool   `json:"agree"`
}

type contact struct {
	Name  string `validate:"required"`
	Email string `validate:"required"`
}

// Validate reports the first rule the form breaks: blank contact fields,
// then an empty cart, then a malformed email.
func Validate(f Form, items int) error {
	c := contact{
		Name:  strings.TrimSpace(f.Name),
		Email: strings.TrimSpace(f.Email),
	}
	if err := validate.Check(c); err != nil {
		return ErrMissingContact
	}

	if items == 0 {
		return ErrEmptyCart
	}

	if err := validate.Var(f.Email, "basic_email"); err != nil {
		return ErrInvalidEmail
	}

	return nil
}

type Snapshot struct {
	State State        `json:"state"`
	Error string       `json:"error,omitempty"`
	Form  Form         `json:"form"`
	Order *order.Order `json:"order,omitempty"`
}
