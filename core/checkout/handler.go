package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/course-shop/api/web"
	"github.com/irsalhamdi/course-shop/api/weberr"
)

// Resolver finds the checkout flow of the shopper making the request.
type Resolver interface {
	Checkout(ctx context.Context) (*Flow, error)
}

func transitionError(err error) error {
	if errors.Is(err, ErrSubmitting) || errors.Is(err, ErrNotOpen) {
		return weberr.NewError(err, err.Error(), http.StatusConflict)
	}
	return err
}

func HandleShow(res Resolver) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		f, err := res.Checkout(ctx)
		if err != nil {
			return fmt.Errorf("resolving checkout: %w", err)
		}

		return web.Respond(ctx, w, f.Snapshot(), http.StatusOK)
	}
}

func HandleOpen(res Resolver) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		f, err := res.Checkout(ctx)
		if err != nil {
			return fmt.Errorf("resolving checkout: %w", err)
		}

		if err := f.Open(); err != nil {
			return transitionError(err)
		}

		return web.Respond(ctx, w, f.Snapshot(), http.StatusOK)
	}
}

func HandleClose(res Resolver) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		f, err := res.Checkout(ctx)
		if err != nil {
			return fmt.Errorf("resolving checkout: %w", err)
		}

		if err := f.Close(); err != nil {
			return transitionError(err)
		}

		return web.Respond(ctx, w, f.Snapshot(), http.StatusOK)
	}
}

func HandleSubmit(res Resolver) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var form Form
		if err := web.Decode(w, r, &form); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		f, err := res.Checkout(ctx)
		if err != nil {
			return fmt.Errorf("resolving checkout: %w", err)
		}

		switch err := f.Submit(ctx, form); {
		case errors.Is(err, ErrSubmitting), errors.Is(err, ErrNotOpen):
			return transitionError(err)
		case err != nil:
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		return web.Respond(ctx, w, f.Snapshot(), http.StatusAccepted)
	}
}
