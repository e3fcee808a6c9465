package cart

import (
	"context"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/course-shop/api/web"
	"github.com/irsalhamdi/course-shop/api/weberr"
	"github.com/irsalhamdi/course-shop/core/course"
	"github.com/irsalhamdi/course-shop/validate"
)

// Resolver finds the cart of the shopper making the request.
type Resolver interface {
	Cart(ctx context.Context) (*Store, error)
}

func HandleShow(res Resolver) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		s, err := res.Cart(ctx)
		if err != nil {
			return fmt.Errorf("resolving cart: %w", err)
		}

		return web.Respond(ctx, w, s.Summary(), http.StatusOK)
	}
}

func HandleCreateItem(res Resolver, courses []course.Course) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in ItemNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		c, ok := course.Find(courses, in.CourseID)
		if !ok {
			return weberr.NotFound(fmt.Errorf("course[%s] not found", in.CourseID))
		}

		s, err := res.Cart(ctx)
		if err != nil {
			return fmt.Errorf("resolving cart: %w", err)
		}

		if _, err := s.Add(ctx, c); err != nil {
			return fmt.Errorf("adding course[%s] to cart: %w", c.ID, err)
		}

		return web.Respond(ctx, w, s.Summary(), http.StatusOK)
	}
}

func HandleDeleteItem(res Resolver) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "course_id")

		s, err := res.Cart(ctx)
		if err != nil {
			return fmt.Errorf("resolving cart: %w", err)
		}

		if _, err := s.Remove(ctx, id); err != nil {
			return fmt.Errorf("removing course[%s] from cart: %w", id, err)
		}

		return web.Respond(ctx, w, s.Summary(), http.StatusOK)
	}
}

func HandleDelete(res Resolver) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		s, err := res.Cart(ctx)
		if err != nil {
			return fmt.Errorf("resolving cart: %w", err)
		}

		if err := s.Clear(ctx); err != nil {
			return fmt.Errorf("clearing cart: %w", err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
