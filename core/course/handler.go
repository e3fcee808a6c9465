package course

import (
	"context"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/course-shop/api/web"
	"github.com/irsalhamdi/course-shop/api/weberr"
)

func HandleList(courses []Course) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		qs := r.URL.Query()

		level, err := ParseLevel(qs.Get("level"))
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("parsing level selector: %w", err))
		}

		return web.Respond(ctx, w, Filter(courses, qs.Get("q"), level), http.StatusOK)
	}
}

func HandleShow(courses []Course) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")

		c, ok := Find(courses, id)
		if !ok {
			return weberr.NotFound(fmt.Errorf("course[%s] not found", id))
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}
