package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/irsalhamdi/course-shop/api/middleware"
	"github.com/irsalhamdi/course-shop/api/web"
	"github.com/irsalhamdi/course-shop/core/cart"
	"github.com/irsalhamdi/course-shop/core/checkout"
	"github.com/irsalhamdi/course-shop/core/course"
	"github.com/irsalhamdi/course-shop/core/shopper"
	"github.com/irsalhamdi/course-shop/rate"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin string
	Log        logrus.FieldLogger
	Session    *scs.SessionManager
	Courses    []course.Course
	Shoppers   *shopper.Registry
	Limiter    *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, middleware.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Client(cfg.Session))
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	limit := middleware.RateLimit(cfg.Limiter)

	a.Handle(http.MethodGet, "/courses/{id}", course.HandleShow(cfg.Courses))
	a.Handle(http.MethodGet, "/courses", course.HandleList(cfg.Courses))

	a.Handle(http.MethodGet, "/cart", cart.HandleShow(cfg.Shoppers))
	a.Handle(http.MethodDelete, "/cart", cart.HandleDelete(cfg.Shoppers))
	a.Handle(http.MethodPut, "/cart/items", cart.HandleCreateItem(cfg.Shoppers, cfg.Courses), limit)
	a.Handle(http.MethodDelete, "/cart/items/{course_id}", cart.HandleDeleteItem(cfg.Shoppers))

	a.Handle(http.MethodGet, "/checkout", checkout.HandleShow(cfg.Shoppers))
	a.Handle(http.MethodPost, "/checkout/open", checkout.HandleOpen(cfg.Shoppers))
	a.Handle(http.MethodDelete, "/checkout", checkout.HandleClose(cfg.Shoppers))
	a.Handle(http.MethodPost, "/checkout", checkout.HandleSubmit(cfg.Shoppers), limit)

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
