package middleware

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/course-shop/api/web"
	"github.com/irsalhamdi/course-shop/core/client"
	"github.com/irsalhamdi/course-shop/validate"
)

const clientIDKey = "client_id"

// LoadAndSave loads the session named by the request cookie and commits it
// once the rest of the chain is done.
func LoadAndSave(sm *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			var err error

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				err = handler(r.Context(), w, r)
			})
			sm.LoadAndSave(next).ServeHTTP(w, r.WithContext(ctx))

			return err
		}
		return h
	}
	return m
}

// Client gives every session a stable client id and puts it in the context.
func Client(sm *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			id := sm.GetString(ctx, clientIDKey)
			if validate.CheckID(id) != nil {
				id = validate.GenerateID()
				sm.Put(ctx, clientIDKey, id)
			}

			return handler(client.Set(ctx, id), w, r)
		}
		return h
	}
	return m
}
