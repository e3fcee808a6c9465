package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/irsalhamdi/course-shop/api/web"
	"github.com/irsalhamdi/course-shop/api/weberr"
	"github.com/irsalhamdi/course-shop/core/client"
	"github.com/irsalhamdi/course-shop/rate"
)

// RateLimit throttles per client id, falling back to the remote host.
func RateLimit(l *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			key, err := client.Get(ctx)
			if err != nil {
				key, _, err = net.SplitHostPort(r.RemoteAddr)
				if err != nil {
					key = r.RemoteAddr
				}
			}

			if !l.Allow(key) {
				err := errors.New("rate limit exceeded")
				return weberr.NewError(err, "too many requests", http.StatusTooManyRequests)
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
