// Package shopper keeps the live cart and checkout of every shopper seen by
// the server.
package shopper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/irsalhamdi/course-shop/core/cart"
	"github.com/irsalhamdi/course-shop/core/checkout"
	"github.com/irsalhamdi/course-shop/core/client"
	"github.com/irsalhamdi/course-shop/storage"
	"github.com/sirupsen/logrus"
)

type Shopper struct {
	Cart     *cart.Store
	Checkout *checkout.Flow
}

type Config struct {
	Backend        storage.Backend
	Gateway        checkout.Gateway
	Runner         checkout.Runner
	Log            logrus.FieldLogger
	DisplayTimeout time.Duration
	SubmitTimeout  time.Duration

	// IdleTimeout drops shoppers not seen for that long; their cart is
	// hydrated again from storage on the next request. Zero keeps them forever.
	IdleTimeout time.Duration
}

type Registry struct {
	cfg Config

	mu       sync.Mutex
	shoppers map[string]*entry
	stop     chan struct{}
	once     sync.Once
}

type entry struct {
	shopper    *Shopper
	lastAccess time.Time
}

func NewRegistry(cfg Config) *Registry {
	r := &Registry{
		cfg:      cfg,
		shoppers: make(map[string]*entry),
		stop:     make(chan struct{}),
	}
	if cfg.IdleTimeout > 0 {
		go r.refresh()
	}
	return r
}

// Get returns the shopper for id, hydrating its cart from storage the first
// time it is seen. Hydration runs without holding the registry lock.
func (r *Registry) Get(ctx context.Context, id string) (*Shopper, error) {
	if s, ok := r.lookup(id); ok {
		return s, nil
	}

	log := r.cfg.Log.WithField("client_id", id)

	c, err := cart.Load(ctx, r.cfg.Backend.Namespace(id), log)
	if err != nil {
		return nil, fmt.Errorf("loading cart of client[%s]: %w", id, err)
	}

	s := &Shopper{
		Cart: c,
		Checkout: checkout.New(c, checkout.Config{
			Gateway:        r.cfg.Gateway,
			Runner:         r.cfg.Runner,
			Log:            log,
			DisplayTimeout: r.cfg.DisplayTimeout,
			SubmitTimeout:  r.cfg.SubmitTimeout,
		}),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// A concurrent request for the same id may have won the race.
	if e, ok := r.shoppers[id]; ok {
		e.lastAccess = time.Now()
		return e.shopper, nil
	}
	r.shoppers[id] = &entry{shopper: s, lastAccess: time.Now()}
	return s, nil
}

func (r *Registry) lookup(id string) (*Shopper, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.shoppers[id]
	if !ok {
		return nil, false
	}
	e.lastAccess = time.Now()
	return e.shopper, true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.shoppers)
}

func (r *Registry) Stop() {
	r.once.Do(func() { close(r.stop) })
}

func (r *Registry) refresh() {
	t := time.NewTicker(time.Minute)
	defer t.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-t.C:
			r.evict(time.Now())
		}
	}
}

// evict drops idle shoppers. A shopper with an order in flight or on display
// is kept until its checkout settles.
func (r *Registry) evict(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, e := range r.shoppers {
		if now.Sub(e.lastAccess) <= r.cfg.IdleTimeout {
			continue
		}
		switch e.shopper.Checkout.State() {
		case checkout.Submitting, checkout.Confirmed:
			continue
		}
		delete(r.shoppers, id)
	}
}

func (r *Registry) fromContext(ctx context.Context) (*Shopper, error) {
	id, err := client.Get(ctx)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *Registry) Cart(ctx context.Context) (*cart.Store, error) {
	s, err := r.fromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.Cart, nil
}

func (r *Registry) Checkout(ctx context.Context) (*checkout.Flow, error) {
	s, err := r.fromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.Checkout, nil
}
