package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/irsalhamdi/course-shop/api/middleware"
	"github.com/irsalhamdi/course-shop/core/cart"
	"github.com/irsalhamdi/course-shop/core/course"
	"github.com/irsalhamdi/course-shop/core/order"
	"github.com/sirupsen/logrus"
)

type Cart interface {
	Items() []course.Course
	Clear(ctx context.Context) error
}

// Gateway confirms an order with whatever stands in for payment.
type Gateway interface {
	Submit(ctx context.Context, ord order.Order) (order.Receipt, error)
}

type Runner interface {
	Go(fn func())
}

type Config struct {
	Gateway        Gateway
	Runner         Runner
	Log            logrus.FieldLogger
	DisplayTimeout time.Duration
	SubmitTimeout  time.Duration

	// Overridable in tests.
	Now       func() time.Time
	AfterFunc func(d time.Duration, fn func())
}

type Flow struct {
	cfg  Config
	cart Cart

	mu      sync.Mutex
	state   State
	form    Form
	err     error
	order   *order.Order
	gen     int
	settled chan struct{}
}

func New(c Cart, cfg Config) *Flow {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	if cfg.AfterFunc == nil {
		cfg.AfterFunc = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
	}

	settled := make(chan struct{})
	close(settled)

	return &Flow{
		cfg:     cfg,
		cart:    c,
		state:   Idle,
		settled: settled,
	}
}

// Open shows the checkout form. Opening over a confirmation dismisses it.
func (f *Flow) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case Submitting:
		return ErrSubmitting
	case Open:
		return nil
	}

	f.gen++
	f.state = Open
	f.form = Form{}
	f.err = nil
	f.order = nil
	return nil
}

// Close discards the form. There is no way out of submitting.
func (f *Flow) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case Submitting:
		return ErrSubmitting
	case Open:
		f.state = Idle
		f.form = Form{}
		f.err = nil
	}
	return nil
}

// Submit validates the form and, when it passes, hands an order draft to the
// gateway in the background. A validation error leaves the form open. ctx
// only scopes the acceptance; the submission outlives the request.
func (f *Flow) Submit(ctx context.Context, form Form) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case Submitting:
		return ErrSubmitting
	case Open:
	default:
		return ErrNotOpen
	}

	f.form = form
	f.err = nil

	items := f.cart.Items()
	if err := Validate(form, len(items)); err != nil {
		f.err = err
		return err
	}

	now := f.cfg.Now().UTC()
	draft := order.Order{
		ID:        order.NewID(now),
		Name:      strings.TrimSpace(form.Name),
		Email:     form.Email,
		Items:     items,
		Total:     cart.Total(items).StringFixed(2),
		CreatedAt: now,
	}

	f.state = Submitting
	settled := make(chan struct{})
	f.settled = settled

	log := f.cfg.Log.WithFields(logrus.Fields{
		"order_id": draft.ID,
		"total":    draft.Total,
		"items":    len(draft.Items),
	})
	if id := middleware.ContextRequestID(ctx); id != "" {
		log = log.WithField("req_id", id)
	}
	log.Info("order submitted")

	run := func() { f.process(draft, settled, log) }
	if f.cfg.Runner != nil {
		f.cfg.Runner.Go(run)
	} else {
		go run()
	}
	return nil
}

func (f *Flow) process(draft order.Order, settled chan struct{}, log logrus.FieldLogger) {
	defer close(settled)

	ctx := context.Background()
	if f.cfg.SubmitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.SubmitTimeout)
		defer cancel()
	}

	rc, err := f.submit(ctx, draft)
	if err != nil {
		log.WithError(err).Error("order submission failed")

		f.mu.Lock()
		f.state = Open
		f.err = ErrPaymentFailed
		f.mu.Unlock()
		return
	}

	ord := draft.Confirm(rc)

	if err := f.cart.Clear(context.Background()); err != nil {
		log.WithError(err).Error("clearing cart of a confirmed order")
	}

	f.mu.Lock()
	f.gen++
	gen := f.gen
	f.state = Confirmed
	f.order = &ord
	f.form = Form{}
	f.err = nil
	f.mu.Unlock()

	log.WithField("provider", rc.Provider).Info("order confirmed")

	f.cfg.AfterFunc(f.cfg.DisplayTimeout, func() { f.expire(gen) })
}

// submit turns a gateway panic into an ordinary failure so the flow never
// stays stuck in submitting.
func (f *Flow) submit(ctx context.Context, draft order.Order) (rc order.Receipt, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gateway panic: %v", r)
		}
	}()

	return f.cfg.Gateway.Submit(ctx, draft)
}

func (f *Flow) expire(gen int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.gen != gen || f.state != Confirmed {
		return
	}
	f.state = Idle
	f.order = nil
}

// Settled is closed once no submission is in flight.
func (f *Flow) Settled() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.settled
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.state
}

func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := Snapshot{State: f.state, Form: f.form}
	if f.err != nil {
		s.Error = f.err.Error()
	}
	if f.order != nil {
		ord := *f.order
		s.Order = &ord
	}
	return s
}
