package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexedwards/scs/v2"
	"github.com/ardanlabs/conf/v3"
	"github.com/irsalhamdi/course-shop/api"
	"github.com/irsalhamdi/course-shop/api/background"
	"github.com/irsalhamdi/course-shop/config"
	"github.com/irsalhamdi/course-shop/core/checkout"
	"github.com/irsalhamdi/course-shop/core/course"
	"github.com/irsalhamdi/course-shop/core/shopper"
	"github.com/irsalhamdi/course-shop/database"
	"github.com/irsalhamdi/course-shop/payment"
	"github.com/irsalhamdi/course-shop/rate"
	"github.com/irsalhamdi/course-shop/storage"
	"github.com/plutov/paypal/v4"
	"github.com/sirupsen/logrus"
	stripecl "github.com/stripe/stripe-go/v74/client"
)

var build = "develop"

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := Run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func Run(logger *logrus.Logger) error {
	const prefix = "COURSESHOP"
	cfg := config.Config{
		Version: conf.Version{
			Build: build,
			Desc:  "course storefront",
		},
	}

	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	logger.Infof("starting server: build %s", build)
	defer logger.Info("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	logger.Infof("startup config:\n%s", out)

	lw := logger.Writer()
	defer lw.Close()
	errLog := log.New(lw, "", 0)

	courses := course.Catalog()
	for _, c := range courses {
		if err := course.Validate(c); err != nil {
			return fmt.Errorf("invalid catalog entry[%s]: %w", c.ID, err)
		}
	}

	backend, closeBackend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer closeBackend()

	gateway, err := newGateway(context.Background(), cfg)
	if err != nil {
		return err
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.Session.Lifetime
	sessionManager.Cookie.Name = cfg.Session.CookieName
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode

	bg := background.New(logger)

	limiter := rate.NewLimiter(cfg.Rate.Burst, cfg.Rate.Interval, cfg.Rate.Expiry)
	defer limiter.Stop()

	shoppers := shopper.NewRegistry(shopper.Config{
		Backend:        backend,
		Gateway:        gateway,
		Runner:         bg,
		Log:            logger,
		DisplayTimeout: cfg.Checkout.DisplayTimeout,
		SubmitTimeout:  cfg.Checkout.SubmitTimeout,
		IdleTimeout:    cfg.Session.ShopperIdle,
	})
	defer shoppers.Stop()

	mux := api.APIMux(api.APIConfig{
		CorsOrigin: cfg.Cors.Origin,
		Log:        logger,
		Session:    sessionManager,
		Courses:    courses,
		Shoppers:   shoppers,
		Limiter:    limiter,
	})

	api := http.Server{
		Handler:      mux,
		Addr:         cfg.Web.Address,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     errLog,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Infof("starting api router at %s", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("shutting down: signal %s", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}

		if err := bg.Shutdown(ctx); err != nil {
			return fmt.Errorf("could not complete all pending orders: %w", err)
		}
	}
	return nil
}

func openBackend(cfg config.Config) (storage.Backend, func(), error) {
	switch cfg.Storage.Backend {
	case "memory":
		return storage.NewMemory(), func() {}, nil

	case "postgres":
		db, err := database.Open(cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
		}

		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		return storage.NewPostgres(db), func() { db.Close() }, nil
	}

	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

func newGateway(ctx context.Context, cfg config.Config) (checkout.Gateway, error) {
	switch cfg.Checkout.Gateway {
	case "simulated":
		return payment.Simulated{Delay: cfg.Checkout.Delay}, nil

	case "paypal":
		pp, err := paypal.NewClient(cfg.Paypal.ClientID, cfg.Paypal.Secret, cfg.Paypal.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to build the paypal client: %w", err)
		}

		if _, err = pp.GetAccessToken(ctx); err != nil {
			return nil, fmt.Errorf("failed to get the first paypal access token: %w", err)
		}

		gw, err := payment.NewPaypal(pp, cfg.Checkout.Currency, cfg.Paypal.BillingToken)
		if err != nil {
			return nil, fmt.Errorf("failed to build the paypal gateway: %w", err)
		}
		return gw, nil

	case "stripe":
		strp := &stripecl.API{}
		strp.Init(cfg.Stripe.APISecret, nil)

		return payment.NewStripe(strp, cfg.Checkout.Currency, cfg.Stripe.PaymentMethod), nil
	}

	return nil, fmt.Errorf("unknown checkout gateway %q", cfg.Checkout.Gateway)
}
