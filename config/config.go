package config

import (
	"time"

	"github.com/ardanlabs/conf/v3"
)

type Config struct {
	conf.Version
	Web struct {
		Address         string        `conf:"default:0.0.0.0:8000"`
		ReadTimeout     time.Duration `conf:"default:5s"`
		WriteTimeout    time.Duration `conf:"default:10s"`
		IdleTimeout     time.Duration `conf:"default:120s"`
		ShutdownTimeout time.Duration `conf:"default:20s"`
	}
	Cors struct {
		Origin string
	}
	Session struct {
		Lifetime    time.Duration `conf:"default:720h"`
		CookieName  string        `conf:"default:shop_session"`
		ShopperIdle time.Duration `conf:"default:30m"`
	}
	Storage struct {
		Backend string `conf:"default:memory,help:memory or postgres"`
	}
	DB       DB
	Checkout Checkout
	Rate     Rate
	Paypal   Paypal
	Stripe   Stripe
}

type DB struct {
	User         string `conf:"default:postgres"`
	Password     string `conf:"default:postgres,mask"`
	Host         string `conf:"default:localhost:5432"`
	Name         string `conf:"default:postgres"`
	MaxIdleConns int    `conf:"default:3"`
	MaxOpenConns int    `conf:"default:5"`
	DisableTLS   bool   `conf:"default:true"`
}

type Checkout struct {
	Gateway        string        `conf:"default:simulated,help:simulated paypal or stripe"`
	Delay          time.Duration `conf:"default:900ms"`
	DisplayTimeout time.Duration `conf:"default:3500ms"`
	SubmitTimeout  time.Duration `conf:"default:30s"`
	Currency       string        `conf:"default:BRL"`
}

type Rate struct {
	Burst    int           `conf:"default:5"`
	Interval time.Duration `conf:"default:1s"`
	Expiry   time.Duration `conf:"default:10m"`
}

type Paypal struct {
	ClientID     string
	Secret       string `conf:"mask"`
	URL          string `conf:"default:https://api-m.sandbox.paypal.com"`
	BillingToken string `conf:"mask,help:billing agreement token approved by the payer"`
}

type Stripe struct {
	APISecret     string `conf:"mask"`
	PaymentMethod string `conf:"default:pm_card_visa"`
}
