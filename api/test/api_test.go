package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/course-shop/api"
	"github.com/irsalhamdi/course-shop/api/background"
	"github.com/irsalhamdi/course-shop/core/cart"
	"github.com/irsalhamdi/course-shop/core/checkout"
	"github.com/irsalhamdi/course-shop/core/course"
	"github.com/irsalhamdi/course-shop/core/shopper"
	"github.com/irsalhamdi/course-shop/payment"
	"github.com/irsalhamdi/course-shop/rate"
	"github.com/irsalhamdi/course-shop/storage"
	"github.com/sirupsen/logrus"
)

type TestEnv struct {
	*httptest.Server
	Backend *storage.Memory
	BG      *background.Background
	client  *http.Client
}

func NewTestEnv(t *testing.T, burst int) *TestEnv {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	backend := storage.NewMemory()
	bg := background.New(log)

	limiter := rate.NewLimiter(burst, time.Hour, time.Hour)
	t.Cleanup(limiter.Stop)

	shoppers := shopper.NewRegistry(shopper.Config{
		Backend:        backend,
		Gateway:        payment.Simulated{Delay: 20 * time.Millisecond},
		Runner:         bg,
		Log:            log,
		DisplayTimeout: 100 * time.Millisecond,
		IdleTimeout:    time.Hour,
	})
	t.Cleanup(shoppers.Stop)

	srv := httptest.NewServer(api.APIMux(api.APIConfig{
		Log:      log,
		Session:  scs.New(),
		Courses:  course.Catalog(),
		Shoppers: shoppers,
		Limiter:  limiter,
	}))
	t.Cleanup(func() {
		srv.Close()
		bg.Shutdown(context.Background())
	})

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	cl := srv.Client()
	cl.Jar = jar

	return &TestEnv{Server: srv, Backend: backend, BG: bg, client: cl}
}

func (e *TestEnv) do(t *testing.T, method, path string, body any, wantStatus int, out any) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}

	r, err := http.NewRequest(method, e.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}

	w, err := e.client.Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != wantStatus {
		b, _ := io.ReadAll(w.Body)
		t.Fatalf("%s %s: status %d, want %d: %s", method, path, w.StatusCode, wantStatus, b)
	}

	if out != nil {
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decoding response: %v", method, path, err)
		}
	}
}

func (e *TestEnv) waitState(t *testing.T, want checkout.State) checkout.Snapshot {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for {
		var snap checkout.Snapshot
		e.do(t, http.MethodGet, "/checkout", nil, http.StatusOK, &snap)
		if snap.State == want {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("checkout stuck in %s, want %s", snap.State, want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCourses(t *testing.T) {
	env := NewTestEnv(t, 100)

	var got []course.Course
	env.do(t, http.MethodGet, "/courses?q=python&level=Todos", nil, http.StatusOK, &got)
	if len(got) != 1 || got[0].Title != "Python para Lógica e Automação" {
		t.Fatalf("unexpected courses %+v", got)
	}

	env.do(t, http.MethodGet, "/courses?level=intermediate", nil, http.StatusOK, &got)
	if len(got) != 2 {
		t.Fatalf("expected two intermediate courses, got %d", len(got))
	}

	env.do(t, http.MethodGet, "/courses?q=cobol", nil, http.StatusOK, &got)
	if len(got) != 0 {
		t.Fatalf("expected no courses, got %+v", got)
	}

	env.do(t, http.MethodGet, "/courses?level=expert", nil, http.StatusBadRequest, nil)

	var c course.Course
	env.do(t, http.MethodGet, "/courses/c3", nil, http.StatusOK, &c)
	if diff := cmp.Diff(course.Catalog()[2], c); diff != "" {
		t.Fatalf("unexpected course (-want +got):\n%s", diff)
	}
	env.do(t, http.MethodGet, "/courses/c9", nil, http.StatusNotFound, nil)
}

func TestCart(t *testing.T) {
	env := NewTestEnv(t, 100)

	var sum cart.Summary
	env.do(t, http.MethodGet, "/cart", nil, http.StatusOK, &sum)
	if sum.Count != 0 || sum.Total != "0.00" {
		t.Fatalf("unexpected empty cart %+v", sum)
	}

	env.do(t, http.MethodPut, "/cart/items", cart.ItemNew{CourseID: "c1"}, http.StatusOK, &sum)
	env.do(t, http.MethodPut, "/cart/items", cart.ItemNew{CourseID: "c1"}, http.StatusOK, &sum)
	if sum.Count != 1 || sum.Items[0].ID != "c1" {
		t.Fatalf("expected a single c1 entry, got %+v", sum)
	}

	env.do(t, http.MethodPut, "/cart/items", cart.ItemNew{CourseID: "c4"}, http.StatusOK, &sum)
	if sum.Total != "108.00" {
		t.Fatalf("total = %s", sum.Total)
	}

	env.do(t, http.MethodPut, "/cart/items", cart.ItemNew{CourseID: "nope"}, http.StatusNotFound, nil)
	env.do(t, http.MethodPut, "/cart/items", cart.ItemNew{}, http.StatusBadRequest, nil)
	env.do(t, http.MethodPut, "/cart/items", map[string]string{"course": "c1"}, http.StatusBadRequest, nil)

	env.do(t, http.MethodDelete, "/cart/items/c1", nil, http.StatusOK, &sum)
	env.do(t, http.MethodDelete, "/cart/items/c1", nil, http.StatusOK, &sum)
	if sum.Count != 1 || sum.Items[0].ID != "c4" {
		t.Fatalf("unexpected cart after removal %+v", sum)
	}

	env.do(t, http.MethodDelete, "/cart", nil, http.StatusNoContent, nil)
	env.do(t, http.MethodGet, "/cart", nil, http.StatusOK, &sum)
	if sum.Count != 0 {
		t.Fatalf("cart not cleared: %+v", sum)
	}
}

func TestCheckout(t *testing.T) {
	env := NewTestEnv(t, 100)

	type errResp struct {
		Error string `json:"error"`
	}
	var er errResp
	var snap checkout.Snapshot

	form := checkout.Form{Name: "Ana", Email: "ana@ex.com", Agree: true}
	env.do(t, http.MethodPost, "/checkout", form, http.StatusConflict, nil)

	env.do(t, http.MethodPost, "/checkout/open", nil, http.StatusOK, &snap)
	if snap.State != checkout.Open {
		t.Fatalf("state = %s", snap.State)
	}

	env.do(t, http.MethodPost, "/checkout", checkout.Form{Name: "", Email: "a@b.com"}, http.StatusUnprocessableEntity, &er)
	if er.Error != "fill in name and email" {
		t.Fatalf("unexpected error %q", er.Error)
	}

	env.do(t, http.MethodPost, "/checkout", form, http.StatusUnprocessableEntity, &er)
	if er.Error != "the cart is empty" {
		t.Fatalf("unexpected error %q", er.Error)
	}

	env.do(t, http.MethodPut, "/cart/items", cart.ItemNew{CourseID: "c1"}, http.StatusOK, nil)

	env.do(t, http.MethodPost, "/checkout", checkout.Form{Name: "Ana", Email: "ana@ex"}, http.StatusUnprocessableEntity, &er)
	if er.Error != "invalid email" {
		t.Fatalf("unexpected error %q", er.Error)
	}

	env.do(t, http.MethodGet, "/checkout", nil, http.StatusOK, &snap)
	if snap.State != checkout.Open || snap.Error != "invalid email" || snap.Form.Email != "ana@ex" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	env.do(t, http.MethodPost, "/checkout", form, http.StatusAccepted, &snap)
	if snap.State != checkout.Submitting {
		t.Fatalf("state = %s, want submitting", snap.State)
	}

	snap = env.waitState(t, checkout.Confirmed)
	if snap.Order == nil || snap.Order.Total != "49.00" || snap.Order.Name != "Ana" || len(snap.Order.Items) != 1 {
		t.Fatalf("unexpected order %+v", snap.Order)
	}

	var sum cart.Summary
	env.do(t, http.MethodGet, "/cart", nil, http.StatusOK, &sum)
	if sum.Count != 0 {
		t.Fatalf("cart not cleared after order: %+v", sum)
	}

	env.waitState(t, checkout.Idle)
}

func TestCheckoutClose(t *testing.T) {
	env := NewTestEnv(t, 100)

	var snap checkout.Snapshot
	env.do(t, http.MethodPost, "/checkout/open", nil, http.StatusOK, nil)
	env.do(t, http.MethodPost, "/checkout", checkout.Form{Name: "Ana"}, http.StatusUnprocessableEntity, nil)
	env.do(t, http.MethodDelete, "/checkout", nil, http.StatusOK, &snap)

	if snap.State != checkout.Idle || snap.Form.Name != "" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestShoppersAreIsolated(t *testing.T) {
	env := NewTestEnv(t, 100)
	env.do(t, http.MethodPut, "/cart/items", cart.ItemNew{CourseID: "c2"}, http.StatusOK, nil)

	other := *env
	jar, _ := cookiejar.New(nil)
	cl := *env.client
	cl.Jar = jar
	other.client = &cl

	var sum cart.Summary
	other.do(t, http.MethodGet, "/cart", nil, http.StatusOK, &sum)
	if sum.Count != 0 {
		t.Fatalf("second shopper sees someone else's cart: %+v", sum)
	}
}

func TestRateLimit(t *testing.T) {
	env := NewTestEnv(t, 2)

	env.do(t, http.MethodPut, "/cart/items", cart.ItemNew{CourseID: "c1"}, http.StatusOK, nil)
	env.do(t, http.MethodPut, "/cart/items", cart.ItemNew{CourseID: "c2"}, http.StatusOK, nil)
	env.do(t, http.MethodPut, "/cart/items", cart.ItemNew{CourseID: "c3"}, http.StatusTooManyRequests, nil)

	env.do(t, http.MethodGet, "/cart", nil, http.StatusOK, nil)
}
