// Package cart holds a shopper's selected courses and mirrors them into a
// key-value store after every change.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/irsalhamdi/course-shop/core/course"
	"github.com/irsalhamdi/course-shop/storage"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Key is the storage key holding the JSON encoded cart.
const Key = "cart_courses"

type Item = course.Course

type ItemNew struct {
	CourseID string `json:"courseId" validate:"required"`
}

type Summary struct {
	Items []Item `json:"items"`
	Total string `json:"total"`
	Count int    `json:"count"`
}

type Store struct {
	mu    sync.Mutex
	kv    storage.KV
	log   logrus.FieldLogger
	items []Item
}

// Load hydrates a store from kv. A missing, empty or unreadable value yields
// an empty cart; only backend failures are returned.
func Load(ctx context.Context, kv storage.KV, log logrus.FieldLogger) (*Store, error) {
	s := &Store{kv: kv, log: log, items: []Item{}}

	raw, err := kv.Get(ctx, Key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("reading cart: %w", err)
	case len(raw) == 0:
		return s, nil
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		log.WithError(err).WithField("key", Key).Warn("discarding unreadable cart")
		return s, nil
	}

	// Earlier writers may have stored duplicates; keep the first of each.
	for _, it := range items {
		if !s.contains(it.ID) {
			s.items = append(s.items, it)
		}
	}
	return s, nil
}

// Add appends c unless a course with the same id is already present.
func (s *Store) Add(ctx context.Context, c Item) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.contains(c.ID) {
		return false, nil
	}

	s.items = append(s.items, c)
	return true, s.sync(ctx)
}

func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.index(id)
	if idx < 0 {
		return false, nil
	}

	items := make([]Item, 0, len(s.items)-1)
	items = append(items, s.items[:idx]...)
	s.items = append(items, s.items[idx+1:]...)
	return true, s.sync(ctx)
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []Item{}
	if err := s.kv.Delete(ctx, Key); err != nil {
		return fmt.Errorf("deleting cart: %w", err)
	}
	return nil
}

// Sync writes the full cart to storage.
func (s *Store) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sync(ctx)
}

func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Item{}, s.items...)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.contains(id)
}

// Total is the exact sum of item prices rounded to cents.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Total(s.items)
}

func (s *Store) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Summary{
		Items: append([]Item{}, s.items...),
		Total: Total(s.items).StringFixed(2),
		Count: len(s.items),
	}
}

func Total(items []Item) decimal.Decimal {
	tot := decimal.Zero
	for _, it := range items {
		tot = tot.Add(decimal.NewFromFloat(it.Price))
	}
	return tot.Round(2)
}

func (s *Store) sync(ctx context.Context) error {
	raw, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}

	if err := s.kv.Set(ctx, Key, raw); err != nil {
		return fmt.Errorf("writing cart: %w", err)
	}
	return nil
}

func (s *Store) contains(id string) bool {
	return s.index(id) >= 0
}

func (s *Store) index(id string) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
