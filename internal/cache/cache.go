// Package cache holds the last server-confirmed list of items.
//
// Mutations update the cache from their own response; they do not trigger a
// refetch. Refresh is the only operation that replaces the whole list, and a
// refresh result is applied only if no newer refresh was started and no
// mutation was applied while it was in flight; in the latter case the list is
// fetched again. Concurrent refreshes share a single request.
package cache

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/idilsaglam/itemdesk/internal/api"
	"github.com/idilsaglam/itemdesk/internal/model"
)

const refreshKey = "items"

// Remote is the subset of the transport the cache needs. *api.Client
// satisfies it.
type Remote interface {
	ListAll(ctx context.Context) ([]model.Item, error)
	Create(ctx context.Context, d model.Draft) (model.Item, error)
	Update(ctx context.Context, id int, d model.Draft) (model.Item, error)
	Delete(ctx context.Context, id int) (api.DeleteResult, error)
}

// Snapshot is a consistent copy of the cache state.
type Snapshot struct {
	Items   []model.Item
	Loading bool
	// Loaded is true once any refresh has succeeded.
	Loaded bool
	// Err is the error of the last refresh, cleared by the next success.
	Err error
	// Version increments every time Items changes.
	Version uint64
}

// Store is safe for concurrent use. Every method leaves it fully updated or
// untouched; readers never observe a partial write.
type Store struct {
	remote Remote
	log    *slog.Logger
	group  singleflight.Group

	mu         sync.Mutex
	items      []model.Item
	loaded     bool
	refreshing int
	refreshSeq uint64
	mutations  uint64
	version    uint64
	lastErr    error
}

// New returns an empty store backed by remote.
func New(remote Remote, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{remote: remote, log: log, items: []model.Item{}}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Items:   append([]model.Item(nil), s.items...),
		Loading: s.refreshing > 0,
		Loaded:  s.loaded,
		Err:     s.lastErr,
		Version: s.version,
	}
}

// Items returns a copy of the cached items in server order.
func (s *Store) Items() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Item(nil), s.items...)
}

// Find looks up a cached item by id.
func (s *Store) Find(id int) (model.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := model.IndexOf(s.items, id); i >= 0 {
		return s.items[i], true
	}
	return model.Item{}, false
}

// Loading reports whether a refresh is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshing > 0
}

// Refresh replaces the cached list with the server's. On failure the
// previous items are kept and the error is returned. A result overtaken by
// a newer refresh is dropped without error, whether it succeeded or not. A
// list fetched while a mutation was applied is fetched again, so the cache
// ends on a list taken after every mutation it has seen.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.refreshSeq++
	ticket := s.refreshSeq
	s.refreshing++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.refreshing--
		s.mu.Unlock()
	}()

	for {
		s.mu.Lock()
		seen := s.mutations
		s.mu.Unlock()

		ch := s.group.DoChan(refreshKey, func() (any, error) {
			return s.remote.ListAll(context.WithoutCancel(ctx))
		})

		var res singleflight.Result
		select {
		case res = <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}

		s.mu.Lock()
		switch {
		case ticket != s.refreshSeq:
			latest := s.refreshSeq
			s.mu.Unlock()
			s.log.Debug("dropping overtaken refresh", "ticket", ticket, "latest", latest, "err", res.Err)
			return nil
		case res.Err != nil:
			s.lastErr = res.Err
			s.mu.Unlock()
			s.log.Error("refresh items", "err", res.Err)
			return res.Err
		case seen != s.mutations:
			s.mu.Unlock()
			s.log.Debug("refetching after concurrent mutation", "ticket", ticket)
			continue
		}
		items, _ := res.Val.([]model.Item)
		s.items = append(make([]model.Item, 0, len(items)), items...)
		s.loaded = true
		s.lastErr = nil
		s.version++
		s.mu.Unlock()
		return nil
	}
}

// Create posts d and, once the server confirms, appends the returned item.
func (s *Store) Create(ctx context.Context, d model.Draft) (model.Item, error) {
	it, err := s.remote.Create(ctx, d)
	if err != nil {
		return model.Item{}, err
	}
	s.apply(func(items []model.Item) []model.Item {
		if i := model.IndexOf(items, it.ID); i >= 0 {
			items[i] = it
			return items
		}
		return append(items, it)
	})
	return it, nil
}

// Update saves d over item id and replaces the cached copy in place.
func (s *Store) Update(ctx context.Context, id int, d model.Draft) (model.Item, error) {
	it, err := s.remote.Update(ctx, id, d)
	if err != nil {
		return model.Item{}, err
	}
	s.apply(func(items []model.Item) []model.Item {
		if i := model.IndexOf(items, id); i >= 0 {
			items[i] = it
		}
		return items
	})
	return it, nil
}

// Delete removes item id on the server and then from the cache.
func (s *Store) Delete(ctx context.Context, id int) (api.DeleteResult, error) {
	res, err := s.remote.Delete(ctx, id)
	if err != nil {
		return api.DeleteResult{}, err
	}
	s.apply(func(items []model.Item) []model.Item {
		if i := model.IndexOf(items, id); i >= 0 {
			return append(items[:i], items[i+1:]...)
		}
		return items
	})
	return res, nil
}

// apply runs a confirmed mutation against a private copy and swaps it in.
// Lists fetched before it are refetched by their refresh.
func (s *Store) apply(fn func([]model.Item) []model.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := fn(append([]model.Item(nil), s.items...))
	s.items = next
	s.mutations++
	s.version++
	s.group.Forget(refreshKey)
}
