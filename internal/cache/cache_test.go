package cache_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/itemdesk/internal/api"
	"github.com/idilsaglam/itemdesk/internal/cache"
	"github.com/idilsaglam/itemdesk/internal/fakeapi"
	"github.com/idilsaglam/itemdesk/internal/model"
)

func newStore(t *testing.T, seed ...model.Item) (*cache.Store, *fakeapi.Server) {
	t.Helper()

	srv := fakeapi.New()
	t.Cleanup(srv.Close)
	srv.Seed(seed...)

	c, err := api.New(srv.URL())
	require.NoError(t, err)

	return cache.New(c, nil), srv
}

func ids(items []model.Item) []int {
	out := make([]int, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRefreshReplacesItemsInServerOrder(t *testing.T) {
	t.Parallel()

	st, _ := newStore(t, model.Item{ID: 3, Title: "c"}, model.Item{ID: 1, Title: "a"})

	require.NoError(t, st.Refresh(context.Background()))

	snap := st.Snapshot()
	assert.Equal(t, []int{3, 1}, ids(snap.Items))
	assert.True(t, snap.Loaded)
	assert.False(t, snap.Loading)
	assert.NoError(t, snap.Err)
}

func TestRefreshFailureKeepsPreviousItems(t *testing.T) {
	t.Parallel()

	st, srv := newStore(t, model.Item{ID: 1, Title: "a"})
	require.NoError(t, st.Refresh(context.Background()))

	srv.FailNext("GET", "/api/items/", http.StatusInternalServerError, "boom")
	err := st.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, 500, api.StatusCode(err))

	snap := st.Snapshot()
	assert.Equal(t, []int{1}, ids(snap.Items))
	assert.False(t, snap.Loading)
	assert.Error(t, snap.Err)
}

func TestRefreshReportsLoadingWhileInFlight(t *testing.T) {
	t.Parallel()

	st, srv := newStore(t, model.Item{ID: 1, Title: "a"})
	release := srv.Hold("GET", "/api/items/")

	done := make(chan error, 1)
	go func() { done <- st.Refresh(context.Background()) }()

	waitFor(t, func() bool { return srv.CallCount() == 1 })
	assert.True(t, st.Loading())

	release()
	require.NoError(t, <-done)
	assert.False(t, st.Loading())
}

func TestConcurrentRefreshesShareOneRequest(t *testing.T) {
	t.Parallel()

	st, srv := newStore(t, model.Item{ID: 1, Title: "a"})
	release := srv.Hold("GET", "/api/items/")

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = st.Refresh(context.Background())
		}(i)
	}

	waitFor(t, func() bool { return srv.CallCount() == 1 })
	time.Sleep(50 * time.Millisecond)
	release()
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, srv.CallCount())
	assert.Equal(t, []int{1}, ids(st.Items()))
}

func TestCreateAppendsServerItem(t *testing.T) {
	t.Parallel()

	st, _ := newStore(t, model.Item{ID: 1, Title: "a"})
	require.NoError(t, st.Refresh(context.Background()))
	before := len(st.Items())

	it, err := st.Create(context.Background(), model.Draft{Title: "Milk"})
	require.NoError(t, err)

	items := st.Items()
	assert.Len(t, items, before+1)
	assert.Equal(t, it, items[len(items)-1])
	assert.Equal(t, 2, it.ID)
}

func TestFailedMutationsLeaveCacheUnchanged(t *testing.T) {
	t.Parallel()

	st, srv := newStore(t, model.Item{ID: 1, Title: "a"}, model.Item{ID: 2, Title: "b"})
	ctx := context.Background()
	require.NoError(t, st.Refresh(ctx))
	before := st.Snapshot()

	srv.FailNext("POST", "/api/items/", http.StatusInternalServerError, "nope")
	_, err := st.Create(ctx, model.Draft{Title: "c"})
	require.Error(t, err)

	srv.FailNext("PUT", "/api/items/1", http.StatusInternalServerError, "nope")
	_, err = st.Update(ctx, 1, model.Draft{Title: "changed"})
	require.Error(t, err)

	_, err = st.Delete(ctx, 99)
	require.ErrorIs(t, err, api.ErrNotFound)

	after := st.Snapshot()
	if diff := cmp.Diff(before.Items, after.Items); diff != "" {
		t.Fatalf("items changed (-before +after):\n%s", diff)
	}
	assert.Equal(t, before.Version, after.Version)
}

func TestUpdateReplacesInPlace(t *testing.T) {
	t.Parallel()

	st, _ := newStore(t,
		model.Item{ID: 1, Title: "a"},
		model.Item{ID: 2, Title: "b"},
		model.Item{ID: 3, Title: "c"},
	)
	require.NoError(t, st.Refresh(context.Background()))

	_, err := st.Update(context.Background(), 2, model.Draft{Title: "B", Description: "big"})
	require.NoError(t, err)

	items := st.Items()
	assert.Equal(t, []int{1, 2, 3}, ids(items))
	assert.Equal(t, "B", items[1].Title)
	assert.Equal(t, "big", items[1].Description)
}

func TestDeleteRemovesItem(t *testing.T) {
	t.Parallel()

	st, _ := newStore(t, model.Item{ID: 1, Title: "a"}, model.Item{ID: 2, Title: "b"})
	require.NoError(t, st.Refresh(context.Background()))

	_, err := st.Delete(context.Background(), 1)
	require.NoError(t, err)

	_, found := st.Find(1)
	assert.False(t, found)
	assert.Equal(t, []int{2}, ids(st.Items()))
}

func TestRefreshAfterMutationsMatchesDirectUpdates(t *testing.T) {
	t.Parallel()

	st, _ := newStore(t, model.Item{ID: 1, Title: "a"}, model.Item{ID: 2, Title: "b"})
	ctx := context.Background()
	require.NoError(t, st.Refresh(ctx))

	_, err := st.Create(ctx, model.Draft{Title: "c", Description: "third"})
	require.NoError(t, err)
	_, err = st.Update(ctx, 1, model.Draft{Title: "A"})
	require.NoError(t, err)
	_, err = st.Delete(ctx, 2)
	require.NoError(t, err)

	direct := st.Items()
	require.NoError(t, st.Refresh(ctx))

	if diff := cmp.Diff(direct, st.Items()); diff != "" {
		t.Fatalf("refresh diverged from direct updates (-direct +refreshed):\n%s", diff)
	}
}

type listResult struct {
	items []model.Item
	err   error
}

func listOf(items ...model.Item) listResult { return listResult{items: items} }

// scriptedRemote lets a test decide when each ListAll returns and with
// what: the n-th call waits on lists[n].
type scriptedRemote struct {
	lists     []chan listResult
	listCalls atomic.Int32
	created   model.Item
}

func newScriptedRemote(calls int, created model.Item) *scriptedRemote {
	r := &scriptedRemote{created: created}
	for range calls {
		r.lists = append(r.lists, make(chan listResult, 1))
	}
	return r
}

func (r *scriptedRemote) ListAll(ctx context.Context) ([]model.Item, error) {
	n := r.listCalls.Add(1) - 1
	select {
	case res := <-r.lists[n]:
		return res.items, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *scriptedRemote) Create(context.Context, model.Draft) (model.Item, error) {
	return r.created, nil
}

func (r *scriptedRemote) Update(_ context.Context, id int, d model.Draft) (model.Item, error) {
	return model.Item{ID: id, Title: d.Title, Description: d.Description}, nil
}

func (r *scriptedRemote) Delete(context.Context, int) (api.DeleteResult, error) {
	return api.DeleteResult{}, errors.New("not scripted")
}

func TestRefreshRefetchesWhenAMutationLandsInFlight(t *testing.T) {
	t.Parallel()

	remote := newScriptedRemote(2, model.Item{ID: 2, Title: "new"})
	st := cache.New(remote, nil)

	done := make(chan error, 1)
	go func() { done <- st.Refresh(context.Background()) }()
	waitFor(t, func() bool { return remote.listCalls.Load() == 1 })

	_, err := st.Create(context.Background(), model.Draft{Title: "new"})
	require.NoError(t, err)

	// The first list was taken before the create landed; the second after.
	remote.lists[0] <- listOf(model.Item{ID: 1, Title: "old"})
	remote.lists[1] <- listOf(model.Item{ID: 1, Title: "old"}, model.Item{ID: 2, Title: "new"})
	require.NoError(t, <-done)

	snap := st.Snapshot()
	assert.Equal(t, []int{1, 2}, ids(snap.Items))
	assert.True(t, snap.Loaded)
	assert.NoError(t, snap.Err)
	assert.Equal(t, int32(2), remote.listCalls.Load())
}

func TestOvertakenRefreshFailureIsDropped(t *testing.T) {
	t.Parallel()

	remote := newScriptedRemote(2, model.Item{ID: 2, Title: "new"})
	st := cache.New(remote, nil)

	first := make(chan error, 1)
	go func() { first <- st.Refresh(context.Background()) }()
	waitFor(t, func() bool { return remote.listCalls.Load() == 1 })

	_, err := st.Create(context.Background(), model.Draft{Title: "new"})
	require.NoError(t, err)

	second := make(chan error, 1)
	go func() { second <- st.Refresh(context.Background()) }()
	waitFor(t, func() bool { return remote.listCalls.Load() == 2 })

	remote.lists[1] <- listOf(model.Item{ID: 1, Title: "old"}, model.Item{ID: 2, Title: "new"})
	require.NoError(t, <-second)

	remote.lists[0] <- listResult{err: errors.New("boom")}
	require.NoError(t, <-first)

	snap := st.Snapshot()
	assert.NoError(t, snap.Err)
	assert.Equal(t, []int{1, 2}, ids(snap.Items))
}

func TestRefreshAfterMutationStartsANewRequest(t *testing.T) {
	t.Parallel()

	remote := newScriptedRemote(2, model.Item{ID: 2, Title: "new"})
	st := cache.New(remote, nil)

	first := make(chan error, 1)
	go func() { first <- st.Refresh(context.Background()) }()
	waitFor(t, func() bool { return remote.listCalls.Load() == 1 })

	_, err := st.Create(context.Background(), model.Draft{Title: "new"})
	require.NoError(t, err)

	second := make(chan error, 1)
	go func() { second <- st.Refresh(context.Background()) }()
	waitFor(t, func() bool { return remote.listCalls.Load() == 2 })

	remote.lists[0] <- listOf(model.Item{ID: 1, Title: "old"})
	remote.lists[1] <- listOf(model.Item{ID: 1, Title: "old"}, model.Item{ID: 2, Title: "new"})
	require.NoError(t, <-first)
	require.NoError(t, <-second)

	assert.Equal(t, []int{1, 2}, ids(st.Items()))
}
