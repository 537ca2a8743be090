package fakeapi_test

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/itemdesk/internal/api"
	"github.com/idilsaglam/itemdesk/internal/fakeapi"
	"github.com/idilsaglam/itemdesk/internal/model"
)

func TestLoadFixtureSeedsAndContinuesIDs(t *testing.T) {
	srv := fakeapi.New()
	t.Cleanup(srv.Close)

	require.NoError(t, srv.LoadFixture(filepath.Join("testdata", "items.json")))

	items := srv.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Milk", items[0].Title)
	assert.False(t, items[0].Created().IsZero())
	assert.True(t, items[1].Created().IsZero())

	c, err := api.New(srv.URL())
	require.NoError(t, err)
	it, err := c.Create(context.Background(), model.Draft{Title: "Eggs"})
	require.NoError(t, err)
	assert.Equal(t, 10, it.ID)
}

func TestLoadFixtureMissingFileIsEmpty(t *testing.T) {
	srv := fakeapi.New()
	t.Cleanup(srv.Close)
	srv.Seed(model.Item{ID: 1, Title: "stale"})

	require.NoError(t, srv.LoadFixture(filepath.Join(t.TempDir(), "none.json")))
	assert.Empty(t, srv.Items())
}

func TestFailNextAppliesOnce(t *testing.T) {
	srv := fakeapi.New()
	t.Cleanup(srv.Close)
	srv.FailNext("GET", "/api/items/", http.StatusServiceUnavailable, "maintenance")

	c, err := api.New(srv.URL())
	require.NoError(t, err)

	_, err = c.ListAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, api.StatusCode(err))

	_, err = c.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []fakeapi.Call{
		{Method: "GET", Path: "/api/items/"},
		{Method: "GET", Path: "/api/items/"},
	}, srv.Calls())
}
