package api_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/retail-dashboard/api"
	"github.com/warp/retail-dashboard/dataset"
	"go.uber.org/goleak"
)

type countingReloader struct{ calls atomic.Int32 }

func (c *countingReloader) Reload(ctx context.Context) (*dataset.Tables, error) {
	c.calls.Add(1)
	return &dataset.Tables{}, nil
}

func writeExports(t *testing.T, dir string, sales string) (string, string) {
	t.Helper()
	products := filepath.Join(dir, "produits.csv")
	salesPath := filepath.Join(dir, "pdv.csv")
	require.NoError(t, os.WriteFile(products, []byte("20240105;1;10;100\n"), 0o644))
	require.NoError(t, os.WriteFile(salesPath, []byte(sales), 0o644))
	return products, salesPath
}

func TestRefresher_ReloadsCacheAfterChange(t *testing.T) {
	opt := goleak.IgnoreCurrent()
	defer goleak.VerifyNone(t, opt)

	// GIVEN: A cache loaded from files in a watched directory
	dir := t.TempDir()
	products, sales := writeExports(t, dir, "20240105,1,10,100,7\n")
	src := &dataset.FileSource{
		Products: dataset.FileSpec{Path: products, Options: dataset.DefaultProductOptions},
		Sales:    dataset.FileSpec{Path: sales, Options: dataset.CSVOptions{Delimiter: ',', HeaderLine: -1}},
	}
	cache := dataset.NewCache(src, nil)
	ctx := context.Background()
	tables, err := cache.Get(ctx)
	require.NoError(t, err)
	require.Len(t, tables.Sales, 1)

	r, err := api.NewRefresher(cache, src.Paths(), 50*time.Millisecond, nil)
	require.NoError(t, err)
	r.Start(ctx)
	defer r.Stop()

	// WHEN: The sales export is rewritten
	require.NoError(t, os.WriteFile(sales, []byte("20240105,1,10,100,7\n20240106,2,10,100,8\n"), 0o644))

	// THEN: The cache serves the new rows after the debounce window
	require.Eventually(t, func() bool {
		current, err := cache.Get(ctx)
		return err == nil && len(current.Sales) == 2
	}, 5*time.Second, 20*time.Millisecond)
	assert.GreaterOrEqual(t, r.Reloads(), 1)
}

func TestRefresher_IgnoresOtherFiles(t *testing.T) {
	opt := goleak.IgnoreCurrent()
	defer goleak.VerifyNone(t, opt)

	dir := t.TempDir()
	products, sales := writeExports(t, dir, "20240105,1,10,100,7\n")
	reloader := &countingReloader{}

	r, err := api.NewRefresher(reloader, []string{products, sales}, 20*time.Millisecond, nil)
	require.NoError(t, err)
	r.Start(context.Background())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	r.Stop()

	assert.Zero(t, reloader.calls.Load())
}

func TestRefresher_DebouncesBursts(t *testing.T) {
	opt := goleak.IgnoreCurrent()
	defer goleak.VerifyNone(t, opt)

	// GIVEN: A long debounce window
	dir := t.TempDir()
	products, sales := writeExports(t, dir, "")
	reloader := &countingReloader{}
	r, err := api.NewRefresher(reloader, []string{products, sales}, 300*time.Millisecond, nil)
	require.NoError(t, err)
	r.Start(context.Background())
	defer r.Stop()

	// WHEN: Both files are written several times in quick succession
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(sales, []byte("20240105,1,10,100,7\n"), 0o644))
		require.NoError(t, os.WriteFile(products, []byte("20240105;1;10;100\n"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	// THEN: A single reload follows once the files are quiet
	require.Eventually(t, func() bool { return reloader.calls.Load() == 1 }, 5*time.Second, 20*time.Millisecond)
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(1), reloader.calls.Load())
}

func TestRefresher_StopWithoutStart(t *testing.T) {
	opt := goleak.IgnoreCurrent()
	defer goleak.VerifyNone(t, opt)

	r, err := api.NewRefresher(&countingReloader{}, []string{filepath.Join(t.TempDir(), "a.csv")}, time.Second, nil)
	require.NoError(t, err)

	r.Stop()
}

func TestNewRefresher_MissingDirectory(t *testing.T) {
	_, err := api.NewRefresher(&countingReloader{}, []string{"/does/not/exist/a.csv"}, time.Second, nil)
	assert.Error(t, err)
}
