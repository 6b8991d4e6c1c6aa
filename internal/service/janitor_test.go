package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
)

func seedBucket(t *testing.T, b *blob.Bucket, keys ...string) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, b.WriteAll(context.Background(), k, []byte("x"), nil))
	}
}

func TestJanitor_SweepKeepsFreshObjects(t *testing.T) {
	bucket := newTestBucket(t)
	seedBucket(t, bucket, "a/demo.tgo", "b/list.yml")

	j, err := NewJanitor(JanitorOptions{Bucket: bucket, Retention: time.Hour})
	require.NoError(t, err)

	removed, err := j.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Len(t, listKeys(t, bucket), 2)
}

func TestJanitor_SweepRemovesStaleObjects(t *testing.T) {
	bucket := newTestBucket(t)
	seedBucket(t, bucket, "a/demo.tgo", "b/list.yml", "c/nsd.yml")

	later := time.Now().Add(90 * time.Minute)
	j, err := NewJanitor(JanitorOptions{
		Bucket:    bucket,
		Retention: time.Hour,
		Now:       func() time.Time { return later },
	})
	require.NoError(t, err)

	removed, err := j.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.Empty(t, listKeys(t, bucket))
}

func TestJanitor_SweepEmptiesFileBucket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			w.Header().Set("Content-Length", "100")
			_, _ = io.WriteString(w, "short")
			return
		}
		_, _ = io.WriteString(w, "PK-archive")
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "file://"+dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bucket.Close() })

	m := newTestMaterializer(t, bucket, false)
	for i := 0; i < 5; i++ {
		_, err = m.Materialize(ctx, MaterializeRequest{
			SourceURL: srv.URL + "/tgo-packages/f",
			FileName:  fmt.Sprintf("package-%d.tgo", i),
		})
		require.NoError(t, err)
	}
	_, err = m.Materialize(ctx, MaterializeRequest{SourceURL: srv.URL + "/broken", FileName: "broken.tgo"})
	require.Error(t, err)

	later := time.Now().Add(time.Hour)
	j, err := NewJanitor(JanitorOptions{
		Bucket:    bucket,
		Retention: time.Minute,
		Now:       func() time.Time { return later },
	})
	require.NoError(t, err)

	removed, err := j.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, removed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestJanitor_RunStopsOnCancel(t *testing.T) {
	bucket := newTestBucket(t)
	seedBucket(t, bucket, "a/demo.tgo")

	later := time.Now().Add(2 * time.Hour)
	j, err := NewJanitor(JanitorOptions{
		Bucket:   bucket,
		Interval: 10 * time.Millisecond,
		Now:      func() time.Time { return later },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Run(ctx) }()

	require.Eventually(t, func() bool { return len(listKeys(t, bucket)) == 0 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestNewJanitor_RequiresBucket(t *testing.T) {
	_, err := NewJanitor(JanitorOptions{})
	require.Error(t, err)
}
