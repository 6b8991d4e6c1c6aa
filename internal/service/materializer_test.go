package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"

	"github.com/StefanUPB/tng-gtk-common/internal/domain/model"
	apperrors "github.com/StefanUPB/tng-gtk-common/internal/errors"
)

func newTestBucket(t *testing.T) *blob.Bucket {
	t.Helper()
	b, err := blob.OpenBucket(context.Background(), "mem://")
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func listKeys(t *testing.T, b *blob.Bucket) []string {
	t.Helper()
	var keys []string
	iter := b.List(nil)
	for {
		obj, err := iter.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return keys
		}
		require.NoError(t, err)
		keys = append(keys, obj.Key)
	}
}

func newTestMaterializer(t *testing.T, b *blob.Bucket, coalesce bool) *Materializer {
	t.Helper()
	m, err := NewMaterializer(MaterializerOptions{Bucket: b, Timeout: 5 * time.Second, Coalesce: coalesce})
	require.NoError(t, err)
	return m
}

func TestMaterializer_Materialize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, model.PackageFileContentType, r.Header.Get("Content-Type"))
		_, _ = io.WriteString(w, "PK\x03\x04archive")
	}))
	t.Cleanup(srv.Close)

	bucket := newTestBucket(t)
	m := newTestMaterializer(t, bucket, false)
	ctx := context.Background()

	file, err := m.Materialize(ctx, MaterializeRequest{
		SourceURL:   srv.URL + "/tgo-packages/f-1",
		FileName:    "nested/dir/demo.tgo",
		ContentType: model.PackageFileContentType,
	})
	require.NoError(t, err)
	assert.Equal(t, "demo.tgo", file.FileName)
	assert.Equal(t, model.PackageFileContentType, file.ContentType)
	assert.EqualValues(t, len("PK\x03\x04archive"), file.Size)
	assert.True(t, strings.HasSuffix(file.Key, "-demo.tgo"))
	assert.NotContains(t, file.Key, "/")

	r, err := m.Open(ctx, file)
	require.NoError(t, err)
	defer r.Close()
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "PK\x03\x04archive", string(body))

	attrs, err := bucket.Attributes(ctx, file.Key)
	require.NoError(t, err)
	assert.Equal(t, `attachment; filename="demo.tgo"`, attrs.ContentDisposition)
}

func TestMaterializer_DefaultContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "data")
	}))
	t.Cleanup(srv.Close)

	m := newTestMaterializer(t, newTestBucket(t), false)
	file, err := m.Materialize(context.Background(), MaterializeRequest{SourceURL: srv.URL, FileName: "blob.bin"})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultFileContentType, file.ContentType)
}

func TestMaterializer_FailedTransfersLeaveNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/short":
			w.Header().Set("Content-Length", "1000")
			_, _ = io.WriteString(w, "only a few bytes")
		case "/missing":
			http.NotFound(w, r)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	t.Cleanup(srv.Close)

	bucket := newTestBucket(t)
	m := newTestMaterializer(t, bucket, false)

	for _, p := range []string{"/short", "/missing", "/error"} {
		_, err := m.Materialize(context.Background(), MaterializeRequest{SourceURL: srv.URL + p, FileName: "demo.tgo"})
		require.Error(t, err, p)
		assert.True(t, apperrors.IsTransport(err), p)
	}

	_, err := m.Materialize(context.Background(), MaterializeRequest{SourceURL: "http://127.0.0.1:1/x", FileName: "demo.tgo"})
	assert.True(t, apperrors.IsTransport(err))

	assert.Empty(t, listKeys(t, bucket))
}

func TestMaterializer_RetryAfterFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, "complete")
	}))
	t.Cleanup(srv.Close)

	bucket := newTestBucket(t)
	m := newTestMaterializer(t, bucket, false)
	req := MaterializeRequest{SourceURL: srv.URL, FileName: "demo.tgo"}

	_, err := m.Materialize(context.Background(), req)
	require.Error(t, err)

	file, err := m.Materialize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{file.Key}, listKeys(t, bucket))
}

func TestMaterializer_InvalidFileName(t *testing.T) {
	m := newTestMaterializer(t, newTestBucket(t), false)
	for _, name := range []string{"", "  ", ".", "..", "a/..", "/"} {
		_, err := m.Materialize(context.Background(), MaterializeRequest{SourceURL: "http://unused", FileName: name})
		assert.True(t, apperrors.IsValidation(err), "name %q", name)
	}
}

func TestMaterializer_CoalescesConcurrentRequests(t *testing.T) {
	var hits atomic.Int32
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			started <- struct{}{}
		}
		<-release
		_, _ = io.WriteString(w, "shared body")
	}))
	t.Cleanup(srv.Close)

	bucket := newTestBucket(t)
	m := newTestMaterializer(t, bucket, true)
	req := MaterializeRequest{SourceURL: srv.URL + "/files/f-1", FileName: "list.yml"}

	const callers = 8
	results := make([]model.MaterializedFile, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			file, err := m.Materialize(context.Background(), req)
			assert.NoError(t, err)
			results[i] = file
		}(i)
	}

	<-started
	time.Sleep(200 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, hits.Load())
	for _, r := range results {
		assert.Equal(t, results[0].Key, r.Key)
	}
	assert.Len(t, listKeys(t, bucket), 1)
}

func TestSafeFileName(t *testing.T) {
	got, err := SafeFileName(`C:\uploads\demo.tgo`)
	require.NoError(t, err)
	assert.Equal(t, "demo.tgo", got)

	got, err = SafeFileName("../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, "passwd", got)
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename="demo.tgo"`, ContentDisposition("demo.tgo"))
	assert.Equal(t, `attachment; filename="a\"b"`, ContentDisposition(`a"b`))
}
