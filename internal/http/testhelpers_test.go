package httpx

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"

	"github.com/StefanUPB/tng-gtk-common/internal/data"
	"github.com/StefanUPB/tng-gtk-common/internal/mocks"
	"github.com/StefanUPB/tng-gtk-common/internal/service"
	"github.com/StefanUPB/tng-gtk-common/internal/testutil"
)

// gateway wires the router over mocked upstreams and real in-memory storage.
type gateway struct {
	handler    http.Handler
	unpackager *mocks.MockUnpackager
	catalogue  *mocks.MockCatalogue
	store      *data.MemoryStatusStore
	files      *httptest.Server
}

func newGateway(t *testing.T) *gateway {
	t.Helper()
	ctrl := gomock.NewController(t)

	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tgo-packages/archive-1":
			_, _ = io.WriteString(w, "PK-archive-bytes")
		case "/files/c-1":
			_, _ = io.WriteString(w, "descriptor_schema: nsd")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(files.Close)

	unp := mocks.NewMockUnpackager(ctrl)
	cat := mocks.NewMockCatalogue(ctrl)
	cat.EXPECT().ResolveURL(gomock.Any()).DoAndReturn(func(p string) (string, error) {
		return files.URL + "/" + p, nil
	}).AnyTimes()

	store := data.NewMemoryStatusStore(data.DefaultMemoryStatusStoreConfig())

	bucket, err := blob.OpenBucket(context.Background(), "mem://")
	require.NoError(t, err)
	t.Cleanup(func() { _ = bucket.Close() })

	uploads, err := service.NewUploadService(service.UploadServiceOptions{
		Unpackager:  unp,
		Store:       store,
		CallbackURL: "http://tng-gtk-common:5000/on-change",
		Now:         testutil.FixedTimeFunc(testutil.TestTime()),
	})
	require.NoError(t, err)
	callbacks, err := service.NewCallbackService(service.CallbackServiceOptions{
		Store: store,
		Now:   testutil.FixedTimeFunc(testutil.TestTime()),
	})
	require.NoError(t, err)
	materializer, err := service.NewMaterializer(service.MaterializerOptions{Bucket: bucket, Timeout: 5 * time.Second})
	require.NoError(t, err)
	catalogue, err := service.NewCatalogueService(service.CatalogueServiceOptions{
		Catalogue:    cat,
		Materializer: materializer,
	})
	require.NoError(t, err)

	return &gateway{
		handler: NewRouter(RouterServices{
			Uploads:   uploads,
			Callbacks: callbacks,
			Catalogue: catalogue,
		}),
		unpackager: unp,
		catalogue:  cat,
		store:      store,
		files:      files,
	}
}

func (g *gateway) do(r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, r)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func testLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, nil))
}
