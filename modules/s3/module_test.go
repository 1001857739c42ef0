package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/pipesgo/internal/pipe"
)

// fakeS3 is a minimal path-style object store.
type fakeS3 struct {
	mu       sync.Mutex
	objects  map[string][]byte
	requests []string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	switch r.Method {
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = data
		w.Header().Set("ETag", `"etag-1"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet, http.MethodHead:
		data, ok := f.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("ETag", `"etag-1"`)
		w.Header().Set("Last-Modified", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC).Format(http.TimeFormat))
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write(data)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func setup(t *testing.T) (*pipe.Registry, *fakeS3, map[string]any) {
	t.Helper()
	fake := &fakeS3{objects: make(map[string][]byte)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	r := pipe.NewRegistry()
	require.NoError(t, r.Load(&Module{}))

	config := map[string]any{
		"s3-endpoint": srv.URL,
		"bucket":      "states",
		"key":         "prod/deployment.json",
	}
	return r, fake, config
}

func find(t *testing.T, r *pipe.Registry, name string) *pipe.Pipe {
	t.Helper()
	p, err := r.Find(name)
	require.NoError(t, err)
	return p
}

func TestS3_PutObject(t *testing.T) {
	// --- Arrange ---
	r, fake, config := setup(t)
	config["value@"] = "deployment"
	state := map[string]any{"deployment": map[string]any{"id": "d-1"}}

	// --- Act ---
	err := find(t, r, "s3_put").Run(context.Background(), config, state, false, nil)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"PUT /states/prod/deployment.json"}, fake.requests)
	assert.Contains(t, string(fake.objects["/states/prod/deployment.json"]), `"id": "d-1"`)
}

func TestS3_GetObject(t *testing.T) {
	// --- Arrange ---
	r, fake, config := setup(t)
	fake.objects["/states/prod/deployment.json"] = []byte(`{"id": "d-1", "replicas": 2}`)
	config["value@"] = "restored"
	state := map[string]any{}

	// --- Act ---
	err := find(t, r, "s3_get").Run(context.Background(), config, state, false, nil)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "d-1", "replicas": int64(2)}, state["restored"])
}

func TestS3_GetMissingObject(t *testing.T) {
	r, _, config := setup(t)

	err := find(t, r, "s3_get").Run(context.Background(), config, map[string]any{}, false, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to download object")
}

func TestS3_DryRun(t *testing.T) {
	testCases := []string{"s3_put", "s3_get"}

	for _, name := range testCases {
		t.Run(name, func(t *testing.T) {
			r, fake, config := setup(t)
			state := map[string]any{"value": map[string]any{"id": "d-1"}}

			err := find(t, r, name).Run(context.Background(), config, state, true, nil)

			require.NoError(t, err)
			assert.Empty(t, fake.requests)
			assert.Equal(t, map[string]any{"value": map[string]any{"id": "d-1"}}, state)
		})
	}
}

func TestS3_InvalidEndpoint(t *testing.T) {
	r, _, config := setup(t)
	config["s3-endpoint"] = "not a host"

	err := find(t, r, "s3_put").Run(context.Background(), config, map[string]any{"value": 1}, false, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "entering context 's3': failed to create S3 client")
}

func TestS3_UnknownFormat(t *testing.T) {
	r, fake, config := setup(t)
	config["format"] = "xml"

	err := find(t, r, "s3_put").Run(context.Background(), config, map[string]any{"value": 1}, false, nil)

	assert.EqualError(t, err, `unknown document format "xml"`)
	assert.Empty(t, fake.requests)
}
