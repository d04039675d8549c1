package fetch

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mapfish/printplan/internal/mdc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_CapturesSnapshotAtCreation(t *testing.T) {
	var seen http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	creationCtx := mdc.WithContext(testContext(), mdc.Context{mdc.JobIDKey: "job-at-creation"})
	f := NewFactory(creationCtx, nil)
	f.HTTP().Client = server.Client()

	// The worker executing the fetch carries a different diagnostic context;
	// the factory's snapshot must win.
	workerCtx := mdc.WithContext(testContext(), mdc.Context{mdc.JobIDKey: "job-of-worker"})
	resp, err := f.Do(workerCtx, f.NewRequest(server.URL, ""))
	require.NoError(t, err)
	defer resp.Close()

	assert.Equal(t, "job-at-creation", seen.Get("X-Job-ID"))
	assert.Equal(t, "job-at-creation", seen.Get("X-Request-ID"))
}

func TestFactory_CallerContextUntouchedAfterDo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := NewFactory(mdc.WithContext(testContext(), mdc.Context{mdc.JobIDKey: "captured"}), nil)
	f.HTTP().Client = server.Client()

	original := mdc.Context{mdc.JobIDKey: "worker", "extra": "untouched"}
	workerCtx := mdc.WithContext(testContext(), original)

	resp, err := f.Do(workerCtx, f.NewRequest(server.URL, ""))
	require.NoError(t, err)
	defer resp.Close()

	assert.Equal(t, original, mdc.FromContext(workerCtx))
}

func TestFactory_CallerContextUntouchedAfterFailure(t *testing.T) {
	f := NewFactory(mdc.WithContext(testContext(), mdc.Context{mdc.JobIDKey: "captured"}), nil)
	f.HTTP().MaxAttempts = 1

	original := mdc.Context{mdc.JobIDKey: "worker"}
	workerCtx := mdc.WithContext(testContext(), original)

	_, err := f.Do(workerCtx, f.NewRequest("http://127.0.0.1:0", ""))
	require.Error(t, err)
	assert.Equal(t, original, mdc.FromContext(workerCtx))
}

func TestFactory_MutatesSnapshotNever(t *testing.T) {
	creation := mdc.Context{mdc.JobIDKey: "captured"}
	creationCtx := mdc.WithContext(testContext(), creation)
	f := NewFactory(creationCtx, nil)

	// Mutating the map the factory was created from must not leak into the
	// factory's snapshot.
	creation[mdc.JobIDKey] = "mutated-later"
	assert.Equal(t, "captured", f.snapshot[mdc.JobIDKey])
}

func TestFactory_RoutesDataURIWithoutConfiguration(t *testing.T) {
	f := NewFactory(testContext(), nil)
	resp, err := f.Do(testContext(), f.NewRequest("data:text/plain,hi", ""))
	require.NoError(t, err)
	defer resp.Close()
	assert.Equal(t, 200, resp.StatusCode)
}
