package download_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/groundwork-dev/groundwork/pkg/domain/types"
	"github.com/groundwork-dev/groundwork/pkg/infra/download"
)

// recorder keeps every progress report
type recorder struct {
	mu      sync.Mutex
	updates [][2]int64 // written, total
	done    []string
}

func (r *recorder) Update(dest string, written, total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, [2]int64{written, total})
}

func (r *recorder) Done(dest string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = append(r.done, dest)
}

func (r *recorder) last() [2]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates[len(r.updates)-1]
}

func TestClient_Download_Success(t *testing.T) {
	content := bytes.Repeat([]byte("groundwork"), 10000) // spans several chunks
	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Length", strconv.Itoa(len(content)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
	}))
	defer server.Close()

	progress := &recorder{}
	client := download.NewClient(download.WithProgress(progress))

	dest := filepath.Join(t.TempDir(), "premake", "premake-linux.tar.gz")
	skipped, err := client.Download(context.Background(), server.URL+"/premake.tar.gz", dest)
	gt.NoError(t, err)
	gt.Bool(t, skipped).False()

	data, err := os.ReadFile(dest)
	gt.NoError(t, err)
	gt.Value(t, data).Equal(content)

	gt.Number(t, len(progress.updates)).Greater(0)
	gt.Value(t, progress.last()).Equal([2]int64{int64(len(content)), int64(len(content))})
	gt.Value(t, progress.done).Equal([]string{dest})
	gt.Value(t, hits.Load()).Equal(int32(1))

	// no temporary files left behind
	entries, err := os.ReadDir(filepath.Dir(dest))
	gt.NoError(t, err)
	gt.Value(t, len(entries)).Equal(1)
}

func TestClient_Download_SkipsExisting(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("new content"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "SDL2-devel-2.30.2-VC.zip")
	gt.NoError(t, os.WriteFile(dest, []byte("old content"), 0644))

	client := download.NewClient()
	skipped, err := client.Download(context.Background(), server.URL, dest)
	gt.NoError(t, err)
	gt.Bool(t, skipped).True()
	gt.Value(t, hits.Load()).Equal(int32(0))

	data, err := os.ReadFile(dest)
	gt.NoError(t, err)
	gt.String(t, string(data)).Equal("old content")
}

func TestClient_Download_UnknownLength(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		_, _ = w.Write([]byte("part one,"))
		flusher.Flush() // forces chunked encoding, no Content-Length
		_, _ = w.Write([]byte("part two"))
	}))
	defer server.Close()

	progress := &recorder{}
	client := download.NewClient(download.WithProgress(progress))

	dest := filepath.Join(t.TempDir(), "file.bin")
	_, err := client.Download(context.Background(), server.URL, dest)
	gt.NoError(t, err)

	data, err := os.ReadFile(dest)
	gt.NoError(t, err)
	gt.String(t, string(data)).Equal("part one,part two")
	gt.Value(t, progress.last()).Equal([2]int64{17, 0})
	for _, u := range progress.updates {
		gt.Value(t, u[1]).Equal(int64(0))
	}
}

func TestClient_Download_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "missing.zip")
	client := download.NewClient()
	skipped, err := client.Download(context.Background(), server.URL+"/missing.zip", dest)

	gt.Error(t, err)
	gt.Bool(t, skipped).False()
	gt.Bool(t, errors.Is(err, types.ErrNetwork)).True()

	_, statErr := os.Stat(dest)
	gt.Bool(t, errors.Is(statErr, os.ErrNotExist)).True()
}

func TestClient_Download_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("partial"))
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	dir := t.TempDir()
	dest := filepath.Join(dir, "slow.zip")
	progress := &recorder{}
	client := download.NewClient(
		download.WithTimeout(200*time.Millisecond),
		download.WithProgress(progress),
	)
	start := time.Now()
	_, err := client.Download(context.Background(), server.URL, dest)

	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrNetwork)).True()
	gt.True(t, time.Since(start) < 5*time.Second)

	// the progress line is closed on failure too
	gt.Value(t, progress.done).Equal([]string{dest})

	// the partial file is removed
	entries, err := os.ReadDir(dir)
	gt.NoError(t, err)
	gt.Value(t, len(entries)).Equal(0)
}

func TestClient_Download_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := download.NewClient()
	_, err := client.Download(context.Background(), url, filepath.Join(t.TempDir(), "x"))
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrNetwork)).True()
	gt.Value(t, types.ExitCode(err)).Equal(types.ExitNetwork)
}

func TestClient_Download_Cancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("partial"))
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	dir := t.TempDir()
	_, err := download.NewClient().Download(ctx, server.URL, filepath.Join(dir, "installer.exe"))
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrNetwork)).True()

	entries, err := os.ReadDir(dir)
	gt.NoError(t, err)
	gt.Value(t, len(entries)).Equal(0)
}
