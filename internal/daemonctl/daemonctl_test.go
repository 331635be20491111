package daemonctl_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"vidscribe/internal/api"
	"vidscribe/internal/daemonctl"
	"vidscribe/internal/history"
	"vidscribe/internal/testsupport"
)

func TestNewClientRewritesWildcardHost(t *testing.T) {
	client, err := daemonctl.NewClient("0.0.0.0:5000")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.BaseURL() != "http://127.0.0.1:5000" {
		t.Fatalf("unexpected base url %s", client.BaseURL())
	}
	if _, err := daemonctl.NewClient("  "); err == nil {
		t.Fatal("expected error for empty bind")
	}
}

func TestClientHistoryBuildsQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/history" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(api.HistoryListResponse{Items: []api.HistoryEntry{{ID: 3, Kind: "audio"}}})
	}))
	t.Cleanup(srv.Close)

	client, err := daemonctl.NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	items, err := client.History(context.Background(), daemonctl.HistoryQuery{Limit: 5, Kind: "audio", Status: "failed"})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(items) != 1 || items[0].ID != 3 {
		t.Fatalf("unexpected items %#v", items)
	}
	for _, part := range []string{"limit=5", "kind=audio", "status=failed"} {
		if !strings.Contains(gotQuery, part) {
			t.Fatalf("query %q missing %s", gotQuery, part)
		}
	}
}

func TestClientSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "invalid limit"})
	}))
	t.Cleanup(srv.Close)

	client, _ := daemonctl.NewClient(srv.URL)
	_, err := client.History(context.Background(), daemonctl.HistoryQuery{})
	if err == nil || !strings.Contains(err.Error(), "invalid limit") {
		t.Fatalf("expected api error, got %v", err)
	}
	if daemonctl.IsUnavailable(err) {
		t.Fatal("api error should not count as unavailable")
	}
}

func TestClientUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	client, _ := daemonctl.NewClient(addr)
	err := client.Health(context.Background())
	if !daemonctl.IsUnavailable(err) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestProcessInfoFollowsLock(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDirectories())

	running, _, err := daemonctl.ProcessInfo(cfg)
	if err != nil || running {
		t.Fatalf("expected not running, got running=%v err=%v", running, err)
	}

	lock := flock.New(cfg.LockPath())
	if ok, err := lock.TryLock(); err != nil || !ok {
		t.Fatalf("acquire lock: ok=%v err=%v", ok, err)
	}
	t.Cleanup(func() { _ = lock.Unlock() })
	if err := os.WriteFile(cfg.PIDPath(), []byte("4242\n"), 0o644); err != nil {
		t.Fatalf("write pid: %v", err)
	}

	running, pid, err := daemonctl.ProcessInfo(cfg)
	if err != nil || !running || pid != 4242 {
		t.Fatalf("expected running pid 4242, got running=%v pid=%d err=%v", running, pid, err)
	}
}

func TestStopWithoutServer(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDirectories())
	if _, err := daemonctl.Stop(cfg, 0); !errors.Is(err, daemonctl.ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
}

func TestBuildStatusSnapshotOffline(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDirectories(), testsupport.WithProxy("http://u:p@proxy:8080"))
	cfg.Paths.APIBind = "127.0.0.1:1"

	store := testsupport.MustOpenHistory(t, cfg)
	if _, err := store.Record(context.Background(), history.Entry{Kind: history.KindAudio, URL: "https://example.com"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	status, err := daemonctl.BuildStatusSnapshot(context.Background(), cfg)
	if err != nil {
		t.Fatalf("BuildStatusSnapshot: %v", err)
	}
	if status.Running {
		t.Fatal("expected offline snapshot")
	}
	if status.Proxy != "proxy:8080" {
		t.Fatalf("expected redacted proxy, got %q", status.Proxy)
	}
	if status.History == nil || status.History.Total != 1 {
		t.Fatalf("expected history stats, got %#v", status.History)
	}
	if len(status.Checks) == 0 || len(status.Dependencies) == 0 {
		t.Fatalf("expected local checks, got %#v", status)
	}
}
