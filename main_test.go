package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/minesweeper/game/config"
	"github.com/wricardo/mcp-training/minesweeper/game/engine"
	"github.com/wricardo/mcp-training/minesweeper/game/service"
	"github.com/wricardo/mcp-training/minesweeper/game/session"
	"github.com/wricardo/mcp-training/minesweeper/transport/mcp"
)

func testOptions(t *testing.T, store string) options {
	t.Helper()
	dir := t.TempDir()
	return options{
		Host:        "localhost",
		Port:        8080,
		ConfigDir:   "configs",
		SessionsDir: filepath.Join(dir, "sessions"),
		Store:       store,
		DBPath:      filepath.Join(dir, "sessions.db"),
	}
}

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	expectedAppName := "Minesweeper Game Server"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

func TestFlagDefaults(t *testing.T) {
	app := newApp()

	defaults := map[string]string{
		"host":       "localhost",
		"config-dir": "configs",
		"store":      storeFile,
		"log-level":  "info",
		"log-format": "text",
	}

	found := map[string]bool{}
	for _, f := range app.Flags {
		sf, ok := f.(*cli.StringFlag)
		if !ok {
			continue
		}
		want, tracked := defaults[sf.Name]
		if !tracked {
			continue
		}
		found[sf.Name] = true
		if sf.Value != want {
			t.Errorf("Expected default %q for --%s, got %q", want, sf.Name, sf.Value)
		}
	}
	for name := range defaults {
		if !found[name] {
			t.Errorf("Expected flag --%s", name)
		}
	}

	commands := map[string]bool{}
	for _, c := range app.Commands {
		commands[c.Name] = true
	}
	for _, name := range []string{"server", "stdio-mcp", "play"} {
		if !commands[name] {
			t.Errorf("Expected command %s", name)
		}
	}
}

func TestInitializeServices(t *testing.T) {
	for _, store := range []string{storeMemory, storeFile, storeSQLite} {
		t.Run(store, func(t *testing.T) {
			svcs, err := initializeServices(testOptions(t, store))
			if err != nil {
				t.Fatalf("Failed to initialize services: %v", err)
			}
			defer svcs.Close()

			info, err := svcs.game.CreateSession(context.Background(), "beginner")
			if err != nil {
				t.Fatalf("Failed to create session: %v", err)
			}
			if info.GameState.Width != 9 || info.GameState.MineCount != 10 {
				t.Errorf("Expected beginner board, got %dx%d/%d",
					info.GameState.Width, info.GameState.Height, info.GameState.MineCount)
			}
			if (store == storeMemory) != (svcs.persistence == nil) {
				t.Errorf("Unexpected persistence %T for store %s", svcs.persistence, store)
			}
		})
	}
}

func TestInitializeServices_Errors(t *testing.T) {
	opts := testOptions(t, storeMemory)
	opts.ConfigDir = "/non/existent/path"
	if _, err := initializeServices(opts); err == nil {
		t.Error("Expected error for non-existent config directory")
	}

	opts = testOptions(t, "etcd")
	_, err := initializeServices(opts)
	if err == nil || !strings.Contains(err.Error(), "unknown session store") {
		t.Errorf("Expected unknown store error, got %v", err)
	}
}

func TestPersistedSessionsReload(t *testing.T) {
	opts := testOptions(t, storeFile)

	first, err := initializeServices(opts)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	info, err := first.game.CreateSession(context.Background(), "practice")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if _, err := first.game.Mark(context.Background(), info.ID, 0, 0); err != nil {
		t.Fatalf("Failed to mark: %v", err)
	}

	second, err := initializeServices(opts)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	state, err := second.game.GetGameState(context.Background(), info.ID)
	if err != nil {
		t.Fatalf("Expected session %s to be reloaded, got %v", info.ID, err)
	}
	if state.MarkedCount != 1 {
		t.Errorf("Expected 1 marked tile after reload, got %d", state.MarkedCount)
	}
}

func TestPruneOrphans(t *testing.T) {
	persistence, err := session.NewFilePersistence(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}
	configs, err := config.NewManager("configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	manager := session.NewManagerWithPersistence(persistence)

	kept, _ := manager.Create("", configs.GetDefault())
	gone, _ := manager.Create("", configs.GetDefault())
	if err := persistence.Delete(gone.ID); err != nil {
		t.Fatalf("Failed to delete stored session: %v", err)
	}

	if pruned := pruneOrphans(manager, persistence); pruned != 1 {
		t.Errorf("Expected 1 pruned session, got %d", pruned)
	}
	if _, err := manager.Get(kept.ID); err != nil {
		t.Errorf("Expected kept session to remain, got %v", err)
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 session in memory, got %d", manager.Count())
	}
}

func TestBackgroundRoutinesStop(t *testing.T) {
	manager := session.NewManager()
	configs, err := config.NewManager("configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	game := service.NewGameService(manager, configs)
	if _, err := game.CreateSession(context.Background(), "beginner"); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		sessionCleanupRoutine(ctx, manager, game, time.Millisecond)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expected cleanup routine to stop after cancel")
	}
}

func TestCountByState(t *testing.T) {
	infos := []*service.SessionInfo{
		{ID: "a", GameState: &engine.GameState{State: engine.Playing}},
		{ID: "b", GameState: &engine.GameState{State: engine.Playing}},
		{ID: "c", GameState: &engine.GameState{State: engine.Dead}},
		{ID: "d"},
	}

	counts := countByState(infos)
	if counts[engine.Playing] != 2 || counts[engine.Dead] != 1 || counts[engine.Won] != 0 {
		t.Errorf("Expected 2 playing and 1 dead, got %v", counts)
	}
}

func TestPlayConfig(t *testing.T) {
	cfg, err := playConfig("configs", "", 0)
	if err != nil {
		t.Fatalf("Failed to resolve default config: %v", err)
	}
	if cfg.Width != 9 || cfg.Height != 9 || cfg.MineCount != 10 {
		t.Errorf("Expected beginner default, got %+v", cfg)
	}

	cfg, err = playConfig("configs", "expert", 42)
	if err != nil {
		t.Fatalf("Failed to resolve expert: %v", err)
	}
	if cfg.Width != 30 || cfg.Seed == nil || *cfg.Seed != 42 {
		t.Errorf("Expected seeded expert board, got %+v", cfg)
	}

	again, _ := playConfig("configs", "expert", 0)
	if again.Seed != nil && *again.Seed == 42 {
		t.Error("Expected seed override not to leak into the cached preset")
	}

	if _, err := playConfig("configs", "missing", 0); !errors.Is(err, config.ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestPlayCommandUnknownPreset(t *testing.T) {
	err := newApp().Run(context.Background(), []string{"minesweeper", "--config-dir", "configs", "play", "missing"})
	if !errors.Is(err, config.ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound from play, got %v", err)
	}
}

func TestMCPEndpoint(t *testing.T) {
	apiStub := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	router := newRouter(apiStub, mcp.NewClient("http://127.0.0.1:0"))

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected status 405, got %d", rec.Code)
		}
	})

	t.Run("tools list", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body)))
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "reveal") {
			t.Errorf("Expected reveal tool in response, got %s", rec.Body.String())
		}
	})

	t.Run("api mounted at root", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
		if rec.Code != http.StatusTeapot {
			t.Errorf("Expected request routed to the api handler, got %d", rec.Code)
		}
	})
}

func TestProbeAPI(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer healthy.Close()

	if !probeAPI(healthy.URL) {
		t.Error("Expected healthy server to be detected")
	}

	healthy.Close()
	if probeAPI(healthy.URL) {
		t.Error("Expected closed server not to be detected")
	}
}
