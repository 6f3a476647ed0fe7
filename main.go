// Command minesweeper hosts Minesweeper boards.
//
// It supports three modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, metrics and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" – plays a single board in the terminal
//
// Flags control host/port, config and session storage, logging, and optional
// ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/minesweeper/api"
	"github.com/wricardo/mcp-training/minesweeper/game/config"
	"github.com/wricardo/mcp-training/minesweeper/game/engine"
	"github.com/wricardo/mcp-training/minesweeper/game/service"
	"github.com/wricardo/mcp-training/minesweeper/game/session"
	"github.com/wricardo/mcp-training/minesweeper/logger"
	"github.com/wricardo/mcp-training/minesweeper/transport/mcp"
	"github.com/wricardo/mcp-training/minesweeper/transport/websocket"
	"github.com/wricardo/mcp-training/minesweeper/tui"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Minesweeper Game Server"
)

const (
	sessionRetention = 24 * time.Hour
	cleanupInterval  = 1 * time.Hour
	syncInterval     = 5 * time.Second
)

// Supported session stores
const (
	storeFile   = "file"
	storeSQLite = "sqlite"
	storeRedis  = "redis"
	storeMemory = "memory"
)

// options carries the resolved flag values
type options struct {
	Host        string
	Port        int
	ConfigDir   string
	SessionsDir string
	Store       string
	DBPath      string
	RedisAddr   string
	LogLevel    string
	LogFormat   string
	Ngrok       bool
	NgrokAuth   string
	NgrokDomain string
}

func (o options) addr() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

// services holds everything the serving modes share
type services struct {
	game        service.GameService
	sessions    *session.Manager
	configs     *config.Manager
	persistence session.SessionPersistence
}

// Close releases store connections
func (s *services) Close() {
	if c, ok := s.persistence.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.Warn("Failed to close session store", "error", err)
		}
	}
}

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		logger.Fatal("Command failed", "error", err)
	}
}

// newApp builds the command tree. Global flags are visible to every subcommand.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "minesweeper",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing board presets", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "Directory for file session storage", Sources: cli.EnvVars("SESSIONS_DIR")},
			&cli.StringFlag{Name: "store", Value: storeFile, Usage: "Session store: file, sqlite, redis or memory", Sources: cli.EnvVars("SESSION_STORE")},
			&cli.StringFlag{Name: "db-path", Value: "sessions.db", Usage: "SQLite database path", Sources: cli.EnvVars("DB_PATH")},
			&cli.StringFlag{Name: "redis-addr", Value: "localhost:6379", Usage: "Redis address", Sources: cli.EnvVars("REDIS_ADDR")},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "Log level: debug, info, warn or error", Sources: cli.EnvVars("LOG_LEVEL")},
			&cli.StringFlag{Name: "log-format", Value: "text", Usage: "Log format: text or json", Sources: cli.EnvVars("LOG_FORMAT")},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logger.Init(cmd.String("log-level"), cmd.String("log-format") == "json")
			return ctx, nil
		},
		DefaultCommand: "server",
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, metrics and MCP endpoint",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runHTTPServer(ctx, optionsFrom(cmd))
				},
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runStdioMCP(ctx, optionsFrom(cmd))
				},
			},
			{
				Name:      "play",
				Usage:     "Play a board in the terminal",
				ArgsUsage: "[preset]",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "seed", Usage: "Seed the mine layout (0 keeps the preset's own seed)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runPlay(optionsFrom(cmd), cmd.Args().First(), uint64(cmd.Int("seed")))
				},
			},
		},
	}
}

func optionsFrom(cmd *cli.Command) options {
	return options{
		Host:        cmd.String("host"),
		Port:        int(cmd.Int("port")),
		ConfigDir:   cmd.String("config-dir"),
		SessionsDir: cmd.String("sessions-dir"),
		Store:       cmd.String("store"),
		DBPath:      cmd.String("db-path"),
		RedisAddr:   cmd.String("redis-addr"),
		LogLevel:    cmd.String("log-level"),
		LogFormat:   cmd.String("log-format"),
		Ngrok:       cmd.Bool("ngrok"),
		NgrokAuth:   cmd.String("ngrok-auth"),
		NgrokDomain: cmd.String("ngrok-domain"),
	}
}

// newPersistence opens the session store selected by opts.Store. The memory
// store returns a nil persistence.
func newPersistence(opts options) (session.SessionPersistence, error) {
	switch opts.Store {
	case storeFile, "":
		return session.NewFilePersistence(opts.SessionsDir)
	case storeSQLite:
		return session.NewSQLitePersistence(opts.DBPath)
	case storeRedis:
		return session.NewRedisPersistence(opts.RedisAddr, os.Getenv("REDIS_PASSWORD"), 0, sessionRetention)
	case storeMemory:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown session store %q", opts.Store)
	}
}

// initializeServices wires session/config managers and the game service
func initializeServices(opts options) (*services, error) {
	configManager, err := config.NewManager(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := newPersistence(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	var sessionManager *session.Manager
	if persistence == nil {
		sessionManager = session.NewManager()
	} else {
		sessionManager = session.NewManagerWithPersistence(persistence)
		if err := sessionManager.LoadPersistedSessions(); err != nil {
			logger.Warn("Failed to load persisted sessions", "error", err)
		}
	}

	return &services{
		game:        service.NewGameService(sessionManager, configManager),
		sessions:    sessionManager,
		configs:     configManager,
		persistence: persistence,
	}, nil
}

// startBackground launches the cleanup and store sync loops; both stop with ctx
func (s *services) startBackground(ctx context.Context) {
	go sessionCleanupRoutine(ctx, s.sessions, s.game, cleanupInterval)
	if s.persistence != nil {
		go persistenceSyncRoutine(ctx, s.sessions, s.persistence, syncInterval)
	}
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within the retention window and logs what is left by state.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, game service.GameService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			manager.CleanupExpiredSessions(sessionRetention)
			infos, err := game.ListSessions(ctx)
			if err != nil {
				continue
			}
			counts := countByState(infos)
			logger.Debug("Live sessions",
				"initialized", counts[engine.Initialized],
				"playing", counts[engine.Playing],
				"won", counts[engine.Won],
				"dead", counts[engine.Dead])
		}
	}
}

// countByState tallies sessions by board state. It works on service
// snapshots so boards are never read outside the service lock.
func countByState(infos []*service.SessionInfo) map[engine.State]int {
	counts := make(map[engine.State]int)
	for _, info := range infos {
		if info.GameState != nil {
			counts[info.GameState.State]++
		}
	}
	return counts
}

// persistenceSyncRoutine drops sessions from memory once their stored copy
// disappears, so deleting a file or key ends the session.
func persistenceSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := pruneOrphans(manager, persistence); pruned > 0 {
				logger.Info("Store sync pruned orphaned sessions", "count", pruned)
			}
		}
	}
}

func pruneOrphans(manager *session.Manager, persistence session.SessionPersistence) int {
	pruned := 0
	for _, s := range manager.List() {
		if persistence.Exists(s.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(s.ID); err == nil {
			pruned++
			logger.Debug("Pruned session from memory", "session_id", s.ID)
		}
	}
	return pruned
}

// newRouter mounts the API server at the root and the MCP JSON-RPC bridge at /mcp
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logger.Error("Failed to encode MCP response", "error", err)
		}
	})
	return mainRouter
}

// runHTTPServer serves the REST API, WebSocket hub, metrics and /mcp until
// SIGINT or SIGTERM. With ngrok enabled the same router is also served
// through a public tunnel.
func runHTTPServer(ctx context.Context, opts options) error {
	svcs, err := initializeServices(opts)
	if err != nil {
		return err
	}
	defer svcs.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svcs.startBackground(ctx)

	hub := websocket.NewHub()
	go hub.Run(ctx)

	addr := opts.addr()
	apiServer := api.NewServer(svcs.game, hub)
	mainRouter := newRouter(apiServer, mcp.NewClient("http://"+addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening",
			"addr", addr,
			"api", fmt.Sprintf("http://%s/api", addr),
			"websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp", fmt.Sprintf("http://%s/mcp", addr),
			"metrics", fmt.Sprintf("http://%s/metrics", addr),
			"store", opts.Store)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if opts.Ngrok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, opts, mainRouter)
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err = <-errCh:
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("HTTP server shutdown error", "error", shutdownErr)
	}

	wg.Wait()
	if saveErr := svcs.sessions.SaveAllSessions(); saveErr != nil {
		logger.Warn("Failed to save sessions on shutdown", "error", saveErr)
	}
	logger.Info("Server stopped")
	return err
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx ends
func runNgrokTunnel(ctx context.Context, opts options, handler http.Handler) {
	if opts.NgrokAuth == "" {
		logger.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if opts.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.NgrokDomain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.NgrokAuth))
	if err != nil {
		logger.Error("Failed to start ngrok tunnel", "error", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("Failed to close ngrok tunnel", "error", err)
		}
	}()

	url := tun.URL()
	logger.Info("Ngrok tunnel established",
		"url", url,
		"api", url+"/api",
		"websocket", url+"/ws?session=<session_id>",
		"mcp", url+"/mcp")

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Error("Ngrok server error", "error", err)
	}
	logger.Info("Ngrok tunnel closed")
}

// probeAPI reports whether an API server answers at baseURL
func probeAPI(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server. It reuses an API already listening
// on the configured address; otherwise it serves an internal API on a random
// loopback port and targets that.
func runStdioMCP(ctx context.Context, opts options) error {
	// stdout carries the protocol
	logger.SetOutput(os.Stderr)

	baseURL := "http://" + opts.addr()
	if probeAPI(baseURL) {
		logger.Info("Using external API server for MCP", "url", baseURL)
	} else {
		svcs, err := initializeServices(opts)
		if err != nil {
			return err
		}
		defer svcs.Close()

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		svcs.startBackground(ctx)

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub()
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(svcs.game, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Internal HTTP server error", "error", err)
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		logger.Info("Started internal HTTP server for MCP stdio", "url", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info("MCP stdio server ready")
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// playConfig resolves the board preset for the terminal game. An empty name
// selects the manager's default; a non-zero seed overrides the preset's seed.
func playConfig(configDir, name string, seed uint64) (*engine.GameConfig, error) {
	manager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	cfg := manager.GetDefault()
	if name != "" {
		if cfg, err = manager.LoadConfig(name); err != nil {
			return nil, err
		}
	}

	if seed != 0 {
		copied := *cfg
		copied.Seed = &seed
		cfg = &copied
	}
	return cfg, nil
}

func runPlay(opts options, name string, seed uint64) error {
	cfg, err := playConfig(opts.ConfigDir, name, seed)
	if err != nil {
		return err
	}

	eng, err := engine.NewEngine(cfg)
	if err != nil {
		return err
	}

	// keep log lines off the alternate screen
	logger.SetOutput(io.Discard)
	return tui.Run(eng, cfg.Name)
}
