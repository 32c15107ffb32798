package testutil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mino-dev/mino-web/internal/api"
	"github.com/mino-dev/mino-web/internal/authprovider"
	"github.com/mino-dev/mino-web/internal/config"
	"github.com/mino-dev/mino-web/internal/domain"
	"github.com/mino-dev/mino-web/internal/metrics"
	"github.com/mino-dev/mino-web/internal/repository"
	repoPostgres "github.com/mino-dev/mino-web/internal/repository/postgres"
	"github.com/mino-dev/mino-web/internal/service"
	"github.com/mino-dev/mino-web/internal/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_mino"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	err = db.AutoMigrate(
		&domain.User{},
		&domain.Project{},
		&domain.Canvas{},
		&domain.Branch{},
		&domain.Frame{},
		&domain.UserCanvas{},
	)
	if err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"user_canvases",
		"frames",
		"branches",
		"canvas",
		"projects",
		"users",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing. The development
// environment keeps cookies non-secure so they survive plain-HTTP test
// servers.
func TestConfig(authURL string) *config.Config {
	return &config.Config{
		Port:               "0", // Random port
		Environment:        "development",
		AuthURL:            authURL,
		AuthJWTSecret:      TestJWTSecret,
		SiteURL:            "http://localhost:3000",
		DevLoginEmail:      "dev@mino.local",
		DevLoginPassword:   "password",
		AuthRequestTimeout: 5 * time.Second,
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	Repos    *repository.Repositories
	Services *service.Services
	Provider *FakeAuthProvider
	Hub      *websocket.Hub
	Config   *config.Config
	// Client never follows redirects, so tests can assert on them.
	Client *http.Client
}

// NewTestServer creates a complete test server with all dependencies
func NewTestServer(t *testing.T) *TestServer {
	return NewTestServerWithEnv(t, "development")
}

// NewTestServerWithEnv creates a test server running in the given
// environment ("production" disables dev login and marks cookies secure).
func NewTestServerWithEnv(t *testing.T, env string) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	fakeProvider := NewFakeAuthProvider(t)

	cfg := TestConfig(fakeProvider.URL())
	cfg.Environment = env

	providerClient := authprovider.NewClient(cfg.AuthURL, cfg.AuthJWTSecret, cfg.AuthRequestTimeout)

	repos := repoPostgres.NewRepositories(testDB.DB)
	services := service.NewServices(repos, nil)

	hub := websocket.NewHub(repos.UserCanvas)
	go hub.Run()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	router := api.NewRouter(services, providerClient, hub, testDB.DB, cfg, collector, registry)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       testDB,
		Repos:    repos,
		Services: services,
		Provider: fakeProvider,
		Hub:      hub,
		Config:   cfg,
		Client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}

	t.Cleanup(func() {
		server.Close()
		hub.Stop()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// WebSocketURL returns the WebSocket URL with token
func (ts *TestServer) WebSocketURL(token string) string {
	wsURL := "ws" + ts.Server.URL[4:] // Replace "http" with "ws"
	return fmt.Sprintf("%s/ws?token=%s", wsURL, token)
}
