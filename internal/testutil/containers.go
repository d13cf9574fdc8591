// Package testutil starts the backing services integration tests run
// against. Containers are removed through t.Cleanup.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	pgvectorImage = "pgvector/pgvector:0.8.1-pg18"
	s3Image       = "rustfs/rustfs:latest"

	pgCredential = "templeqa"
	s3Credential = "rustfsadmin"
)

// PostgresContainer is a pgvector-enabled Postgres with a templeqa database.
type PostgresContainer struct {
	Host     string
	Port     string
	Database string
}

// S3Container is an S3-compatible object store.
type S3Container struct {
	Host      string
	Port      string
	AccessKey string
	SecretKey string
}

// start runs req and returns the host and mapped port for exposed. The
// container is terminated when the test finishes.
func start(ctx context.Context, t *testing.T, req testcontainers.ContainerRequest, exposed string) (string, string) {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start %s: %v", req.Image, err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate %s: %v", req.Image, err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("%s host: %v", req.Image, err)
	}
	port, err := container.MappedPort(ctx, nat.Port(exposed))
	if err != nil {
		t.Fatalf("%s port %s: %v", req.Image, exposed, err)
	}
	return host, port.Port()
}

// NewPostgresContainer starts Postgres with the pgvector extension available.
func NewPostgresContainer(ctx context.Context, t *testing.T) *PostgresContainer {
	host, port := start(ctx, t, testcontainers.ContainerRequest{
		Image:        pgvectorImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     pgCredential,
			"POSTGRES_PASSWORD": pgCredential,
			"POSTGRES_DB":       pgCredential,
		},
		// Postgres logs readiness once for the init server and once for the real one
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithStartupTimeout(time.Minute),
	}, "5432")

	return &PostgresContainer{Host: host, Port: port, Database: pgCredential}
}

// ConnectionString returns a DSN usable by both pgx and golang-migrate.
func (pc *PostgresContainer) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		pgCredential, pgCredential, pc.Host, pc.Port, pc.Database)
}

// NewS3Container starts an object store for index upload tests.
func NewS3Container(ctx context.Context, t *testing.T) *S3Container {
	host, port := start(ctx, t, testcontainers.ContainerRequest{
		Image:        s3Image,
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"RUSTFS_ACCESS_KEY": s3Credential,
			"RUSTFS_SECRET_KEY": s3Credential,
		},
		WaitingFor: wait.ForListeningPort("9000/tcp").WithStartupTimeout(30 * time.Second),
	}, "9000")

	return &S3Container{Host: host, Port: port, AccessKey: s3Credential, SecretKey: s3Credential}
}

func (sc *S3Container) Endpoint() string {
	return fmt.Sprintf("http://%s:%s", sc.Host, sc.Port)
}

// NewTestPool connects to pc, applies every *.up.sql in migrationsDir and
// closes the pool when the test finishes.
func NewTestPool(ctx context.Context, t *testing.T, pc *PostgresContainer, migrationsDir string) *pgxpool.Pool {
	t.Helper()

	pool, err := connectWithRetry(ctx, pc.ConnectionString(), 5)
	if err != nil {
		t.Fatalf("connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := ApplyMigrations(ctx, pool, migrationsDir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return pool
}

// connectWithRetry covers the window where the port is open but the server
// still refuses sessions.
func connectWithRetry(ctx context.Context, dsn string, attempts int) (*pgxpool.Pool, error) {
	var lastErr error
	for i := 1; i <= attempts; i++ {
		pool, err := pgxpool.New(ctx, dsn)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		lastErr = err
		time.Sleep(time.Duration(i) * 500 * time.Millisecond)
	}
	return nil, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

// ApplyMigrations executes the up migrations in dir in file-name order. It
// does not record versions; use database.Migrate for that.
func ApplyMigrations(ctx context.Context, pool *pgxpool.Pool, dir string) error {
	names, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		return err
	}
	if len(names) == 0 {
		if _, statErr := os.Stat(dir); statErr != nil {
			return fmt.Errorf("migrations dir: %w", statErr)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		sql, err := os.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("migration %s: %w", strings.TrimSuffix(filepath.Base(name), ".up.sql"), err)
		}
	}
	return nil
}

// ClearChunks empties the corpus table between tests.
func ClearChunks(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, "TRUNCATE TABLE document_chunks")
	return err
}
