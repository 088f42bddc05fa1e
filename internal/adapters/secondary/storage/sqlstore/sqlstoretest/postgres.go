package sqlstoretest

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/storage/sqlstore"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage = "postgres:16-alpine"
	postgresPort  = "5432/tcp"
)

// контейнер один на тестовый бинарник, после выхода его убирает reaper testcontainers
var (
	postgresOnce sync.Once
	postgresURL  string
	postgresErr  error
)

// dockerAvailable отвечает ли docker daemon
func dockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, "docker", "info").Run() == nil
}

func startPostgres() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{postgresPort},
		Env: map[string]string{
			"POSTGRES_USER":     "spacegrow",
			"POSTGRES_PASSWORD": "spacegrow",
			"POSTGRES_DB":       "spacegrow",
		},
		// первый "ready" пишет init-скрипт, настоящий старт второй
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort(postgresPort),
		).WithStartupTimeout(90 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("create postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("postgres container host: %w", err)
	}
	port, err := container.MappedPort(ctx, postgresPort)
	if err != nil {
		return "", fmt.Errorf("postgres container port: %w", err)
	}
	return fmt.Sprintf("postgres://spacegrow:spacegrow@%s:%s/spacegrow?sslmode=disable", host, port.Port()), nil
}

// OpenPostgres чистая база Postgres: из SPACEGROW_TEST_POSTGRES_URL, иначе из контейнера.
// Без Docker тест пропускается
func OpenPostgres(t testing.TB) *sqlstore.DB {
	t.Helper()

	if url := os.Getenv(PostgresURLEnv); url != "" {
		return OpenURL(t, url)
	}
	if !dockerAvailable() {
		t.Skip("docker is not available and " + PostgresURLEnv + " is not set")
	}

	postgresOnce.Do(func() {
		postgresURL, postgresErr = startPostgres()
	})
	if postgresErr != nil {
		t.Fatalf("start postgres: %v", postgresErr)
	}
	return OpenURL(t, postgresURL)
}
