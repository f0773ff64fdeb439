package headwater

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/sethvargo/go-password/password"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const ephemeralImage = "postgres:16-alpine"

// ephemeralDB describes a started disposable database service.
type ephemeralDB struct {
	user     string
	password string
	host     string
	port     string
	database string
}

// ephemeralRegistry is the process-wide slot holding the disposable test
// database. The container must outlive every handle returned from it, so
// it is kept for the life of the process; ensure is idempotent and
// Teardown exists for callers that want an orderly shutdown.
type ephemeralRegistry struct {
	mu        sync.Mutex
	db        *ephemeralDB
	container testcontainers.Container

	// start is swapped out by unit tests.
	start func(ctx context.Context) (*ephemeralDB, testcontainers.Container, error)
}

var ephemeral = &ephemeralRegistry{start: startPostgresContainer}

func (r *ephemeralRegistry) ensure(ctx context.Context) (*ephemeralDB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db != nil {
		return r.db, nil
	}
	db, ctr, err := r.start(ctx)
	if err != nil {
		return nil, err
	}
	r.db = db
	r.container = ctr
	return db, nil
}

func (r *ephemeralRegistry) teardown(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.container == nil {
		r.db = nil
		return nil
	}
	err := r.container.Terminate(ctx)
	r.container = nil
	r.db = nil
	return err
}

// TeardownEphemeral terminates the disposable test database container, if
// one was started. Resolution never calls this itself; the container is
// otherwise reclaimed at process exit.
func TeardownEphemeral(ctx context.Context) error {
	return ephemeral.teardown(ctx)
}

func startPostgresContainer(ctx context.Context) (*ephemeralDB, testcontainers.Container, error) {
	pass, err := password.Generate(24, 6, 0, false, false)
	if err != nil {
		return nil, nil, fmt.Errorf("generating ephemeral password: %w", err)
	}
	dbName := "headwater_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]

	req := testcontainers.ContainerRequest{
		Image:        ephemeralImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "headwater",
			"POSTGRES_PASSWORD": pass,
			"POSTGRES_DB":       dbName,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("starting %s container: %w", ephemeralImage, err)
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, nil, fmt.Errorf("resolving container host: %w", err)
	}
	mapped, err := ctr.MappedPort(ctx, nat.Port("5432/tcp"))
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, nil, fmt.Errorf("resolving mapped port: %w", err)
	}

	return &ephemeralDB{
		user:     "headwater",
		password: pass,
		host:     host,
		port:     mapped.Port(),
		database: dbName,
	}, ctr, nil
}
