package storage

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/BerylCAtieno/file-renamer-api/internal/config"
)

// setupMinIO starts MinIO in a container. Requires Docker and TEST_INTEGRATION.
func setupMinIO(t *testing.T) *config.Config {
	t.Helper()

	if testing.Short() || os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION is not set")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "docker.io/minio/minio:latest",
			Cmd:          []string{"server", "/data"},
			ExposedPorts: []string{"9000/tcp"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     "minioadmin",
				"MINIO_ROOT_PASSWORD": "minioadmin",
			},
			WaitingFor: wait.ForHTTP("/minio/health/live").
				WithPort("9000/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start MinIO container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.PortEndpoint(ctx, "9000/tcp", "")
	if err != nil {
		t.Fatalf("failed to get MinIO endpoint: %v", err)
	}

	return &config.Config{
		StorageBackend:    config.StorageMinIO,
		S3Endpoint:        endpoint,
		S3AccessKeyID:     "minioadmin",
		S3SecretAccessKey: "minioadmin",
		S3BucketName:      "file-renamer-test",
	}
}

func TestS3StorageRoundTrip(t *testing.T) {
	cfg := setupMinIO(t)
	ctx := context.Background()

	s, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	key := ObjectKey("sessions/test", "notes.txt")
	if err := s.Upload(ctx, key, []byte("meeting notes"), "text/plain"); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	got, err := s.Download(ctx, key)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(got) != "meeting notes" {
		t.Errorf("Download = %q", got)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Download(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Errorf("Download after delete: %v", err)
	}
}

func TestS3StoragePresignPut(t *testing.T) {
	cfg := setupMinIO(t)
	ctx := context.Background()

	s, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	key := ObjectKey("uploads", "scan.pdf")
	url, err := s.PresignPut(ctx, key, "application/pdf", time.Minute)
	if err != nil {
		t.Fatalf("PresignPut: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d", resp.StatusCode)
	}

	got, err := s.Download(ctx, key)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(got) != "%PDF-1.4" {
		t.Errorf("Download = %q", got)
	}
}
