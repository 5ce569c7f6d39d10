package secrets

import (
	"context"
	"fmt"
	"strings"

	"tutorials/internal/config"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
)

// Accessor is the subset of the Secret Manager client used here.
type Accessor interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

type SecretManagerService struct {
	client    Accessor
	projectID string
}

// NewSecretManagerService wraps an existing client. projectID is used to
// expand short secret names.
func NewSecretManagerService(client Accessor, projectID string) *SecretManagerService {
	return &SecretManagerService{client: client, projectID: projectID}
}

// Dial creates a Secret Manager client from config. The returned function closes it.
func Dial(ctx context.Context, cfg *config.Config) (*SecretManagerService, func() error, error) {
	var opts []option.ClientOption
	if cfg.GoogleCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredentials))
	}

	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
	}
	return NewSecretManagerService(client, cfg.GCPProjectID), client.Close, nil
}

// Get returns the payload of a secret version. name is either a full resource
// name ("projects/p/secrets/s/versions/v") or a bare secret id, which resolves
// to the latest version in the configured project.
func (s *SecretManagerService) Get(ctx context.Context, name string) (string, error) {
	resourceName, err := s.resourceName(name)
	if err != nil {
		return "", err
	}

	result, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: resourceName,
	})
	if err != nil {
		return "", fmt.Errorf("failed to access secret version %s: %w", resourceName, err)
	}
	return string(result.Payload.Data), nil
}

func (s *SecretManagerService) resourceName(name string) (string, error) {
	if strings.HasPrefix(name, "projects/") {
		if !strings.Contains(name, "/versions/") {
			return name + "/versions/latest", nil
		}
		return name, nil
	}
	if s.projectID == "" {
		return "", fmt.Errorf("secret %q is not a full resource name and GCP_PROJECT_ID is not set", name)
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", s.projectID, name), nil
}

// ResolveDSN returns the store connection string, reading it from Secret
// Manager when DB_CONNECTION_SECRET is configured.
func ResolveDSN(ctx context.Context, cfg *config.Config) (string, error) {
	if cfg.DBConnectionSecret == "" {
		return cfg.DBConnectionString, nil
	}

	svc, closeFn, err := Dial(ctx, cfg)
	if err != nil {
		return "", err
	}
	defer closeFn()

	dsn, err := svc.Get(ctx, cfg.DBConnectionSecret)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(dsn), nil
}
