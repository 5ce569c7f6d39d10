package secrets

import (
	"context"
	"errors"
	"testing"

	"tutorials/internal/config"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/require"
)

type fakeAccessor struct {
	requested string
	payload   string
	err       error
}

func (f *fakeAccessor) AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	f.requested = req.GetName()
	if f.err != nil {
		return nil, f.err
	}
	return &secretmanagerpb.AccessSecretVersionResponse{
		Name:    req.GetName(),
		Payload: &secretmanagerpb.SecretPayload{Data: []byte(f.payload)},
	}, nil
}

func TestGetExpandsNames(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare id", "tutorials-dsn", "projects/tutorials-prod/secrets/tutorials-dsn/versions/latest"},
		{"secret path", "projects/other/secrets/dsn", "projects/other/secrets/dsn/versions/latest"},
		{"version path", "projects/other/secrets/dsn/versions/3", "projects/other/secrets/dsn/versions/3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAccessor{payload: "postgres://db/tutorials"}
			svc := NewSecretManagerService(fake, "tutorials-prod")

			got, err := svc.Get(context.Background(), tt.in)
			require.NoError(t, err)
			require.Equal(t, "postgres://db/tutorials", got)
			require.Equal(t, tt.want, fake.requested)
		})
	}
}

func TestGetBareNameWithoutProject(t *testing.T) {
	svc := NewSecretManagerService(&fakeAccessor{}, "")
	_, err := svc.Get(context.Background(), "tutorials-dsn")
	require.Error(t, err)
}

func TestGetPropagatesErrors(t *testing.T) {
	cause := errors.New("permission denied")
	svc := NewSecretManagerService(&fakeAccessor{err: cause}, "p")
	_, err := svc.Get(context.Background(), "dsn")
	require.ErrorIs(t, err, cause)
}

func TestResolveDSNWithoutSecret(t *testing.T) {
	cfg := &config.Config{DBConnectionString: "postgres://localhost/tutorials"}
	dsn, err := ResolveDSN(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, "postgres://localhost/tutorials", dsn)
}
