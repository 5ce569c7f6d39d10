package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, DriverMemory, cfg.DBDriver)
	require.Equal(t, "tutorial-events", cfg.PubSubTutorialTopic)
	require.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	require.False(t, cfg.EventsEnabled())
}

func TestLoadEnvSkipsStoreValidation(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_CONNECTION_STRING", "")
	t.Setenv("DB_CONNECTION_SECRET", "")
	t.Setenv("PUBSUB_EMULATOR_HOST", "localhost:8085")

	_, err := Load()
	require.Error(t, err)

	cfg, err := LoadEnv()
	require.NoError(t, err)
	require.Equal(t, "localhost:8085", cfg.PubSubEmulatorHost)
	require.Equal(t, "tutorial-events-sub", cfg.PubSubTutorialSubscription)
}

func TestLoadOrigins(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("GCP_PROJECT_ID", "tutorials-dev")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	require.True(t, cfg.EventsEnabled())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "postgres with dsn", cfg: Config{DBDriver: "postgres", DBConnectionString: "postgres://localhost/tutorials"}},
		{name: "postgres with secret", cfg: Config{DBDriver: "Postgres", DBConnectionSecret: "projects/p/secrets/dsn/versions/latest"}},
		{name: "postgres without dsn", cfg: Config{DBDriver: "postgres"}, wantErr: true},
		{name: "sqlite without path", cfg: Config{DBDriver: "sqlite"}, wantErr: true},
		{name: "memory", cfg: Config{DBDriver: " memory "}},
		{name: "unknown", cfg: Config{DBDriver: "mongo"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
