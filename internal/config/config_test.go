package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, DefaultSeed, cfg.Seed)
	assert.Equal(t, DefaultCheckpointInterval, cfg.CheckpointInterval)
	assert.Zero(t, cfg.MaxIterations)
	assert.Equal(t, "crawler_checkpoint.json", cfg.CheckpointVisitedPath)
	assert.Equal(t, "to_visit.json", cfg.FinalFrontierPath)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.NoError(t, Validate(cfg))
}

func TestLoadConfigJSON(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "config.json", `{
		"seed": "golang",
		"max_iterations": 50,
		"checkpoint_interval": 5,
		"db_path": "graph.db"
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "golang", cfg.Seed)
	assert.Equal(t, 50, cfg.MaxIterations)
	assert.Equal(t, 5, cfg.CheckpointInterval)
	assert.Equal(t, "graph.db", cfg.DBPath)
	assert.Equal(t, DefaultRequestTimeoutMs, cfg.RequestTimeoutMs)
	assert.Equal(t, "crawler.json", cfg.SnapshotPaths().FinalVisited)
}

func TestLoadConfigYAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "config.yaml", `
seed: rust
request_delay_ms: 2000
final_visited_path: out/crawler.json
final_frontier_path: out/to_visit.json
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "rust", cfg.Seed)
	assert.Equal(t, 2000, cfg.RequestDelayMs)
	assert.Equal(t, "out/crawler.json", cfg.FinalVisitedPath)
	assert.Equal(t, "crawler_checkpoint.json", cfg.CheckpointVisitedPath)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorContains(t, err, "failed to open config file")

	_, err = LoadConfig(writeFile(t, "broken.json", `{"seed": `))
	assert.ErrorContains(t, err, "failed to parse config JSON")

	_, err = LoadConfig(writeFile(t, "broken.yml", "seed: [unclosed"))
	assert.ErrorContains(t, err, "failed to parse config YAML")

	_, err = LoadConfig(writeFile(t, "negative.json", `{"max_iterations": -1}`))
	assert.ErrorIs(t, err, ErrInvalidMaxIterations)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		mutate func(*Config)
		want   error
	}{
		"empty seed": {
			mutate: func(c *Config) { c.Seed = "" },
			want:   ErrNoSeed,
		},
		"negative iterations": {
			mutate: func(c *Config) { c.MaxIterations = -3 },
			want:   ErrInvalidMaxIterations,
		},
		"zero checkpoint interval": {
			mutate: func(c *Config) { c.CheckpointInterval = 0 },
			want:   ErrInvalidCheckpointInterval,
		},
		"short timeout": {
			mutate: func(c *Config) { c.RequestTimeoutMs = 10 },
			want:   ErrInvalidTimeout,
		},
		"negative delay": {
			mutate: func(c *Config) { c.RequestDelayMs = -1 },
			want:   ErrInvalidDelay,
		},
		"shared output slot": {
			mutate: func(c *Config) { c.FinalVisitedPath = "./crawler_checkpoint.json" },
			want:   ErrOutputCollision,
		},
		"input overwritten by output": {
			mutate: func(c *Config) { c.CrawledPath = "crawler.json" },
			want:   ErrOutputCollision,
		},
		"resume from a checkpoint": {
			mutate: func(c *Config) {
				c.CrawledPath = "backup/crawler_checkpoint.json"
				c.ToVisitPath = "backup/to_visit_checkpoint.json"
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// unsetEnv clears a variable for the duration of the test
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

var credentialKeys = []string{
	"REDDIT_CLIENT_ID",
	"REDDIT_CLIENT_SECRET",
	"REDDIT_USERNAME",
	"REDDIT_PASSWORD",
	"REDDIT_USER_AGENT",
}

func TestLoadCredentialsFromEnvironment(t *testing.T) {
	unsetEnv(t, credentialKeys...)
	t.Setenv("REDDIT_CLIENT_ID", "id-1")
	t.Setenv("REDDIT_CLIENT_SECRET", "secret-1")
	t.Setenv("REDDIT_USERNAME", "weaver")
	t.Setenv("REDDIT_PASSWORD", "hunter2")

	creds, err := LoadCredentials(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Equal(t, &Credentials{
		ClientID:     "id-1",
		ClientSecret: "secret-1",
		Username:     "weaver",
		Password:     "hunter2",
	}, creds)
}

func TestLoadCredentialsFromEnvFile(t *testing.T) {
	unsetEnv(t, credentialKeys...)
	// the process environment wins over the file
	t.Setenv("REDDIT_USERNAME", "from-env")

	envFile := writeFile(t, ".env", `REDDIT_CLIENT_ID=file-id
REDDIT_CLIENT_SECRET=file-secret
REDDIT_USERNAME=from-file
REDDIT_PASSWORD=file-pass
REDDIT_USER_AGENT=custom-agent/1.0
`)

	creds, err := LoadCredentials(envFile)
	require.NoError(t, err)
	assert.Equal(t, "file-id", creds.ClientID)
	assert.Equal(t, "file-secret", creds.ClientSecret)
	assert.Equal(t, "from-env", creds.Username)
	assert.Equal(t, "file-pass", creds.Password)
	assert.Equal(t, "custom-agent/1.0", creds.UserAgent)
}

func TestLoadCredentialsEmpty(t *testing.T) {
	unsetEnv(t, credentialKeys...)

	creds, err := LoadCredentials("")
	require.NoError(t, err)
	assert.Equal(t, &Credentials{}, creds)
}
