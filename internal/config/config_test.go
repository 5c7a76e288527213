package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"same keys", func(c *Config) { c.Settings.FaviconsKey = c.Settings.ProjectsKey }, "must differ"},
		{"empty key", func(c *Config) { c.Settings.ProjectsKey = "" }, "cannot be empty"},
		{"negative depth", func(c *Config) { c.Scan.MaxDepth = -1 }, "max_depth"},
		{"zero burst", func(c *Config) { c.Watch.Burst = 0 }, "burst"},
		{"blank open command", func(c *Config) { c.Open.Command = "  " }, "open command"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, "1m30s", d.Duration().String())

	assert.Error(t, d.UnmarshalText([]byte("-1s")))
	assert.Error(t, d.UnmarshalText([]byte("soon")))
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/deck")

	p, err := ExpandHome("~/x/y")
	require.NoError(t, err)
	assert.Equal(t, "/home/deck/x/y", p)

	p, err = ExpandHome("/abs")
	require.NoError(t, err)
	assert.Equal(t, "/abs", p)
}
