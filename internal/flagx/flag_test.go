package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-b", "http://localhost:3000", "-x", "1"},
			allowedFlags: []string{"-b"},
			want:         []string{"-b", "http://localhost:3000"},
		},
		{
			name:         "flag with equals",
			args:         []string{"-b=http://api", "-t", "5"},
			allowedFlags: []string{"-b"},
			want:         []string{"-b=http://api"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "next dash token is not a value",
			args:         []string{"-c", "-t", "5"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "multiple allowed flags keep order",
			args:         []string{"-t", "5", "-c", "conf.json", "--other", "x", "-b", "u"},
			allowedFlags: []string{"-c", "-t", "-b"},
			want:         []string{"-t", "5", "-c", "conf.json", "-b", "u"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestConfigFile(t *testing.T) {
	t.Run("short", func(t *testing.T) {
		assert.Equal(t, "/p/short.json", ConfigFile([]string{"-c", "/p/short.json"}))
	})

	t.Run("long", func(t *testing.T) {
		assert.Equal(t, "/p/long.json", ConfigFile([]string{"-config", "/p/long.json"}))
	})

	t.Run("long with equals", func(t *testing.T) {
		assert.Equal(t, "/p/eq.json", ConfigFile([]string{"-config=/p/eq.json"}))
	})

	t.Run("other flags ignored", func(t *testing.T) {
		assert.Empty(t, ConfigFile([]string{"-b", "http://x", "-t", "3"}))
	})

	t.Run("last wins", func(t *testing.T) {
		assert.Equal(t, "/p/2.json", ConfigFile([]string{"-c", "/p/1.json", "-config", "/p/2.json"}))
	})
}
