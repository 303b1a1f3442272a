package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, &Options{})
	require.NoError(t, fs.Parse(args))
	return fs
}

func setLocale(t *testing.T, lcAll, lcMessages, lang string) {
	t.Helper()
	t.Setenv("LC_ALL", lcAll)
	t.Setenv("LC_MESSAGES", lcMessages)
	t.Setenv("LANG", lang)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG", filepath.Join(t.TempDir(), "missing.json"))
	setLocale(t, "", "", "C.UTF-8")

	o, err := Load(nil)
	require.NoError(t, err)
	d := Default()
	assert.Equal(t, d.BackendURL, o.BackendURL)
	assert.Equal(t, StoreFile, o.SessionStore)
	assert.Equal(t, Duration(10*time.Second), o.Timeout)
	assert.Equal(t, "en", o.Language)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, `{
		"backend_url": "http://file:8000",
		"language": "hi",
		"timeout": "3s",
		"location": "Pune"
	}`)
	t.Setenv("CONFIG", path)
	t.Setenv("KC_LANG", "mr")
	t.Setenv("KC_LOCATION", "Nashik")

	fs := newFlags(t, "--location", "Kolhapur", "--session-store", "sql")
	o, err := Load(fs)
	require.NoError(t, err)

	// file only
	assert.Equal(t, "http://file:8000", o.BackendURL)
	assert.Equal(t, Duration(3*time.Second), o.Timeout)
	// env beats file
	assert.Equal(t, "mr", o.Language)
	// flag beats env
	assert.Equal(t, "Kolhapur", o.Location)
	assert.Equal(t, StoreSQL, o.SessionStore)
	assert.Equal(t, path, o.Config)
}

func TestLoad_LanguageFromLocale(t *testing.T) {
	t.Setenv("CONFIG", filepath.Join(t.TempDir(), "missing.json"))

	tests := []struct {
		name  string
		setup func(t *testing.T)
		args  []string
		want  string
	}{
		{
			name:  "LANG",
			setup: func(t *testing.T) { setLocale(t, "", "", "mr_IN.UTF-8") },
			want:  "mr",
		},
		{
			name:  "LC_ALL beats LANG",
			setup: func(t *testing.T) { setLocale(t, "hi_IN.UTF-8", "", "mr_IN.UTF-8") },
			want:  "hi",
		},
		{
			name:  "LC_MESSAGES beats LANG",
			setup: func(t *testing.T) { setLocale(t, "", "hi_IN", "en_US.UTF-8") },
			want:  "hi",
		},
		{
			name:  "unsupported locale",
			setup: func(t *testing.T) { setLocale(t, "", "", "fr_FR.UTF-8") },
			want:  "en",
		},
		{
			name: "KC_LANG beats locale",
			setup: func(t *testing.T) {
				setLocale(t, "", "", "hi_IN.UTF-8")
				t.Setenv("KC_LANG", "mr")
			},
			want: "mr",
		},
		{
			name:  "flag beats locale",
			setup: func(t *testing.T) { setLocale(t, "", "", "hi_IN.UTF-8") },
			args:  []string{"--lang", "en"},
			want:  "en",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup(t)
			o, err := Load(newFlags(t, tt.args...))
			require.NoError(t, err)
			assert.Equal(t, tt.want, o.Language)
		})
	}
}

func TestLoad_ConfigFlag(t *testing.T) {
	path := writeConfig(t, `{"listen_addr": "0.0.0.0:9000", "tls": true}`)
	fs := newFlags(t, "-c", path)

	o, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", o.ListenAddr)
	assert.True(t, o.TLS)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("bad json", func(t *testing.T) {
		t.Setenv("CONFIG", writeConfig(t, `{not json`))
		_, err := Load(nil)
		assert.ErrorContains(t, err, "parse config file")
	})
	t.Run("bad env duration", func(t *testing.T) {
		t.Setenv("CONFIG", "")
		t.Setenv("KC_TIMEOUT", "soon")
		_, err := Load(nil)
		assert.ErrorContains(t, err, "parse env")
	})
	t.Run("unknown store", func(t *testing.T) {
		t.Setenv("CONFIG", "")
		_, err := Load(newFlags(t, "--session-store", "redis"))
		assert.ErrorContains(t, err, "unknown session store")
	})
}
