// Package config provides functionality for managing configuration options
// for the client using command-line flags, environment variables and an
// optional JSON config file.
package config

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"

	"github.com/krishichetan/kchetan/internal/i18n"
)

// Session store kinds.
const (
	StoreFile = "file"
	StoreSQL  = "sql"
)

// Duration is a time.Duration that reads "10s"-style strings from JSON
// and environment variables.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Options holds the configuration values for the client.
type Options struct {
	// BackendURL is the base URL of the Krishi-Chetan API.
	BackendURL string `json:"backend_url" env:"KC_BACKEND_URL"`

	// CAFile optionally pins a private CA for the backend's TLS certificate.
	CAFile string `json:"ca_file" env:"KC_CA_FILE"`

	// Timeout bounds every backend request.
	Timeout Duration `json:"timeout" env:"KC_TIMEOUT"`

	// ListenAddr is where `serve` exposes the local view server (ip:port).
	ListenAddr string `json:"listen_addr" env:"KC_LISTEN_ADDR"`

	// TLS serves the local view server over a generated self-signed certificate.
	TLS bool `json:"tls" env:"KC_TLS"`

	// TLSCert and TLSKey locate the view server key pair. Missing files are
	// generated on start.
	TLSCert string `json:"tls_cert" env:"KC_TLS_CERT"`
	TLSKey  string `json:"tls_key" env:"KC_TLS_KEY"`

	// SessionStore selects "file" or "sql" session persistence.
	SessionStore string `json:"session_store" env:"KC_SESSION_STORE"`

	// SessionFile is the JSON session file for the file store.
	SessionFile string `json:"session_file" env:"KC_SESSION_FILE"`

	// SessionDSN is a SQLite path or a postgres:// URL for the sql store.
	SessionDSN string `json:"session_dsn" env:"KC_SESSION_DSN"`

	// SessionRetention is how long a stored session is kept before the
	// cleaner purges it.
	SessionRetention Duration `json:"session_retention" env:"KC_SESSION_RETENTION"`

	// Language is the initial UI language.
	Language string `json:"language" env:"KC_LANG"`

	// Location is the weather location used by the dashboard widgets.
	Location string `json:"location" env:"KC_LOCATION"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" env:"KC_LOG_LEVEL"`

	// LogFile redirects logs to a file; the terminal UI needs this.
	LogFile string `json:"log_file" env:"KC_LOG_FILE"`

	// Config is the path to the Config file.
	Config string `json:"-" env:"CONFIG"`
}

// Default returns the built-in configuration.
func Default() *Options {
	return &Options{
		BackendURL:       "http://localhost:8000",
		Timeout:          Duration(10 * time.Second),
		ListenAddr:       "localhost:8090",
		TLSCert:          "certs/server.crt",
		TLSKey:           "certs/server.key",
		SessionStore:     StoreFile,
		SessionFile:      "session.json",
		SessionDSN:       "kchetan.db",
		SessionRetention: Duration(300 * time.Minute),
		Language:         "en",
		Location:         "Satara",
		LogLevel:         "info",
		Config:           "config.json",
	}
}

// RegisterFlags binds the configuration flags to fs. The values written
// into o are only used for flags the user actually set; see Load.
func RegisterFlags(fs *pflag.FlagSet, o *Options) {
	d := Default()
	fs.StringVarP(&o.BackendURL, "url", "u", d.BackendURL, "backend base URL")
	fs.StringVar(&o.CAFile, "ca", "", "path to a CA certificate for the backend")
	fs.DurationVar((*time.Duration)(&o.Timeout), "timeout", time.Duration(d.Timeout), "backend request timeout")
	fs.StringVarP(&o.ListenAddr, "addr", "a", d.ListenAddr, "local view server ip:port")
	fs.BoolVar(&o.TLS, "tls", false, "serve the local view server over TLS")
	fs.StringVar(&o.TLSCert, "tls-cert", d.TLSCert, "view server certificate path")
	fs.StringVar(&o.TLSKey, "tls-key", d.TLSKey, "view server private key path")
	fs.StringVar(&o.SessionStore, "session-store", d.SessionStore, "session store: file | sql")
	fs.StringVar(&o.SessionFile, "session-file", d.SessionFile, "session file for the file store")
	fs.StringVar(&o.SessionDSN, "session-dsn", d.SessionDSN, "sqlite path or postgres URL for the sql store")
	fs.DurationVar((*time.Duration)(&o.SessionRetention), "session-retention", time.Duration(d.SessionRetention), "how long stored sessions are kept")
	fs.StringVarP(&o.Language, "lang", "l", d.Language, "UI language: en | hi | mr")
	fs.StringVar(&o.Location, "location", d.Location, "weather location")
	fs.StringVar(&o.LogLevel, "log-level", d.LogLevel, "log level")
	fs.StringVar(&o.LogFile, "log-file", "", "write logs to this file")
	fs.StringVarP(&o.Config, "config", "c", d.Config, "path to config file")
}

// Load resolves the effective configuration: defaults (the language
// follows the system locale), then the JSON config file, then environment variables, then flags explicitly set on fs.
// fs may be nil.
func Load(fs *pflag.FlagSet) (*Options, error) {
	out := Default()
	out.Language = string(i18n.FromLocale(systemLocale()))

	path := out.Config
	if fs != nil {
		if f := fs.Lookup("config"); f != nil && f.Changed {
			path = f.Value.String()
		}
	}
	if p := os.Getenv("CONFIG"); p != "" {
		path = p
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, out); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}
	out.Config = path

	if err := env.Parse(out); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if fs != nil {
		var ferr error
		fs.Visit(func(f *pflag.Flag) {
			if ferr == nil {
				ferr = out.set(f.Name, f.Value.String())
			}
		})
		if ferr != nil {
			return nil, ferr
		}
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// systemLocale returns the message locale from the environment in POSIX
// precedence order.
func systemLocale() string {
	return cmp.Or(os.Getenv("LC_ALL"), os.Getenv("LC_MESSAGES"), os.Getenv("LANG"))
}

// Validate checks values that cannot be used as given.
func (o *Options) Validate() error {
	if o.BackendURL == "" {
		return errors.New("backend url is required")
	}
	if o.SessionStore != StoreFile && o.SessionStore != StoreSQL {
		return fmt.Errorf("unknown session store %q", o.SessionStore)
	}
	if o.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}

func (o *Options) set(name, value string) error {
	var err error
	switch name {
	case "url":
		o.BackendURL = value
	case "ca":
		o.CAFile = value
	case "timeout":
		err = o.Timeout.UnmarshalText([]byte(value))
	case "addr":
		o.ListenAddr = value
	case "tls":
		o.TLS, err = strconv.ParseBool(value)
	case "tls-cert":
		o.TLSCert = value
	case "tls-key":
		o.TLSKey = value
	case "session-store":
		o.SessionStore = value
	case "session-file":
		o.SessionFile = value
	case "session-dsn":
		o.SessionDSN = value
	case "session-retention":
		err = o.SessionRetention.UnmarshalText([]byte(value))
	case "lang":
		o.Language = value
	case "location":
		o.Location = value
	case "log-level":
		o.LogLevel = value
	case "log-file":
		o.LogFile = value
	}
	if err != nil {
		return fmt.Errorf("flag --%s: %w", name, err)
	}
	return nil
}
