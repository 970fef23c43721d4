// internal/config/model.go
//
// Typed configuration model for the portal.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from its overlay layers:
//
//   • optional `.env`                          – dotenv values,
//   • `conf/portal.yaml`                       – primary static file,
//   • `PORTAL_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with `vault:` is resolved through the Vault
// client before unmarshalling, so the model never stores Vault URIs, only
// plain strings.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • Durations accept Go syntax ("15s", "30m").
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr      string        `koanf:"listen_addr"      validate:"required,hostname_port"`
	ForceHTTPS      bool          `koanf:"force_https"`
	DebugEndpoint   bool          `koanf:"debug_endpoint"` // JSON echo at /debug
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"gte=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"gte=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
}

//
// Upstream API section
//

// API points at the remote nasabah service.
type API struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout"  validate:"gte=0"`
}

//
// Session section
//

// Session tunes the in-memory session store.
type Session struct {
	CookieName string        `koanf:"cookie_name"`
	IdleTTL    time.Duration `koanf:"idle_ttl"  validate:"gte=0"`
	Capacity   int           `koanf:"capacity"  validate:"gte=0"`
	Secure     bool          `koanf:"secure"`
}

//
// Security section
//

// Security holds secrets.  CSRFKey is usually a `vault:` reference.
type Security struct {
	CSRFKey string `koanf:"csrf_key" validate:"omitempty,min=16"`
}

//
// UI section
//

// UI controls rendering.
type UI struct {
	Title       string `koanf:"title"`
	Locale      string `koanf:"locale"       validate:"omitempty,oneof=en id"`
	OverrideDir string `koanf:"override_dir"` // optional template overrides
}

//
// Log section
//

// Log mirrors logger.Options.
type Log struct {
	Dir   string `koanf:"dir"`
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	Tee   bool   `koanf:"tee"`
}

//
// Geo section
//

// Geo points at an optional MaxMind country database.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Metrics section
//

// Metrics toggles the Prometheus endpoint.
type Metrics struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path" validate:"omitempty,startswith=/"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // PORTAL_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	API      API      `koanf:"api"`
	Session  Session  `koanf:"session"`
	Security Security `koanf:"security"`
	UI       UI       `koanf:"ui"`
	Log      Log      `koanf:"log"`
	Geo      Geo      `koanf:"geo"`
	Metrics  Metrics  `koanf:"metrics"`
	Paths    Paths    `koanf:"-"`
}

// applyDefaults fills zero values the YAML left out.
func applyDefaults(c *Config) {
	def := func(d *time.Duration, v time.Duration) {
		if *d == 0 {
			*d = v
		}
	}
	str := func(s *string, v string) {
		if *s == "" {
			*s = v
		}
	}

	str(&c.HTTP.ListenAddr, ":8080")
	def(&c.HTTP.ReadTimeout, 10*time.Second)
	def(&c.HTTP.WriteTimeout, 15*time.Second)
	def(&c.HTTP.IdleTimeout, 60*time.Second)
	def(&c.HTTP.ShutdownTimeout, 10*time.Second)

	str(&c.API.BaseURL, "https://learn.smktelkom-mlg.sch.id/ukl1/api")
	def(&c.API.Timeout, 15*time.Second)

	str(&c.Session.CookieName, "nasabah_session")
	def(&c.Session.IdleTTL, 30*time.Minute)
	if c.Session.Capacity == 0 {
		c.Session.Capacity = 10_000
	}

	str(&c.UI.Title, "Nasabah Portal")
	str(&c.UI.Locale, "en")
	str(&c.Log.Dir, "logs")
	str(&c.Log.Level, "info")
	str(&c.Metrics.Path, "/metrics")
}
