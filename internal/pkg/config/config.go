package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection,
//   Allegro OAuth client) and security settings
// - default: Tuning knobs with safe production defaults (guardrails, backoff,
//   tick budgets)
// -----------------------------------------------------------------------------

type Config struct {
	Server     ServerConfig
	DB         DBConfig
	CORS       CORSConfig
	Log        LogConfig
	JWT        JWTConfig
	Allegro    AllegroConfig
	Automation AutomationConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Europe/Warsaw"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Europe/Warsaw"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"7200"` // 2*60*60
}

type JWTConfig struct {
	Secret   string        `envconfig:"JWT_SECRET" required:"true"`
	Duration time.Duration `envconfig:"JWT_DURATION" default:"24h"`
}

// AllegroConfig holds the OAuth client and REST endpoints of the marketplace.
type AllegroConfig struct {
	ClientID     string        `envconfig:"ALLEGRO_CLIENT_ID" required:"true"`
	ClientSecret string        `envconfig:"ALLEGRO_CLIENT_SECRET" required:"true"`
	TokenURL     string        `envconfig:"ALLEGRO_TOKEN_URL" default:"https://allegro.pl/auth/oauth/token"`
	APIBaseURL   string        `envconfig:"ALLEGRO_API_BASE_URL" default:"https://api.allegro.pl"`
	RedirectURI  string        `envconfig:"ALLEGRO_REDIRECT_URI" required:"true"`
	CallTimeout  time.Duration `envconfig:"ALLEGRO_CALL_TIMEOUT" default:"10s"`
}

// AutomationConfig carries the tuning knobs of the automation loops.
// Guardrail constants are configuration, never derived at runtime.
type AutomationConfig struct {
	// Token refreshed when less than SafetyMargin remains before expiry,
	// absorbing clock skew and in-flight request latency.
	TokenSafetyMargin time.Duration `envconfig:"TOKEN_SAFETY_MARGIN" default:"5m"`
	// Providers occasionally omit expires_in; assume a short-lived token
	// rather than one that never expires.
	TokenDefaultTTL time.Duration `envconfig:"TOKEN_DEFAULT_TTL" default:"12h"`
	// Consecutive refresh failures before the account is marked disconnected.
	MaxRefreshFailures int `envconfig:"MAX_REFRESH_FAILURES" default:"5"`

	UndercutStep decimal.Decimal `envconfig:"REPRICING_UNDERCUT_STEP" default:"0.50"`
	SurgeFactor  decimal.Decimal `envconfig:"REPRICING_SURGE_FACTOR" default:"1.10"`
	MinDelta     decimal.Decimal `envconfig:"REPRICING_MIN_DELTA" default:"0.10"`
	// Competitor snapshots older than this are unusable for decisions.
	SnapshotMaxAge time.Duration `envconfig:"REPRICING_SNAPSHOT_MAX_AGE" default:"15m"`
	// Upper bound on concurrently evaluated SKUs within one cycle.
	RepricingParallelism int `envconfig:"REPRICING_PARALLELISM" default:"8"`

	// Window granted to the merchant before a dispute deadline fires.
	DisputeResolutionWindow time.Duration `envconfig:"DISPUTE_RESOLUTION_WINDOW" default:"48h"`

	// Wall-clock budget for one loop tick; overruns abandon the tick.
	TickBudget        time.Duration `envconfig:"AUTOMATION_TICK_BUDGET" default:"2m"`
	RepricingEvery    time.Duration `envconfig:"REPRICING_INTERVAL" default:"10m"`
	InventoryEvery    time.Duration `envconfig:"INVENTORY_INTERVAL" default:"5m"`
	DisputeSweepEvery time.Duration `envconfig:"DISPUTE_SWEEP_INTERVAL" default:"15m"`

	GatewayMaxRetries     int           `envconfig:"GATEWAY_MAX_RETRIES" default:"3"`
	GatewayInitialBackoff time.Duration `envconfig:"GATEWAY_INITIAL_BACKOFF" default:"500ms"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Europe/Warsaw",
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Europe/Warsaw",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 7200,
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: time.Hour,
		},
		Allegro: AllegroConfig{
			ClientID:     "test-client",
			ClientSecret: "test-secret",
			TokenURL:     "http://localhost:0/auth/oauth/token",
			APIBaseURL:   "http://localhost:0",
			RedirectURI:  "http://localhost:3000/api/allegro/callback",
			CallTimeout:  2 * time.Second,
		},
		Automation: DefaultAutomationConfig(),
	}
}

// DefaultAutomationConfig mirrors the envconfig defaults for use in tests.
func DefaultAutomationConfig() AutomationConfig {
	return AutomationConfig{
		TokenSafetyMargin:       5 * time.Minute,
		TokenDefaultTTL:         12 * time.Hour,
		MaxRefreshFailures:      5,
		UndercutStep:            decimal.RequireFromString("0.50"),
		SurgeFactor:             decimal.RequireFromString("1.10"),
		MinDelta:                decimal.RequireFromString("0.10"),
		SnapshotMaxAge:          15 * time.Minute,
		RepricingParallelism:    8,
		DisputeResolutionWindow: 48 * time.Hour,
		TickBudget:              2 * time.Minute,
		RepricingEvery:          10 * time.Minute,
		InventoryEvery:          5 * time.Minute,
		DisputeSweepEvery:       15 * time.Minute,
		GatewayMaxRetries:       3,
		GatewayInitialBackoff:   500 * time.Millisecond,
	}
}
