package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	DefaultAccessTTLMinutes = 30
	DefaultRefreshTTLDays   = 7
	DefaultAlgorithm        = "HS256"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Log               Log               `yaml:"log"`
	HTTP              HTTP              `yaml:"http"`
	AccessTTLMinutes  int               `yaml:"access_token_expire_minutes"`
	RefreshTTLDays    int               `yaml:"refresh_token_expire_days"`
	BcryptCost        int               `yaml:"bcrypt_cost"`
	ProfilePicMaxSize int               `yaml:"profile_pic_max_size"`  // longest side in px after normalisation
	ProfilePicMaxMB   int               `yaml:"profile_pic_max_mb"`    // upper bound for the decoded upload
	LoginRateLimit    float64           `yaml:"login_rate_per_second"` // per client IP
	SignUpRateLimit   float64           `yaml:"signup_rate_per_second"` // per client IP, public sign-up only
	Templates         map[string]string `yaml:"message_templates"`     // keyed by event type
	Sms               Sms               `yaml:"sms"`
	SeedAdmin         SeedAdmin         `yaml:"seed_admin"`
}

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type HTTP struct {
	Addr            string        `yaml:"addr"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	SecureHeaders   bool          `yaml:"secure_headers"` // adds HSTS, only behind TLS
	TrustProxy      bool          `yaml:"trust_proxy"`    // honour X-Forwarded-For / X-Real-IP
}

type Sms struct {
	Enabled bool `yaml:"enabled"`
}

type SeedAdmin struct {
	Enabled          bool   `yaml:"enabled"`
	RemoveOnShutdown bool   `yaml:"remove_on_shutdown"`
	FirstName        string `yaml:"first_name"`
	LastName         string `yaml:"last_name"`
	PhoneNumber      string `yaml:"phone_number"`
	Username         string `yaml:"username"`
	Dob              string `yaml:"dob"` // YYYY-MM-DD
}

type Private struct {
	Pg        Pg        `yaml:"pg"`
	Jwt       Jwt       `yaml:"jwt"`
	Twilio    Twilio    `yaml:"twilio"`
	SeedAdmin SeedCreds `yaml:"seed_admin"`
}

type Pg struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	Dbname      string `yaml:"dbname"`
	ApplySchema bool   `yaml:"apply_schema"`
}

// Jwt is the immutable token configuration handed to the token service.
type Jwt struct {
	SecretKey        string `yaml:"secret_key"`
	Algorithm        string `yaml:"algorithm"`
	AccessTTLMinutes int    `yaml:"-"`
	RefreshTTLDays   int    `yaml:"-"`
}

func (j Jwt) AccessTTL() time.Duration {
	return time.Duration(j.AccessTTLMinutes) * time.Minute
}

func (j Jwt) RefreshTTL() time.Duration {
	return time.Duration(j.RefreshTTLDays) * 24 * time.Hour
}

type Twilio struct {
	AccountSid  string `yaml:"account_sid"`
	AuthToken   string `yaml:"auth_token"`
	PhoneNumber string `yaml:"phone_number"`
}

type SeedCreds struct {
	Password string `yaml:"password"`
}

// JwtConfig merges the secret from private.yaml with the lifetimes from public.yaml.
func (c *Config) JwtConfig() Jwt {
	j := c.Private.Jwt
	j.AccessTTLMinutes = c.Public.AccessTTLMinutes
	j.RefreshTTLDays = c.Public.RefreshTTLDays
	return j
}

func (c *Config) applyDefaults() {
	if c.Public.AccessTTLMinutes == 0 {
		c.Public.AccessTTLMinutes = DefaultAccessTTLMinutes
	}
	if c.Public.RefreshTTLDays == 0 {
		c.Public.RefreshTTLDays = DefaultRefreshTTLDays
	}
	if c.Private.Jwt.Algorithm == "" {
		c.Private.Jwt.Algorithm = DefaultAlgorithm
	}
	if c.Public.HTTP.Addr == "" {
		c.Public.HTTP.Addr = ":8080"
	}
	if c.Public.HTTP.ReadTimeout == 0 {
		c.Public.HTTP.ReadTimeout = 10 * time.Second
	}
	if c.Public.HTTP.WriteTimeout == 0 {
		c.Public.HTTP.WriteTimeout = 10 * time.Second
	}
	if c.Public.HTTP.ShutdownTimeout == 0 {
		c.Public.HTTP.ShutdownTimeout = 5 * time.Second
	}
	if c.Public.ProfilePicMaxSize == 0 {
		c.Public.ProfilePicMaxSize = 256
	}
	if c.Public.ProfilePicMaxMB == 0 {
		c.Public.ProfilePicMaxMB = 5
	}
	if c.Public.LoginRateLimit == 0 {
		c.Public.LoginRateLimit = 1
	}
	if c.Public.SignUpRateLimit == 0 {
		c.Public.SignUpRateLimit = 0.05
	}
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if c.Private.Jwt.SecretKey == "" {
		return fmt.Errorf("jwt secret_key is required")
	}
	switch c.Private.Jwt.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported jwt algorithm %q", c.Private.Jwt.Algorithm)
	}
	if c.Public.AccessTTLMinutes < 0 || c.Public.RefreshTTLDays < 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	if c.Public.SeedAdmin.Enabled && (c.Public.SeedAdmin.Username == "" || c.Private.SeedAdmin.Password == "") {
		return fmt.Errorf("seed_admin requires username and password")
	}
	return nil
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file " + configPath + ": " + err.Error())
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{Public: public, Private: private}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		panic("invalid config: " + err.Error())
	}
	return cfg
}
