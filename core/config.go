package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds every setting of the application.
type Config struct {
	AppName      string
	Env          string // DEV (local; default), TEST, QA, PROD
	Build        string
	Debug        bool
	TestMode     bool
	RollbarToken string
	FrontendURL  string

	HTTPClientTimeout time.Duration

	Server struct {
		Host              string
		Address           string
		DebugHost         string
		ShutdownTimeout   time.Duration
		SessionSecret     string
		SessionCookie     string
		SessionExpiration time.Duration
		AllowedOrigins    []string
		RateLimit         int
		RateWindow        time.Duration
	}

	Google struct {
		ClientID     string
		ClientSecret string
		RedirectURL  string
	}

	Database struct {
		Engine         string // mongo | memory
		URI            string
		Name           string
		ConnectTimeout time.Duration
	}

	News struct {
		APIKey   string
		Endpoint string
		Model    string
		CacheTTL time.Duration
	}

	Chat struct {
		APIKey           string
		IAMEndpoint      string
		DeploymentURL    string
		SystemPromptPath string
	}

	Calendar struct {
		Timezone string
	}

	Secrets struct {
		Source    string // env | ssm
		SSMPrefix string
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", true)
	v.SetDefault("test_mode", false)
	v.SetDefault("app_name", "EduTrack")
	v.SetDefault("build", "develop")
	v.SetDefault("rollbar_token", "")
	v.SetDefault("frontend_url", "http://localhost:3000")
	v.SetDefault("http_client_timeout", 30*time.Second)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":5000")
	v.SetDefault("server.debug_host", ":5010")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.session_secret", "secret")
	v.SetDefault("server.session_cookie", "session")
	v.SetDefault("server.session_expiration", 24*time.Hour)
	v.SetDefault("server.allowed_origins", "http://localhost:3000")
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("server.rate_window", 15*time.Minute)

	v.SetDefault("google.client_id", "")
	v.SetDefault("google.client_secret", "")
	v.SetDefault("google.redirect_url", "http://localhost:5000/auth/google/callback")

	v.SetDefault("database.engine", "mongo")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "edutrack")
	v.SetDefault("database.connect_timeout", 10*time.Second)

	v.SetDefault("news.api_key", "")
	v.SetDefault("news.endpoint", "https://api.perplexity.ai/chat/completions")
	v.SetDefault("news.model", "sonar-pro")
	v.SetDefault("news.cache_ttl", 10*time.Minute)

	v.SetDefault("chat.api_key", "")
	v.SetDefault("chat.iam_endpoint", "https://iam.cloud.ibm.com/identity/token")
	v.SetDefault("chat.deployment_url", "")
	v.SetDefault("chat.system_prompt_path", "")

	v.SetDefault("calendar.timezone", "UTC")

	v.SetDefault("secrets.source", "env")
	v.SetDefault("secrets.ssm_prefix", "/edutrack")
}

// NewConfig loads the configuration from the environment.
// Variables are prefixed with the upper-cased ENV name, e.g. DEV_GOOGLE_CLIENT_ID.
// When secrets.source is "ssm", secrets are then read from AWS SSM Parameter Store.
func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)

	env := strings.ToUpper(CleanString(os.Getenv("ENV")))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("test_mode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "stat %s", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := fromViper(v)
	conf.Env = env

	if conf.Secrets.Source == "ssm" {
		client, err := newSSMClient(context.Background())
		if err != nil {
			return nil, errors.Wrap(err, "creating SSM client")
		}
		if err = conf.loadSecretsFromSSM(context.Background(), client); err != nil {
			return nil, errors.Wrap(err, "loading secrets from SSM")
		}
	}
	return conf, nil
}

func fromViper(v *viper.Viper) *Config {
	conf := new(Config)
	conf.AppName = v.GetString("app_name")
	conf.Build = v.GetString("build")
	conf.Debug = v.GetBool("debug")
	conf.TestMode = v.GetBool("test_mode")
	conf.RollbarToken = v.GetString("rollbar_token")
	conf.FrontendURL = v.GetString("frontend_url")
	conf.HTTPClientTimeout = v.GetDuration("http_client_timeout")

	conf.Server.Host = v.GetString("server.host")
	conf.Server.Address = v.GetString("server.address")
	conf.Server.DebugHost = v.GetString("server.debug_host")
	conf.Server.ShutdownTimeout = v.GetDuration("server.shutdown_timeout")
	conf.Server.SessionSecret = v.GetString("server.session_secret")
	conf.Server.SessionCookie = v.GetString("server.session_cookie")
	conf.Server.SessionExpiration = v.GetDuration("server.session_expiration")
	conf.Server.AllowedOrigins = splitList(v.GetString("server.allowed_origins"))
	conf.Server.RateLimit = v.GetInt("server.rate_limit")
	conf.Server.RateWindow = v.GetDuration("server.rate_window")

	conf.Google.ClientID = v.GetString("google.client_id")
	conf.Google.ClientSecret = v.GetString("google.client_secret")
	conf.Google.RedirectURL = v.GetString("google.redirect_url")

	conf.Database.Engine = strings.ToLower(v.GetString("database.engine"))
	conf.Database.URI = v.GetString("database.uri")
	conf.Database.Name = v.GetString("database.name")
	conf.Database.ConnectTimeout = v.GetDuration("database.connect_timeout")

	conf.News.APIKey = v.GetString("news.api_key")
	conf.News.Endpoint = v.GetString("news.endpoint")
	conf.News.Model = v.GetString("news.model")
	conf.News.CacheTTL = v.GetDuration("news.cache_ttl")

	conf.Chat.APIKey = v.GetString("chat.api_key")
	conf.Chat.IAMEndpoint = v.GetString("chat.iam_endpoint")
	conf.Chat.DeploymentURL = v.GetString("chat.deployment_url")
	conf.Chat.SystemPromptPath = v.GetString("chat.system_prompt_path")

	conf.Calendar.Timezone = v.GetString("calendar.timezone")

	conf.Secrets.Source = strings.ToLower(v.GetString("secrets.source"))
	conf.Secrets.SSMPrefix = strings.TrimRight(v.GetString("secrets.ssm_prefix"), "/")
	return conf
}

// IsProduction reports whether the app runs in the PROD environment.
func (c *Config) IsProduction() bool { return c.Env == "PROD" }

// Location returns the calendar time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	if c.Calendar.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = CleanString(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
