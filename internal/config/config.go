package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App        App        `mapstructure:",squash"`
	Server     Server     `mapstructure:",squash"`
	Database   Database   `mapstructure:",squash"`
	Redis      Redis      `mapstructure:",squash"`
	GoogleAds  GoogleAds  `mapstructure:",squash"`
	OAuth      OAuth      `mapstructure:",squash"`
	Summarizer Summarizer `mapstructure:",squash"`
	Auth       Auth       `mapstructure:",squash"`
	Usage      Usage      `mapstructure:",squash"`
	Retention  Retention  `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type Redis struct {
	Addr     string `mapstructure:"redis_addr"`
	Password string `mapstructure:"redis_password"`
	DB       int    `mapstructure:"redis_db"`
	// ReportTTL bounds how long cached report bundles live.
	ReportTTL time.Duration `mapstructure:"redis_report_ttl"`
}

type GoogleAds struct {
	BaseURL string `mapstructure:"google_ads_base_url"`
	Version string `mapstructure:"google_ads_version"`
	URL     string `mapstructure:"-"`
	// DeveloperToken is the fixed service-level credential every search
	// request carries alongside the user's bearer token.
	DeveloperToken  string `mapstructure:"google_ads_developer_token"`
	LoginCustomerID string `mapstructure:"google_ads_login_customer_id"`
}

type OAuth struct {
	ClientID     string `mapstructure:"oauth_client_id"`
	ClientSecret string `mapstructure:"oauth_client_secret"`
	TokenURL     string `mapstructure:"oauth_token_url"`
}

type Summarizer struct {
	URL     string        `mapstructure:"summarizer_url"`
	APIKey  string        `mapstructure:"summarizer_api_key"`
	Model   string        `mapstructure:"summarizer_model"`
	Timeout time.Duration `mapstructure:"summarizer_timeout"`
}

type Auth struct {
	// JWTSecret verifies the dashboard session tokens minted by the
	// external identity provider.
	JWTSecret string `mapstructure:"auth_jwt_secret"`
}

type Usage struct {
	MonthlyLimit int `mapstructure:"usage_monthly_limit"`
}

type Retention struct {
	CronSchedule string `mapstructure:"usage_retention_cron"`
	MaxAgeMonths int    `mapstructure:"usage_retention_max_age_months"`
	Enabled      bool   `mapstructure:"usage_retention_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/ads_insights")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_REPORT_TTL", "168h") // cached reports live 7 days

	viper.SetDefault("GOOGLE_ADS_BASE_URL", "https://googleads.googleapis.com")
	viper.SetDefault("GOOGLE_ADS_VERSION", "v17")
	viper.SetDefault("GOOGLE_ADS_DEVELOPER_TOKEN", "your_developer_token") // ONLY LOCAL
	viper.SetDefault("GOOGLE_ADS_LOGIN_CUSTOMER_ID", "")

	viper.SetDefault("OAUTH_CLIENT_ID", "your_client_id")
	viper.SetDefault("OAUTH_CLIENT_SECRET", "your_client_secret")
	viper.SetDefault("OAUTH_TOKEN_URL", "https://oauth2.googleapis.com/token")

	viper.SetDefault("SUMMARIZER_URL", "http://localhost:8089/v1/summaries")
	viper.SetDefault("SUMMARIZER_API_KEY", "")
	viper.SetDefault("SUMMARIZER_MODEL", "default")
	viper.SetDefault("SUMMARIZER_TIMEOUT", "5m")

	viper.SetDefault("AUTH_JWT_SECRET", "your_jwt_secret")

	viper.SetDefault("USAGE_MONTHLY_LIMIT", 50)

	viper.SetDefault("USAGE_RETENTION_CRON", "0 4 * * *") // daily at 4am
	viper.SetDefault("USAGE_RETENTION_MAX_AGE_MONTHS", 12)
	viper.SetDefault("USAGE_RETENTION_ENABLED", false)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Using variables loaded by godotenv (viper could not read .env):", err)
	} else {
		logrus.Info(".env file read by viper")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.GoogleAds.URL = fmt.Sprintf("%s/%s", config.GoogleAds.BaseURL, config.GoogleAds.Version)

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// loadEnvFile loads the .env file with godotenv, trying the usual locations
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("could not determine working directory:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../.env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info(".env loaded from:", location)
			return
		}
	}

	logrus.Warn("no .env file found in known locations")
}
