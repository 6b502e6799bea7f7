package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/fitbit"
	githuboauth "golang.org/x/oauth2/github"
)

type RedisSettings struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
}

// LinkSettings holds the timing knobs of the account-linking flow.
type LinkSettings struct {
	// StateTTL is the absolute lifetime of an in-flight linking flow.
	StateTTL time.Duration
	// SweepInterval is how often abandoned link states are evicted.
	SweepInterval time.Duration
	// PrimaryTokenTTL bounds the window between primary verification and the
	// provider legs.
	PrimaryTokenTTL time.Duration
	// SecondFactorTokenTTL bounds the window between the two provider legs.
	SecondFactorTokenTTL time.Duration
	// SessionTokenTTL is the lifetime of a full session.
	SessionTokenTTL time.Duration
}

type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	JWTSecret         string
	FirebaseProjectID string
	SQLitePath        string

	// FrontendCallbackURL receives popup-mode callback results as query
	// parameters.
	FrontendCallbackURL string

	OAuthProviders map[string]*oauth2.Config
	RedisSettings  RedisSettings
	Link           LinkSettings
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SQLITE_PATH", "file:questfit.db?_fk=1")
	viper.SetDefault("LINK_STATE_TTL", "10m")
	viper.SetDefault("LINK_SWEEP_INTERVAL", "1m")
	viper.SetDefault("PRIMARY_TOKEN_TTL", "10m")
	viper.SetDefault("SECOND_FACTOR_TOKEN_TTL", "10m")
	viper.SetDefault("SESSION_TOKEN_TTL", "168h")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	jwtSecret := viper.GetString("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	oauthProviders := make(map[string]*oauth2.Config)
	oauthProviders["FITBIT"] = &oauth2.Config{
		ClientID:     viper.GetString("FITBIT_CLIENT_ID"),
		ClientSecret: viper.GetString("FITBIT_CLIENT_SECRET"),
		RedirectURL:  viper.GetString("FITBIT_REDIRECT_URL"),
		Scopes:       []string{"activity", "profile"},
		Endpoint:     fitbit.Endpoint,
	}
	oauthProviders["GITHUB"] = &oauth2.Config{
		ClientID:     viper.GetString("GITHUB_CLIENT_ID"),
		ClientSecret: viper.GetString("GITHUB_CLIENT_SECRET"),
		RedirectURL:  viper.GetString("GITHUB_REDIRECT_URL"),
		Scopes:       []string{"read:user", "user:email"},
		Endpoint:     githuboauth.Endpoint,
	}

	return &Config{
		Port:     viper.GetString("APP_PORT"),
		AppEnv:   viper.GetString("APP_ENV"),
		LogLevel: viper.GetString("LOG_LEVEL"),

		JWTSecret:         jwtSecret,
		FirebaseProjectID: viper.GetString("FIREBASE_PROJECT_ID"),
		SQLitePath:        viper.GetString("SQLITE_PATH"),

		FrontendCallbackURL: viper.GetString("FRONTEND_CALLBACK_URL"),

		OAuthProviders: oauthProviders,
		RedisSettings: RedisSettings{
			Enabled:  viper.GetBool("REDIS_ENABLED"),
			Address:  viper.GetString("REDIS_ADDRESS"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Link: LinkSettings{
			StateTTL:             viper.GetDuration("LINK_STATE_TTL"),
			SweepInterval:        viper.GetDuration("LINK_SWEEP_INTERVAL"),
			PrimaryTokenTTL:      viper.GetDuration("PRIMARY_TOKEN_TTL"),
			SecondFactorTokenTTL: viper.GetDuration("SECOND_FACTOR_TOKEN_TTL"),
			SessionTokenTTL:      viper.GetDuration("SESSION_TOKEN_TTL"),
		},
	}, nil
}
