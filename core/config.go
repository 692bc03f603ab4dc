package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host            string
		Port            int
		DebugHost       string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	DatabaseConfig struct {
		Engine        string // postgres | sqlite3
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		Path          string // sqlite3 only
		Debug         bool
	}

	ReconcileConfig struct {
		AutoThreshold    int
		SuggestThreshold int
		ManualThreshold  int
		MaxSuggestions   int
		Timeout          time.Duration
		PersistTimeout   time.Duration
		MergeAttempts    uint
		MergeRetryDelay  time.Duration
	}

	Config struct {
		Env          string
		Build        string
		Debug        bool
		TestMode     bool
		AppName      string
		SecretKey    string
		RollbarToken string
		TokenTTL     time.Duration

		Server    ServerConfig
		Database  DatabaseConfig
		Reconcile ReconcileConfig
	}
)

func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Montree")
	v.SetDefault("secretKey", "ka7%-q2(mz8$+vt3=pw&x0yh4)r!bj#c9(#ne5f^$lud7s1tg")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("tokenTTL", 24*time.Hour)

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.debugHost", "localhost:4000")
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "montree")
	v.SetDefault("database.user", "montree")
	v.SetDefault("database.password", "montree")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.path", "montree.db")
	v.SetDefault("database.debug", false)

	v.SetDefault("reconcile.autoThreshold", 90)
	v.SetDefault("reconcile.suggestThreshold", 60)
	v.SetDefault("reconcile.manualThreshold", 1)
	v.SetDefault("reconcile.maxSuggestions", 5)
	v.SetDefault("reconcile.timeout", 2*time.Minute)
	v.SetDefault("reconcile.persistTimeout", 30*time.Second)
	v.SetDefault("reconcile.mergeAttempts", 3)
	v.SetDefault("reconcile.mergeRetryDelay", 500*time.Millisecond)
}

// NewConfig loads the configuration from defaults, an optional `config/.env.<env>` file and the environment.
// Environment variables are prefixed with the uppercased env name, e.g. `PROD_DATABASE_HOST`.
func NewConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	confDir := os.Getenv("CONFIG_DIR")
	if confDir == "" {
		confDir = "config"
	}
	dotEnvPath := filepath.Join(confDir, ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		TokenTTL:     v.GetDuration("tokenTTL"),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Port:            v.GetInt("server.port"),
			DebugHost:       v.GetString("server.debugHost"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
			Path:          v.GetString("database.path"),
			Debug:         v.GetBool("database.debug"),
		},
		Reconcile: ReconcileConfig{
			AutoThreshold:    v.GetInt("reconcile.autoThreshold"),
			SuggestThreshold: v.GetInt("reconcile.suggestThreshold"),
			ManualThreshold:  v.GetInt("reconcile.manualThreshold"),
			MaxSuggestions:   v.GetInt("reconcile.maxSuggestions"),
			Timeout:          v.GetDuration("reconcile.timeout"),
			PersistTimeout:   v.GetDuration("reconcile.persistTimeout"),
			MergeAttempts:    uint(v.GetInt("reconcile.mergeAttempts")),
			MergeRetryDelay:  v.GetDuration("reconcile.mergeRetryDelay"),
		},
	}
	return conf, nil
}
