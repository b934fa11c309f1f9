package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Database engines
const (
	EngineInMem    = "inmem"
	EngineMongo    = "mongo"
	EnginePostgres = "postgres"
)

// Identity providers
const (
	IdentityJWT    = "jwt"
	IdentityGoogle = "google"
)

type (
	Config struct {
		Env             string
		Build           string
		AppName         string
		SecretKey       string
		FrontendBaseURL string
		Debug           bool
		TestMode        bool

		defaultFromEmail string

		Server   serverConfig
		Database dbConfig
		Mongo    mongoConfig
		Identity identityConfig
		Twilio   twilioConfig

		SendgridApiKey string
		RollbarToken   string
	}

	serverConfig struct {
		Host               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	dbConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	mongoConfig struct {
		URI  string
		Name string
	}

	identityConfig struct {
		Provider       string
		GoogleClientID string
	}

	twilioConfig struct {
		AccountSID string
		AuthToken  string
		From       string
	}
)

func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: "noreply@localhost"}
	}
	if addr.Name == "" {
		addr.Name = c.AppName
	}
	return *addr
}

func (db dbConfig) Address() string {
	return net.JoinHostPort(db.Host, db.Port)
}

// NewConfig reads the configuration from the environment.
// Variables are prefixed with the upper-cased ENV (DEV by default), e.g. DEV_DATABASE_ENGINE=mongo.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("appName", "CovEducation")
	v.SetDefault("secretKey", "3c2!vq9_m#ub7kx0(0u^1xw)w4ne%tt+@8yq=h6bl0d$r*p4zk")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "CovEducation <noreply@localhost>")
	v.SetDefault("server.host", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("database.engine", EngineInMem)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "coveducation")
	v.SetDefault("database.user", "coveducation")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.name", "coveducation")
	v.SetDefault("identity.provider", IdentityJWT)
	v.SetDefault("identity.googleClientID", "")
	v.SetDefault("twilio.accountSID", "")
	v.SetDefault("twilio.authToken", "")
	v.SetDefault("twilio.from", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
		v.SetDefault("database.engine", EngineInMem)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:              strings.ToLower(env),
		Build:            v.GetString("build"),
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		FrontendBaseURL:  strings.TrimSuffix(v.GetString("frontendBaseURL"), "/"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
		Server: serverConfig{
			Host:               v.GetString("server.host"),
			DebugHost:          v.GetString("server.debugHost"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
		},
		Database: dbConfig{
			Engine:        strings.ToLower(v.GetString("database.engine")),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Mongo: mongoConfig{
			URI:  v.GetString("mongo.uri"),
			Name: v.GetString("mongo.name"),
		},
		Identity: identityConfig{
			Provider:       strings.ToLower(v.GetString("identity.provider")),
			GoogleClientID: v.GetString("identity.googleClientID"),
		},
		Twilio: twilioConfig{
			AccountSID: v.GetString("twilio.accountSID"),
			AuthToken:  v.GetString("twilio.authToken"),
			From:       v.GetString("twilio.from"),
		},
		SendgridApiKey: v.GetString("sendgridApiKey"),
		RollbarToken:   v.GetString("rollbarToken"),
	}
}
