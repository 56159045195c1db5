package config

import (
	"fmt"
	"os"
	"time"
)

// App holds the runtime configuration read from the environment at startup.
// The struct is built once in main and passed down explicitly; nothing in the
// codebase reads environment variables after boot.
type App struct {
	Env          string
	Port         string
	MongoURI     string
	DBName       string
	RedisAddr    string
	RedisPass    string
	JWTSecret    string
	JWTExpiresIn time.Duration
}

// Production reports whether the app runs with production error reporting,
// i.e. internal error detail is omitted from responses.
func (a App) Production() bool {
	return a.Env == "production"
}

// LoadApp reads configuration from the environment. MONGO_URI and JWT_SECRET
// are required; everything else falls back to a sensible default.
func LoadApp() (App, error) {
	app := App{
		Env:       getEnv("APP_ENV", "development"),
		Port:      getEnv("PORT", "8080"),
		MongoURI:  os.Getenv("MONGO_URI"),
		DBName:    getEnv("DB", "parkspot"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass: os.Getenv("REDIS_PASS"),
		JWTSecret: os.Getenv("JWT_SECRET"),
	}

	if app.MongoURI == "" {
		return App{}, fmt.Errorf("MONGO_URI not set in environment")
	}
	if app.JWTSecret == "" {
		return App{}, fmt.Errorf("JWT_SECRET not set in environment")
	}

	expiresIn := getEnv("JWT_EXPIRES_IN", "24h")
	d, err := time.ParseDuration(expiresIn)
	if err != nil {
		return App{}, fmt.Errorf("invalid JWT_EXPIRES_IN %q: %v", expiresIn, err)
	}
	app.JWTExpiresIn = d

	return app, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
