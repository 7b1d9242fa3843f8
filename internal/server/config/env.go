package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/aviato/internal/flagx"
	"github.com/joho/godotenv"
)

// Environment variable names read by parseEnv.
const (
	EnvGRPCAddr    = "AVIATO_GRPC_ADDR"
	EnvHTTPAddr    = "AVIATO_HTTP_ADDR"
	EnvDatabaseDSN = "AVIATO_DATABASE_DSN"
	EnvSecretKey   = "AVIATO_SECRET_KEY"
	EnvLogLevel    = "AVIATO_LOG_LEVEL"
)

// parseEnv loads a dotenv file (the one given with -env, otherwise ./.env
// if it exists) into the process environment and then overlays any
// AVIATO_* variables. Variables already set in the environment win over the
// file. An explicit -env file that cannot be read panics.
func parseEnv(config *Config) {
	if path := flagx.EnvFile(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, os.Getenv(EnvGRPCAddr))
	setString(&config.EndpointAddrHTTP, os.Getenv(EnvHTTPAddr))
	setString(&config.DatabaseDSN, os.Getenv(EnvDatabaseDSN))
	setString(&config.SecretKey, os.Getenv(EnvSecretKey))
	setString(&config.LogLevel, os.Getenv(EnvLogLevel))
}
