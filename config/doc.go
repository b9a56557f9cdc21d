// Package config loads butler's own settings: the default task file, the
// concurrency limit, logging and telemetry.
//
// It uses Viper to read an optional butler.yml and binds environment
// variables with the BUTLER_ prefix, so BUTLER_JOBS=4 sets jobs and
// BUTLER_LOGGING_LEVEL=debug sets logging.level. A .env file is loaded
// with godotenv before binding.
//
// # Usage
//
//	cfg, err := config.Load()
//	cfg, err := config.Load(config.WithConfigFile("ci/butler.yml"))
package config
