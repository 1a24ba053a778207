// Package config loads typed configuration from the environment.
//
// Structs are annotated with github.com/caarlos0/env tags and parsed once per
// type; an optional .env file is read through github.com/joho/godotenv before
// the first parse. Every platform component (sqlite, pg, redis, mongo, jwt,
// httpserver) exposes a Config struct meant to be loaded this way.
package config
