// Package config defines all application configuration and loads it
// from a config file and environment variables via viper, validating
// the result with go-playground/validator.
//
// Every numeric scheduling parameter lives here, in SchedulerConfig,
// with its default documented next to the field. Nothing in the
// scheduler carries a tuning literal of its own.
package config
