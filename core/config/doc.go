// Package config provides configuration management for datarec.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. Defaults come from `default` struct tags, so every key
// is registered and can be overridden through the environment
// (e.g. DATABASE_HOST overrides database.host).
//
// # Configuration Structure
//
//   - Server: HTTP server settings (port, API key)
//   - Database: connection used by sql sources (mysql or sqlite)
//   - Storage: S3/MinIO credentials used by object sources and report uploads
//   - Log: logging level, format and output
//   - Jobs: job directory and report destination
//
// Reconciliation jobs themselves are YAML files, see feature/job.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Jobs.Dir)
package config
