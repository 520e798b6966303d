// Package config provides configuration management for docs-server.
//
// It utilizes Viper for loading configuration from command-line flags,
// environment variables and an optional .env file. Precedence, highest first:
// flag, environment variable, .env file, `default` struct tag.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: mount path, port, asset directory and timeouts (SERVER_*)
//   - Storage: S3/MinIO credentials, bucket and prefix for mirror (STORAGE_*)
//   - Log: logging level and format (LOG_*)
//
// # Usage
//
//	cfg, err := config.LoadConfig(".", cmd.Flags())
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Server.Port)
package config
