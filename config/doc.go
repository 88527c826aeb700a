// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// Values from a .env file or the process environment (LIBOCC_*) override
// the file, so endpoints and credentials can be injected per deployment.
package config
