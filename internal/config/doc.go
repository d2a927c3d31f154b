// Package config loads and validates the dashboard configuration.
//
// # Configuration Sources
//
// Configuration is layered in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// The file is taken from INVDASH_CONFIG, or the first of config.yaml and
// configs/config.yaml that exists.
//
// # Environment Variables
//
// Variables follow the pattern INVDASH_<SECTION>_<FIELD>:
//
//	INVDASH_SERVER_PORT=8080
//	INVDASH_INVENTORY_FILE_PATH=/data/Fi.txt
//	INVDASH_INVENTORY_RELOAD_POLICY=cached
//	INVDASH_LOGGING_LEVEL=debug
//	INVDASH_SECURITY_ALLOWED_ORIGINS=http://a.example,http://b.example
//
// # Validation
//
// Every section carries validator tags; Load fails when a value is out of range
// or not one of the accepted choices.
package config
