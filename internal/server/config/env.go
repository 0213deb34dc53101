package config

const (
	EnvSecretKey   = "ACCOUNTS_SECRET_KEY"
	EnvDatabaseDSN = "ACCOUNTS_DATABASE_DSN"
)

// parseEnv reads the values that should not travel on a command line.
func parseEnv(config *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvSecretKey); ok && v != "" {
		config.SecretKey = v
	}
	if v, ok := lookup(EnvDatabaseDSN); ok && v != "" {
		config.DatabaseDSN = v
	}
}
