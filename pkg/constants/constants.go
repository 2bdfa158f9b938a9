package constants

const (
	// ConfigName is the config file name viper looks for (without extension).
	ConfigName = "config"
	// ConfigFormat is the config file format.
	ConfigFormat = "yaml"
	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "DENTELIA"
)
