// Package utils exposes reusable helpers consumed by multiple commands.
//
// It houses the ConfigurationLoader, which layers embedded defaults, config
// files, dotenv files, and prefixed environment variables through Viper, the
// LoggerFactory that builds zap loggers writing to standard error, and the
// CommandContextAccessor used to pass execution flags between Cobra commands.
package utils
