package config

const (
	defaultBaseURL        = "http://localhost:8080"
	defaultTimeoutSeconds = 0
	defaultAuthMode       = "bearer"
	defaultStateDir       = "~/.local/state/fragments"
	defaultLogFormat      = "console"
	defaultLogLevel       = "warn"
)

// Default returns a Config populated with repository defaults. The base URL
// and log level stay empty so normalize can consult API_URL and
// FRAGMENTS_LOG_LEVEL before applying defaultBaseURL and defaultLogLevel.
func Default() Config {
	return Config{
		API: API{
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Auth: Auth{
			Mode:     defaultAuthMode,
			StateDir: defaultStateDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
		},
	}
}
