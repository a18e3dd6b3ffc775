package config

const (
	defaultSpoolDir             = "~/.local/share/reel/spool"
	defaultLogDir               = "~/.local/share/reel/logs"
	defaultSocket               = "~/.local/share/reel/reeld.sock"
	defaultExportDir            = "~/reel-exports"
	defaultAPIBind              = "127.0.0.1:7519"
	defaultGenerationBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	defaultGenerationTimeout    = 120
	defaultGenerationRetries    = 5
	defaultGenerationClipDelay  = 2
	defaultTimelinePixelsPerSec = 4.0
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SpoolDir:  defaultSpoolDir,
			LogDir:    defaultLogDir,
			Socket:    defaultSocket,
			ExportDir: defaultExportDir,
			APIBind:   defaultAPIBind,
		},
		Generation: Generation{
			BaseURL:          defaultGenerationBaseURL,
			TimeoutSeconds:   defaultGenerationTimeout,
			RetryAttempts:    defaultGenerationRetries,
			ClipDelaySeconds: defaultGenerationClipDelay,
		},
		Timeline: Timeline{
			PixelsPerSecond: defaultTimelinePixelsPerSec,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
