package config

const (
	defaultLogDir          = "~/.local/share/shotlist/logs"
	defaultCacheDir        = "~/.cache/shotlist"
	defaultCacheFile       = "probe.db"
	defaultInspectWorkers  = 4
	defaultFFprobeBinary   = "ffprobe"
	defaultDebounceMillis  = 500
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultLogRetention    = 30
	defaultLogMaxSizeMB    = 20
	maxInspectWorkers      = 64
	defaultConfigFileName  = "shotlist.toml"
	defaultConfigLocation  = "~/.config/shotlist/config.toml"
	defaultProbeDimensions = true
)

// DefaultImageFormats lists the extensions accepted as image inputs when the
// configuration does not override them.
func DefaultImageFormats() []string {
	return []string{"jpg", "jpeg", "png", "bmp", "gif", "exr", "tiff", "tif", "webp"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			CacheDir: defaultCacheDir,
		},
		Classifier: Classifier{
			ImageFormats:    DefaultImageFormats(),
			InspectWorkers:  defaultInspectWorkers,
			ProbeDimensions: defaultProbeDimensions,
		},
		FFprobe: FFprobe{
			Binary: defaultFFprobeBinary,
		},
		Cache: Cache{
			Enabled: true,
		},
		Watch: Watch{
			DebounceMillis: defaultDebounceMillis,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetention,
			MaxSizeMB:     defaultLogMaxSizeMB,
		},
	}
}
