package config

const (
	defaultLogDir   = "~/.local/share/wxunpack/logs"
	defaultLogLevel = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Unpack: Unpack{
			FilterFramework: true,
			CleanOld:        true,
			History:         true,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}
