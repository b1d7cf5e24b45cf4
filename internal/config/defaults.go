package config

const (
	defaultConfigPath      = "~/.config/vgmimport/config.toml"
	projectConfigName      = "vgmimport.toml"
	defaultManifestPath    = "./vgmrips/games.json"
	defaultArchiveDir      = "./vgmrips"
	defaultUploadsDir      = "./uploads"
	defaultDataDir         = "~/.local/share/vgmimport"
	defaultLogDir          = "~/.local/share/vgmimport/logs"
	defaultTrackExtension  = ".vgz"
	defaultStoredExtension = ".vgz"
	defaultPersistWorkers  = 4
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ManifestPath: defaultManifestPath,
			ArchiveDir:   defaultArchiveDir,
			UploadsDir:   defaultUploadsDir,
			DataDir:      defaultDataDir,
			LogDir:       defaultLogDir,
		},
		Import: Import{
			MaxGames:        0,
			TrackExtension:  defaultTrackExtension,
			StoredExtension: defaultStoredExtension,
			PersistWorkers:  defaultPersistWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
