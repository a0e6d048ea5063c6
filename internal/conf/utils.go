package conf

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/fhluo/xpic/internal/errors"
)

const (
	appName = "Xpic"
	appDir  = "xpic"
	osLinux = "linux"
)

// GetDefaultConfigPaths returns the directories searched for config.yaml:
// the user config directory and the executable's directory. If config.yaml
// exists in one of them, only that directory is returned.
func GetDefaultConfigPaths() ([]string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategorySystem).
			Component("configuration").
			Context("operation", "get-config-directory").
			Build()
	}

	configPaths := []string{filepath.Join(configDir, appDir)}

	if exePath, err := os.Executable(); err == nil {
		configPaths = append(configPaths, filepath.Dir(exePath))
	}

	for _, path := range configPaths {
		if _, err := os.Stat(filepath.Join(path, "config.yaml")); err == nil {
			return []string{path}, nil
		}
	}

	return configPaths, nil
}

// FindConfigFile locates an existing config.yaml.
func FindConfigFile() (string, error) {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return "", err
	}

	for _, path := range configPaths {
		configFilePath := filepath.Join(path, "config.yaml")
		if _, err := os.Stat(configFilePath); err == nil {
			return configFilePath, nil
		}
	}

	return "", errors.Newf("config file not found").
		Category(errors.CategoryNotFound).
		Component("configuration").
		Context("operation", "find-config-file").
		Build()
}

// UserDataDir returns the per-user application data directory:
// $XDG_DATA_HOME or ~/.local/share on Linux, the user config directory
// elsewhere.
func UserDataDir() (string, error) {
	if runtime.GOOS == osLinux {
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return dir, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share"), nil
	}
	return os.UserConfigDir()
}

// defaultDirs returns the default data and cache directories. Relative
// directories are used when no user data directory can be determined.
func defaultDirs() (dataDir, cacheDir string) {
	base, err := UserDataDir()
	if err != nil {
		return "data", "cache"
	}
	root := filepath.Join(base, appName)
	return filepath.Join(root, "data"), filepath.Join(root, "cache")
}
