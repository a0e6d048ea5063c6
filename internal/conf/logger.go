package conf

import "github.com/fhluo/xpic/internal/logger"

// GetLogger returns the configuration module logger. It is fetched on each
// call because the global logger is replaced after settings are loaded.
func GetLogger() logger.Logger {
	return logger.Global().Module("configuration")
}
