package conf

import (
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/fhluo/xpic/internal/logger"
	"github.com/fhluo/xpic/pkg/bing"
)

// Default values shared with the embedded config.yaml.
const (
	DefaultMirrorURL = "https://raw.githubusercontent.com/fhluo/xpic/main/data/{market}.json"
	DefaultListen    = "127.0.0.1:8089"
)

// setDefaultConfig registers default values for every setting.
func setDefaultConfig() {
	viper.SetDefault("debug", false)
	viper.SetDefault("market", string(bing.DefaultMarket))

	dataDir, cacheDir := defaultDirs()
	viper.SetDefault("paths.datadir", dataDir)
	viper.SetDefault("paths.cachedir", cacheDir)

	viper.SetDefault("refresh.mirrorenabled", true)
	viper.SetDefault("refresh.mirrorurl", DefaultMirrorURL)
	viper.SetDefault("refresh.mirrorthreshold", "168h")
	viper.SetDefault("refresh.apithreshold", "24h")
	viper.SetDefault("refresh.count", bing.DefaultNumber)
	viper.SetDefault("refresh.uhd", true)
	viper.SetDefault("refresh.cachettl", "24h")

	viper.SetDefault("http.timeout", "30s")
	viper.SetDefault("http.useragent", "")
	viper.SetDefault("http.ratelimit", 4.0)
	viper.SetDefault("http.concurrency", 4)

	viper.SetDefault("bing.baseurl", bing.BaseURL)

	viper.SetDefault("logging.default_level", logger.DefaultLogLevel)
	viper.SetDefault("logging.timezone", "Local")
	viper.SetDefault("logging.console.enabled", true)
	viper.SetDefault("logging.console.level", logger.DefaultLogLevel)
	viper.SetDefault("logging.file_output.enabled", false)
	viper.SetDefault("logging.file_output.path", filepath.Join("logs", "xpic.log"))
	viper.SetDefault("logging.file_output.level", logger.DefaultLogLevel)

	viper.SetDefault("sentry.enabled", false)
	viper.SetDefault("sentry.dsn", "")

	viper.SetDefault("webserver.listen", DefaultListen)
	viper.SetDefault("webserver.metrics", true)
}
