package conf

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/fhluo/xpic/pkg/bing"
)

// EnvPrefix is prepended to every environment variable, e.g. XPIC_MARKET.
const EnvPrefix = "XPIC"

// envBinding holds metadata for environment variable bindings
type envBinding struct {
	ConfigKey string
	EnvVar    string
	Validate  func(string) error
}

// getEnvBindings returns the explicitly validated environment variables.
// Other keys are still reachable through AutomaticEnv.
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "XPIC_DEBUG", validateEnvBool},
		{"market", "XPIC_MARKET", validateEnvMarket},
		{"paths.datadir", "XPIC_DATA_DIR", nil},
		{"paths.cachedir", "XPIC_CACHE_DIR", nil},
		{"refresh.mirrorenabled", "XPIC_MIRROR_ENABLED", validateEnvBool},
		{"refresh.mirrorurl", "XPIC_MIRROR_URL", validateEnvURL},
		{"refresh.mirrorthreshold", "XPIC_MIRROR_THRESHOLD", validateEnvDuration},
		{"refresh.apithreshold", "XPIC_API_THRESHOLD", validateEnvDuration},
		{"http.timeout", "XPIC_HTTP_TIMEOUT", validateEnvDuration},
		{"bing.baseurl", "XPIC_BASE_URL", validateEnvURL},
		{"sentry.dsn", "XPIC_SENTRY_DSN", nil},
		{"webserver.listen", "XPIC_LISTEN", nil},
	}
}

// bindEnvVars binds and validates the explicit environment variables.
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if value := os.Getenv(binding.EnvVar); value != "" {
				if err := binding.Validate(value); err != nil {
					warnings = append(warnings, fmt.Sprintf("invalid %s value %q: %v", binding.EnvVar, value, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}
	return nil
}

// configureEnvironmentVariables enables XPIC_ overrides for every key.
// refresh.count, for example, becomes XPIC_REFRESH_COUNT.
func configureEnvironmentVariables() error {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	return bindEnvVars()
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("must be true or false")
	}
	return nil
}

func validateEnvMarket(value string) error {
	_, err := bing.ParseMarket(value)
	return err
}

func validateEnvDuration(value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func validateEnvURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return err
	}
	if !u.IsAbs() {
		return fmt.Errorf("must be an absolute URL")
	}
	return nil
}
