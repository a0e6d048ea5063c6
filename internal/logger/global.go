package logger

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// Provider hands out module loggers. Both CentralLogger and Logger satisfy it;
// a plain Logger nests the module under its own.
type Provider interface {
	Module(name string) Logger
}

var global atomic.Pointer[Provider]

// SetGlobal installs the provider returned by Global. main calls it once the
// CentralLogger is configured.
func SetGlobal(p Provider) {
	global.Store(&p)
}

// Global returns the process-wide logger provider. Before SetGlobal it
// writes info and above to stderr.
func Global() Provider {
	if p := global.Load(); p != nil {
		return *p
	}
	return NewSlogLogger(os.Stderr, LogLevelInfo, time.Local)
}

// ParseLevel validates a level name. "warning" is accepted for warn.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LogLevelTrace, nil
	case "debug":
		return LogLevelDebug, nil
	case "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	default:
		return "", fmt.Errorf("unknown log level %q", s)
	}
}
