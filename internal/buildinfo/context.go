// Package buildinfo holds build-time metadata that is not part of the user
// configuration. Values are injected with -ldflags:
//
//	go build -ldflags "-X github.com/fhluo/xpic/internal/buildinfo.version=1.4.0 \
//	    -X github.com/fhluo/xpic/internal/buildinfo.buildDate=2025-01-03"
package buildinfo

import "runtime/debug"

// UnknownValue is reported for metadata that was not injected.
const UnknownValue = "unknown"

const appName = "xpic"

var (
	version   string
	buildDate string
)

// BuildInfo provides access to build-time metadata.
type BuildInfo interface {
	GetVersion() string
	GetBuildDate() string
}

// Context contains build-time metadata.
type Context struct {
	// Version holds the release tag, or the module version for go install builds
	Version string

	// BuildDate is the time when the binary was built
	BuildDate string
}

// NewContext creates a Context from explicit values.
func NewContext(version, buildDate string) *Context {
	return &Context{Version: version, BuildDate: buildDate}
}

// Current returns the metadata of the running binary. Without -ldflags the
// version falls back to the main module version recorded by the toolchain.
func Current() *Context {
	v := version
	if v == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	return NewContext(v, buildDate)
}

// GetVersion implements BuildInfo.GetVersion
func (c *Context) GetVersion() string {
	if c == nil || c.Version == "" {
		return UnknownValue
	}
	return c.Version
}

// GetBuildDate implements BuildInfo.GetBuildDate
func (c *Context) GetBuildDate() string {
	if c == nil || c.BuildDate == "" {
		return UnknownValue
	}
	return c.BuildDate
}

// Release returns the release name reported to telemetry, e.g. "xpic@1.4.0".
func (c *Context) Release() string {
	return appName + "@" + c.GetVersion()
}

// UserAgent returns the default User-Agent for upstream requests.
func (c *Context) UserAgent() string {
	if c == nil || c.Version == "" {
		return "Xpic"
	}
	return "Xpic/" + c.Version
}

var _ BuildInfo = (*Context)(nil)
