package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContext_Getters(t *testing.T) {
	tests := []struct {
		name      string
		ctx       *Context
		version   string
		buildDate string
		release   string
		userAgent string
	}{
		{
			name:      "nil context",
			ctx:       nil,
			version:   UnknownValue,
			buildDate: UnknownValue,
			release:   "xpic@unknown",
			userAgent: "Xpic",
		},
		{
			name:      "empty values",
			ctx:       NewContext("", ""),
			version:   UnknownValue,
			buildDate: UnknownValue,
			release:   "xpic@unknown",
			userAgent: "Xpic",
		},
		{
			name:      "injected values",
			ctx:       NewContext("1.4.0", "2025-01-03"),
			version:   "1.4.0",
			buildDate: "2025-01-03",
			release:   "xpic@1.4.0",
			userAgent: "Xpic/1.4.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.version, tt.ctx.GetVersion())
			assert.Equal(t, tt.buildDate, tt.ctx.GetBuildDate())
			assert.Equal(t, tt.release, tt.ctx.Release())
			assert.Equal(t, tt.userAgent, tt.ctx.UserAgent())
		})
	}
}

func TestCurrent_UsesInjectedValues(t *testing.T) {
	oldVersion, oldDate := version, buildDate
	t.Cleanup(func() { version, buildDate = oldVersion, oldDate })

	version, buildDate = "2.0.0", "2025-06-01"
	info := Current()
	assert.Equal(t, "2.0.0", info.GetVersion())
	assert.Equal(t, "2025-06-01", info.GetBuildDate())
}
