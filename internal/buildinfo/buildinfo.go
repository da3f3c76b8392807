// Package buildinfo carries build-time metadata injected via ldflags.
// It is not user configuration and never comes from the settings file.
package buildinfo

import "fmt"

// UnknownValue is reported for any field not set at build time.
const UnknownValue = "unknown"

// Context holds the version metadata of this binary.
type Context struct {
	version   string
	buildDate string
}

// NewContext creates a Context. Empty fields read back as UnknownValue.
func NewContext(version, buildDate string) *Context {
	return &Context{version: version, buildDate: buildDate}
}

// Version returns the build version string.
func (c *Context) Version() string {
	if c == nil || c.version == "" {
		return UnknownValue
	}
	return c.version
}

// BuildDate returns the build date string.
func (c *Context) BuildDate() string {
	if c == nil || c.buildDate == "" {
		return UnknownValue
	}
	return c.buildDate
}

// String renders the metadata for the --version output.
func (c *Context) String() string {
	return fmt.Sprintf("%s (built %s)", c.Version(), c.BuildDate())
}
