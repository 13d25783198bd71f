// Package version holds the build version string.
package version

// Version is the current release version.
var Version = "0.3.0"
