// ABOUTME: Build identity constants
// ABOUTME: Shared by the root command, logs, and exports
package version

const (
	// Version is the tool version.
	Version = "3.0.1"

	// Product is the user-facing tool name.
	Product = "Speaker Balancer"
)
