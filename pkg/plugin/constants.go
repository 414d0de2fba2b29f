// Package plugin provides the public API for colourmask solver plugins.
// External solvers should import this package instead of internal packages.
package plugin

import (
	"github.com/hashicorp/go-plugin"
)

const (
	// ProtocolVersion defines the current plugin API version.
	// Format: MAJOR.MINOR.PATCH.
	// - Increment MAJOR for breaking changes (incompatible API changes).
	// - Increment MINOR for backward-compatible additions.
	// - Increment PATCH for backward-compatible bug fixes.
	ProtocolVersion = "0.1.0"

	// SolverPluginName is the key a solver is dispensed under.
	SolverPluginName = "solver"
)

// Handshake is the handshake configuration for go-plugin protocol.
// This ensures that plugins using go-plugin can only connect to compatible hosts.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  0, // Major version from ProtocolVersion
	MagicCookieKey:   "COLOURMASK_PLUGIN",
	MagicCookieValue: "colourmask_svm_solver",
}

// PluginMap returns the plugin set served and dispensed for impl.
// Hosts pass a nil impl.
func PluginMap(impl Solver) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		SolverPluginName: &SolverRPC{Impl: impl},
	}
}

// Serve runs impl as a plugin process. It blocks until the host disconnects.
func Serve(impl Solver) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins:         PluginMap(impl),
	})
}
