// ============================================================================
// SmartWeb - SmartScript Web Runtime
// ============================================================================
//
// Package:     version
// Description: Central version information for the server and its CLI
// Author:      Mike Stoffels
// Created:     2026-03-02
// License:     MIT
// ============================================================================

package version

import "fmt"

// Version constants
const (
	// Platform version
	Platform = "1.0.0"

	// SmartScript language revision understood by the engine
	SmartScript = "1.1"
)

// Build information, overridden via -ldflags
var (
	GitCommit = "development"
	BuildDate = "unknown"
)

// ServerHeader returns the product token used in log output and banners
func ServerHeader() string {
	return fmt.Sprintf("smartweb/%s", Platform)
}
