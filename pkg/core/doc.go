// Package core provides a small, stable facade over asmscan's internal
// packages for external integrations. It re-exports a narrow API surface so
// other tools can depend on a stable import path without reaching into
// internal implementation packages.
//
// Example:
//
//	findings, err := core.Scan("bin/Release/Mod.dll", core.Config{})
//	if err != nil { /* handle */ }
//	_ = core.MarshalReport(os.Stdout, "Mod.dll", core.Filter(findings, false))
package core
