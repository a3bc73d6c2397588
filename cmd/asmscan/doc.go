// Package asmscan provides the command-line interface for asmscan. The root
// command scans one assembly; subcommands cover scan history, configuration
// scaffolding and shell completion.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/varalys/asmscan/cmd/asmscan"
//	func main() { asmscan.Execute() }
package asmscan
