// Package main provides the entry point for the circload CLI.
//
// circload generates synthetic patron traffic against a library
// circulation manager: logins, random catalog walks, searches, and the
// borrow, bookmark and return cycle.
//
// Usage:
//
//	circload init
//	circload run --config circload.yaml --scenario bookmark --sessions 20
//	circload history
//
// See --help for all available options.
package main

// main is the entry point for circload.
func main() {
	Execute()
}
