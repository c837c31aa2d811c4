// Package integration_tests runs the whole application against snapshot and
// configuration files written to a temporary directory.
package integration_tests
