// Package cli turns command-line arguments into an app.Config. It owns
// flag parsing, usage output and the exit codes for bad input; everything
// after that belongs to the app package.
package cli
