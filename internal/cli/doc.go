// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// builds the cobra command tree, resolves settings through viper and
// translates them into the application's internal configuration.
package cli
