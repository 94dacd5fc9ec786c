// Package file stores operator-local settings in a TOML file.
//
// The settings file holds the handful of values that belong to the
// person running the tool rather than to a deployment, such as the
// Google Calendar API key and the GitHub publish token. Run
// configuration is the yaml file handled by internal/config.
package file
