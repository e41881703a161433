// Package config provides configuration structures and utilities for methodstatus.
// It defines the release in scope, the attribute type keys of the host
// repository, table labels, and report output preferences.
package config
