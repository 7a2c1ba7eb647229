// Package config provides configuration structures and utilities for ucomment.
// It defines the crawl options, the client identity sent to the service and
// the optional YAML configuration file that overrides both.
package config
