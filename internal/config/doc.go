// Package config loads the nestcache configuration file.
package config
