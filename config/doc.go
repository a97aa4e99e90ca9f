// Package config loads postsync settings from POSTSYNC_* environment
// variables and converts them into the option sets of the packages they
// configure.
package config
