// SPDX-License-Identifier: MPL-2.0

// Package config handles conbuild configuration using Viper with CUE as the file format.
//
// A single config file is loaded: the --config file when given, else the user file
// (~/.config/conbuild/config.cue or the platform equivalent), else conbuild.cue in the
// project directory. Files are validated against an embedded CUE schema
// (config_schema.cue). CONBUILD_* environment variables override file values.
package config
