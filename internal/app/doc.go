// Package app wires application dependencies for the CLI.
//
// It builds the renderer, result cache, Kafka publisher and data client from
// config.Config, exposing them via the Wire struct for commands to use.
package app
