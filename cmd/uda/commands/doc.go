// Package commands implements the uda command line: reading data from a
// server gateway, plotting it, printing its widget view and serving the
// same operations as MCP tools.
package commands
