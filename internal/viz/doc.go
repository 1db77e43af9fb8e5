// Package viz renders simulation output for the terminal: asciigraph
// trajectory charts, lipgloss-styled summary tables and sparklines.
package viz
