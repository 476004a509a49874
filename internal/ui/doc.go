// Package ui provides semantic text formatting for CLI output.
//
// Formatters colorize when the terminal supports it. When NO_COLOR is set
// or stdout is not a terminal, they fall back to plain decorations
// (backticks for code, quotes for highlighted values) or none at all.
//
//	ui.Path.Sprint("~/.bashrc")
//	ui.Success.Sprint("✓")
//	ui.Muted.Sprint("not on this host")
package ui
