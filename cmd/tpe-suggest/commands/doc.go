// Package commands wires the tpe-suggest CLI: a cobra root command that
// reads a JSON search-space + trial-history file and prints one
// suggested trial doc, following bbak-mcs-mcp's cmd/<bin>/commands
// layout (PersistentPreRun initializes logging, RunE does the work).
package commands
