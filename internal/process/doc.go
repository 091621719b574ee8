// Package process manages the process groups of external tools so a
// cancelled conversion never leaves orphaned typesetting helpers behind.
package process
