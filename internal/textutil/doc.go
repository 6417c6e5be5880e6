// Package textutil holds small text rendering helpers shared by the CLI and
// the interactive session: rounded tables and a generic conditional.
package textutil
