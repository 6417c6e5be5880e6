// Package session drives one selection tree from line-oriented commands.
//
// Each line is a command followed by arguments ("add shots/010", "uncheck 4
// 5", "plan 4"). Errors are printed and the session keeps going; only quit,
// end of input or context cancellation end it. Node ids shown by "list" are
// the ids accepted by the mutating commands.
package session
