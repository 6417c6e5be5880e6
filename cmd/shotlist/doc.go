// Package main hosts the shotlist CLI entrypoint and command graph.
//
// Commands classify dropped paths into shot groups and single images, print
// the result, build encoder input from a checked selection, run an
// interactive selection session, or watch directories for new renders.
// Configuration and logging are resolved once per invocation in
// commandContext so subcommands only wire the internal packages together.
package main
