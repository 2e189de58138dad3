// Package scaffold generates a project from a template specification. It
// powers "ptool new": values are layered and checked up front, every path,
// body and command is rendered in memory, and only then are files written
// and commands run, so a missing value never leaves partial output behind.
package scaffold
