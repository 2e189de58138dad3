// Package expr evaluates the small expression language used by template
// filters. Expressions are HCL native syntax evaluated against a fixed table
// of pure functions; there is no access to the filesystem, processes or
// arbitrary code.
package expr
