// Package render implements the template rendering context: a text/template
// engine configured with strict missing-key semantics, a set of built-in
// filters for identifiers and git URLs, per-template custom filters, and
// caches for compiled templates and tokenized names.
//
// A Context is built for one generation run and discarded afterwards. It is
// not safe for concurrent use.
package render
