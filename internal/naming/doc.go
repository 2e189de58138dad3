// Package naming turns a raw project name into identifier fragments that are
// safe in most target ecosystems, and derives the namespace and module forms
// used by templates.
package naming
