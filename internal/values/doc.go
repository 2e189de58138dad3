// Package values implements substitution values and their provenance.
//
// A Source is an immutable, origin-labelled set of key/value entries. Merge
// layers an ordered list of sources into a Resolved mapping where, for each
// key, the last source defining it wins and is recorded as the key's owner.
// Callers order sources by increasing priority: project facts, template
// defaults, user configuration, command line.
package values
