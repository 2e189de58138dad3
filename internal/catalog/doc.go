// Package catalog manages the local template repository. It handles cloning,
// updating and repairing the checkout, freshness tracking, and checking that
// the repository declares itself compatible with this version of ptool.
package catalog
