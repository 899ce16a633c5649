// Package hierarchy assembles parent/child links over a flat entry set
// using the dot structure of entry identifiers.
package hierarchy
