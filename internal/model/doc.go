// Package model defines the data structures shared across docscrape.
//
// The central type is Entry, one structured documentation record
// (class, method, function, module, or property) produced by the
// extraction engine. Entries carry their provenance, nested parameters,
// examples, and class members, and are serialized as-is into checkpoints,
// reports, and the entry database.
package model
