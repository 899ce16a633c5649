// Package config holds the runtime crawl configuration and the
// declarative document-source model.
//
// A Source describes one documentation site entirely through CSS
// selectors and regular-expression patterns; there is no site-specific
// code anywhere else in the program. Descriptor fields that accept
// either a bare selector or a richer selector+pattern object are modeled
// as closed two-variant unions (ExampleSelector, ParameterSelector) with
// custom YAML and JSON unmarshalling.
//
// Config carries the crawl controller's runtime options (delay,
// concurrency, depth, checkpointing) and is populated from CLI flags.
package config
