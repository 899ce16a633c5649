// Package fetch retrieves documentation pages over HTTP and parses them
// into goquery documents for the extraction engine.
package fetch
