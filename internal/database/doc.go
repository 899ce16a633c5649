// Package database persists finished crawls and their extracted entries
// in SQLite, keeping a queryable history per source.
package database
