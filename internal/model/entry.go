package model

import (
	"strings"
	"time"
)

// EntryType classifies a documentation entry.
// Classification happens once at extraction time and is mutually exclusive:
// the first matching type pattern wins in the order class > method >
// function > module > property.
type EntryType string

// Entry type values in classification priority order.
const (
	TypeClass    EntryType = "class"
	TypeMethod   EntryType = "method"
	TypeFunction EntryType = "function"
	TypeModule   EntryType = "module"
	TypeProperty EntryType = "property"
)

// Entry is one structured documentation record produced by the extraction
// engine. It is the unit of output for the whole crawl.
//
// Design decision: We keep Entry a plain data struct with JSON tags rather
// than hiding fields behind accessors because:
//  1. Entries are serialized wholesale into checkpoints and reports
//  2. The hierarchy builder mutates Parent/Children after extraction
//  3. Downstream consumers treat entries as records, not objects
type Entry struct {
	// ID is the dot-delimited hierarchical identifier. It is computed
	// deterministically from the source configuration: either the configured
	// id selector/pattern, or the namespace joined with the name.
	// Duplicate IDs across pages are possible and are preserved as-is.
	ID string `json:"id"`

	// Type is the entry classification (class, method, function, module,
	// or property).
	Type EntryType `json:"type"`

	// Namespace holds the enclosing scope names, outermost first.
	Namespace []string `json:"namespace,omitempty"`

	// Name is the bare symbol name without namespace qualification.
	Name string `json:"name"`

	// Title is a human-readable heading for the entry.
	Title string `json:"title,omitempty"`

	// Description holds the collected text blocks, in document order.
	Description []string `json:"description,omitempty"`

	// Signature is the cleaned declaration text, if a signature selector
	// was configured and matched.
	Signature string `json:"signature,omitempty"`

	// Source records where the entry came from.
	Source Provenance `json:"source"`

	// Examples holds code examples with resolved languages.
	// Always non-nil so the JSON output carries an explicit empty list.
	Examples []Example `json:"examples"`

	// Parameters holds extracted parameters, if configured.
	Parameters []Parameter `json:"parameters,omitempty"`

	// Returns describes the return value. Nil when the returns selector is
	// absent or matched only empty text.
	Returns *Returns `json:"returns,omitempty"`

	// Methods holds class members. Populated only for class entries when a
	// methods selector set is configured.
	Methods []Method `json:"methods,omitempty"`

	// Properties holds class properties. Populated only for class entries
	// when a properties selector set is configured.
	Properties []Property `json:"properties,omitempty"`

	// ScrapedAt is the extraction timestamp.
	ScrapedAt time.Time `json:"scrapedAt"`

	// Parent is the ID of the enclosing entry. Populated only by the
	// hierarchy builder.
	Parent string `json:"parent,omitempty"`

	// Children holds IDs of directly nested entries, in entry processing
	// order. Populated only by the hierarchy builder.
	Children []string `json:"children,omitempty"`
}

// Provenance records the origin of an entry. It is immutable after
// extraction.
type Provenance struct {
	// ConfigName is the name of the document source configuration.
	ConfigName string `json:"configName"`

	// URL is the absolute URL the entry was extracted from, including any
	// anchor fragment.
	URL string `json:"url"`

	// NormalizedURL is URL with the fragment stripped. This is the
	// deduplication key used by the crawl frontier.
	NormalizedURL string `json:"normalizedUrl"`

	// Version is the documented product version, if the source declares one.
	Version string `json:"version,omitempty"`
}

// Parameter describes one parameter of a function, method, or constructor.
type Parameter struct {
	// Name is the parameter name with trailing "="/"?" markers and leading
	// rest markers stripped.
	Name string `json:"name"`

	// Type is the declared parameter type, if a type selector matched.
	Type string `json:"type,omitempty"`

	// Description is the parameter documentation text.
	Description string `json:"description,omitempty"`

	// Optional is true when a default value was found, or when the
	// configured optional-detection pattern matched the raw name.
	// A found default always forces Optional to true; the pattern can only
	// add optionality, never remove it.
	Optional bool `json:"optional"`

	// Default is the default value text, if a default selector matched.
	Default string `json:"default,omitempty"`

	// IsRest reports whether this is a rest/variadic parameter.
	IsRest bool `json:"isRest"`
}

// Example is a code example attached to an entry.
type Example struct {
	// Code is the example source text.
	Code string `json:"code"`

	// Language is always resolved to a concrete value: the descriptor's
	// language, overridden by the language attribute, overridden by the
	// language-class pattern, falling back to the source's default language.
	Language string `json:"language"`

	// Description is optional explanatory text.
	Description string `json:"description,omitempty"`
}

// Returns describes the return value of a function or method.
type Returns struct {
	// Description is the trimmed returns text. A Returns value is only
	// created for non-empty text.
	Description string `json:"description"`
}

// Method is a class member extracted from a method container element.
type Method struct {
	Name        string      `json:"name"`
	Description []string    `json:"description,omitempty"`
	Signature   string      `json:"signature,omitempty"`
	IsStatic    bool        `json:"isStatic,omitempty"`
	IsPrivate   bool        `json:"isPrivate,omitempty"`
	Decorators  []string    `json:"decorators,omitempty"`
	Parameters  []Parameter `json:"parameters,omitempty"`
	Returns     *Returns    `json:"returns,omitempty"`
}

// Property is a class attribute extracted from a property container element.
type Property struct {
	Name        string   `json:"name"`
	Description []string `json:"description,omitempty"`
	Type        string   `json:"type,omitempty"`
	Default     string   `json:"default,omitempty"`
	IsStatic    bool     `json:"isStatic,omitempty"`
	IsPrivate   bool     `json:"isPrivate,omitempty"`
	Decorators  []string `json:"decorators,omitempty"`
}

// IDSeparator joins namespace segments and names into entry identifiers.
const IDSeparator = "."

// JoinID builds the canonical identifier for a (namespace, name) pair.
// The result is stable for a given input, which keeps entry IDs
// deterministic across crawls.
func JoinID(namespace []string, name string) string {
	if len(namespace) == 0 {
		return name
	}
	parts := make([]string, 0, len(namespace)+1)
	parts = append(parts, namespace...)
	parts = append(parts, name)
	return strings.Join(parts, IDSeparator)
}

// ParentID returns the identifier one level up from id, or an empty string
// if id has no separator.
func ParentID(id string) string {
	idx := strings.LastIndex(id, IDSeparator)
	if idx <= 0 {
		return ""
	}
	return id[:idx]
}
