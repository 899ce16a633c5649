package config

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Source is the declarative description of one documentation site: where
// to find navigation links, entry anchors, names, descriptions, examples,
// parameters, and class members, plus the patterns used to classify and
// clean extracted text.
//
// A Source is immutable once loaded. The extraction engine and the crawl
// controller only read it.
type Source struct {
	// Name identifies the source. It becomes the configName on every
	// extracted entry and keys the entry database.
	Name string `yaml:"name" json:"name"`

	// BaseURL is the site root, used for documentation and reporting.
	BaseURL string `yaml:"baseUrl" json:"baseUrl"`

	// IndexURL is the crawl starting point. Navigation links extracted
	// from this page seed the frontier.
	IndexURL string `yaml:"indexUrl" json:"indexUrl"`

	// Version is the documented product version, if known.
	Version string `yaml:"version,omitempty" json:"version,omitempty"`

	// DefaultLanguage is the language assigned to examples whose
	// descriptor does not resolve a more specific one.
	DefaultLanguage string `yaml:"defaultLanguage,omitempty" json:"defaultLanguage,omitempty"`

	// Selectors locates content within pages.
	Selectors Selectors `yaml:"selectors" json:"selectors"`

	// Patterns classifies and cleans extracted text.
	Patterns Patterns `yaml:"patterns" json:"patterns"`
}

// Selectors is the CSS-selector bundle of a source. Every field except
// ContentLinks is optional: an absent selector disables the corresponding
// extraction step, it is never an error.
type Selectors struct {
	// NavigationLinks matches anchors in site navigation (sidebars,
	// tables of contents).
	NavigationLinks string `yaml:"navigationLinks,omitempty" json:"navigationLinks,omitempty"`

	// SubNavigationLinks matches anchors in secondary navigation.
	SubNavigationLinks string `yaml:"subNavigationLinks,omitempty" json:"subNavigationLinks,omitempty"`

	// ContentLinks matches the entry anchors themselves. Each matched
	// element is a candidate entry.
	ContentLinks string `yaml:"contentLinks" json:"contentLinks"`

	// Namespace matches elements whose text forms the page-level
	// namespace, outermost first in document order.
	Namespace string `yaml:"namespace,omitempty" json:"namespace,omitempty"`

	// Name matches the name sub-element within an entry anchor. When it
	// matches nothing, the anchor's full text is used instead.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// ID matches an element carrying an explicit identifier for the entry.
	ID string `yaml:"id,omitempty" json:"id,omitempty"`

	// Title is an ordered selector list for the entry title.
	Title SelectorList `yaml:"title,omitempty" json:"title,omitempty"`

	// Description is an ordered selector list for description blocks.
	// All selectors contribute, in order; this is not first-match-wins.
	Description SelectorList `yaml:"description,omitempty" json:"description,omitempty"`

	// Signature matches the declaration text of an entry.
	Signature string `yaml:"signature,omitempty" json:"signature,omitempty"`

	// Returns matches the return-value documentation of an entry.
	Returns string `yaml:"returns,omitempty" json:"returns,omitempty"`

	// Examples is an ordered list of example descriptors. Descriptors are
	// tried independently and all matches accumulate.
	Examples []ExampleSelector `yaml:"examples,omitempty" json:"examples,omitempty"`

	// Parameters is an ordered list of parameter descriptors, scoped to
	// the first signature-like sub-element of an entry.
	Parameters []ParameterSelector `yaml:"parameters,omitempty" json:"parameters,omitempty"`

	// Methods configures class-member extraction for class entries.
	Methods *MemberSelectors `yaml:"methods,omitempty" json:"methods,omitempty"`

	// Properties configures property extraction for class entries.
	Properties *MemberSelectors `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// Patterns is the regular-expression bundle of a source. Type patterns
// are tested against an anchor's full text in the fixed priority order
// class > method > function > module > property; the first match wins.
type Patterns struct {
	IsClass    *Pattern `yaml:"isClass,omitempty" json:"isClass,omitempty"`
	IsMethod   *Pattern `yaml:"isMethod,omitempty" json:"isMethod,omitempty"`
	IsFunction *Pattern `yaml:"isFunction,omitempty" json:"isFunction,omitempty"`
	IsModule   *Pattern `yaml:"isModule,omitempty" json:"isModule,omitempty"`
	IsProperty *Pattern `yaml:"isProperty,omitempty" json:"isProperty,omitempty"`

	// NameExtract extracts the entry name; capture group 1 is the name.
	// A non-match skips the entry (logged, not fatal).
	NameExtract *Pattern `yaml:"nameExtract,omitempty" json:"nameExtract,omitempty"`

	// IDExtract extracts the identifier from the ID selector's text;
	// capture group 1 is the identifier. A non-match falls back to the
	// namespace-joined name.
	IDExtract *Pattern `yaml:"idExtract,omitempty" json:"idExtract,omitempty"`

	// SignatureClean cleans the signature text; capture group 1 replaces
	// the raw text when the pattern matches, otherwise the raw text is kept.
	SignatureClean *Pattern `yaml:"signatureClean,omitempty" json:"signatureClean,omitempty"`
}

// SelectorList is an ordered list of CSS selectors. In YAML it accepts
// either a single scalar selector or a sequence.
type SelectorList []string

// UnmarshalYAML accepts a scalar or a sequence of selectors.
func (s *SelectorList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		*s = SelectorList{single}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*s = SelectorList(list)
		return nil
	default:
		return fmt.Errorf("selector list: expected scalar or sequence, got %v", value.Kind)
	}
}

// ExampleSelector locates code examples within an entry. It is a closed
// two-variant union: a bare selector (just a CSS selector string, examples
// take the source's default language) or a rich descriptor with language
// resolution rules.
//
// Language resolution precedence, weakest to strongest: descriptor
// Language, then the LanguageAttr attribute value, then the first
// LanguageClass capture group matching one of the element's classes.
type ExampleSelector struct {
	bare bool

	// Selector matches the example elements.
	Selector string `yaml:"selector" json:"selector"`

	// Language is the base language for matched examples.
	Language string `yaml:"language,omitempty" json:"language,omitempty"`

	// LanguageAttr names an attribute holding the language, e.g.
	// "data-lang". A non-empty attribute value overrides Language.
	LanguageAttr string `yaml:"languageAttr,omitempty" json:"languageAttr,omitempty"`

	// LanguageClass extracts the language from the element's class list;
	// capture group 1 of the first matching class wins and overrides both
	// Language and LanguageAttr.
	LanguageClass *Pattern `yaml:"languageClass,omitempty" json:"languageClass,omitempty"`
}

// BareExampleSelector builds the bare variant from a selector string.
func BareExampleSelector(selector string) ExampleSelector {
	return ExampleSelector{bare: true, Selector: selector}
}

// IsBare reports whether this descriptor is the bare-selector variant.
func (e ExampleSelector) IsBare() bool {
	return e.bare
}

// UnmarshalYAML accepts a bare selector scalar or a descriptor mapping.
func (e *ExampleSelector) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var selector string
		if err := value.Decode(&selector); err != nil {
			return err
		}
		*e = BareExampleSelector(selector)
		return nil
	}

	type plain ExampleSelector
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*e = ExampleSelector(p)
	return nil
}

// MarshalJSON preserves the union shape: bare descriptors serialize as a
// plain string so checkpointed configurations restore identically.
func (e ExampleSelector) MarshalJSON() ([]byte, error) {
	if e.bare {
		return json.Marshal(e.Selector)
	}
	type plain ExampleSelector
	return json.Marshal(plain(e))
}

// UnmarshalJSON accepts a bare selector string or a descriptor object.
func (e *ExampleSelector) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var selector string
		if err := json.Unmarshal(data, &selector); err != nil {
			return err
		}
		*e = BareExampleSelector(selector)
		return nil
	}

	type plain ExampleSelector
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = ExampleSelector(p)
	return nil
}

// ParameterSelector locates parameters within an entry's signature scope.
// It is a closed two-variant union: a bare selector (the matched element's
// trimmed text is the parameter name) or a rich descriptor with per-field
// sub-selectors and cleanup patterns.
type ParameterSelector struct {
	bare bool

	// Selector matches the parameter elements.
	Selector string `yaml:"selector" json:"selector"`

	// NameSelector matches the name sub-element. Empty means the matched
	// element's own text.
	NameSelector string `yaml:"nameSelector,omitempty" json:"nameSelector,omitempty"`

	// NamePattern cleans the name; capture group 1 is the name. A
	// non-match skips the parameter entirely.
	NamePattern *Pattern `yaml:"namePattern,omitempty" json:"namePattern,omitempty"`

	// RestPattern detects rest/variadic parameters. When absent, a
	// leading rest marker on the name is used instead.
	RestPattern *Pattern `yaml:"restPattern,omitempty" json:"restPattern,omitempty"`

	// TypeSelector matches the type sub-element.
	TypeSelector string `yaml:"typeSelector,omitempty" json:"typeSelector,omitempty"`

	// TypePattern cleans the type text; capture group 1 replaces it when
	// the pattern matches.
	TypePattern *Pattern `yaml:"typePattern,omitempty" json:"typePattern,omitempty"`

	// DefaultSelector matches the default-value sub-element. A found
	// default forces the parameter optional.
	DefaultSelector string `yaml:"defaultSelector,omitempty" json:"defaultSelector,omitempty"`

	// DefaultPattern cleans the default-value text; capture group 1
	// replaces it when the pattern matches.
	DefaultPattern *Pattern `yaml:"defaultPattern,omitempty" json:"defaultPattern,omitempty"`

	// DescriptionSelector matches the parameter description.
	DescriptionSelector string `yaml:"descriptionSelector,omitempty" json:"descriptionSelector,omitempty"`

	// OptionalPattern marks the parameter optional when it matches the
	// raw (uncleaned) name. It can only add optionality: a parameter with
	// a default stays optional regardless.
	OptionalPattern *Pattern `yaml:"optionalPattern,omitempty" json:"optionalPattern,omitempty"`
}

// BareParameterSelector builds the bare variant from a selector string.
func BareParameterSelector(selector string) ParameterSelector {
	return ParameterSelector{bare: true, Selector: selector}
}

// IsBare reports whether this descriptor is the bare-selector variant.
func (p ParameterSelector) IsBare() bool {
	return p.bare
}

// UnmarshalYAML accepts a bare selector scalar or a descriptor mapping.
func (p *ParameterSelector) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var selector string
		if err := value.Decode(&selector); err != nil {
			return err
		}
		*p = BareParameterSelector(selector)
		return nil
	}

	type plain ParameterSelector
	var pl plain
	if err := value.Decode(&pl); err != nil {
		return err
	}
	*p = ParameterSelector(pl)
	return nil
}

// MarshalJSON preserves the union shape for checkpoint round-trips.
func (p ParameterSelector) MarshalJSON() ([]byte, error) {
	if p.bare {
		return json.Marshal(p.Selector)
	}
	type plain ParameterSelector
	return json.Marshal(plain(p))
}

// UnmarshalJSON accepts a bare selector string or a descriptor object.
func (p *ParameterSelector) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var selector string
		if err := json.Unmarshal(data, &selector); err != nil {
			return err
		}
		*p = BareParameterSelector(selector)
		return nil
	}

	type plain ParameterSelector
	var pl plain
	if err := json.Unmarshal(data, &pl); err != nil {
		return err
	}
	*p = ParameterSelector(pl)
	return nil
}

// MemberSelectors configures extraction of class members (methods or
// properties). Every field except Container and Name is optional and
// populated only when the corresponding sub-selector is present.
type MemberSelectors struct {
	// Container matches one element per member within the entry's scope.
	Container string `yaml:"container" json:"container"`

	// Name matches the member name within the container. Members with an
	// empty name are skipped entirely.
	Name string `yaml:"name" json:"name"`

	// Description is an ordered selector list for member descriptions.
	Description SelectorList `yaml:"description,omitempty" json:"description,omitempty"`

	// Signature matches the member declaration (methods).
	Signature string `yaml:"signature,omitempty" json:"signature,omitempty"`

	// Type matches the member type (properties).
	Type string `yaml:"type,omitempty" json:"type,omitempty"`

	// Default matches the member default value (properties).
	Default string `yaml:"default,omitempty" json:"default,omitempty"`

	// IsStatic is a presence test: the member is static when this
	// selector matches anything within the container.
	IsStatic string `yaml:"isStatic,omitempty" json:"isStatic,omitempty"`

	// IsPrivate is a presence test like IsStatic.
	IsPrivate string `yaml:"isPrivate,omitempty" json:"isPrivate,omitempty"`

	// Decorators matches decorator elements; trimmed non-empty texts are
	// collected.
	Decorators string `yaml:"decorators,omitempty" json:"decorators,omitempty"`
}

// Validate checks the source for structural problems. It returns the
// first error found; fixing one error often changes the rest.
func (s *Source) Validate() error {
	if s.Name == "" {
		return ErrMissingSourceName
	}
	if s.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if s.IndexURL == "" {
		return ErrMissingIndexURL
	}
	if s.Selectors.ContentLinks == "" {
		return ErrMissingContentLinks
	}

	p := s.Patterns
	if p.IsClass == nil && p.IsMethod == nil && p.IsFunction == nil && p.IsModule == nil && p.IsProperty == nil {
		return ErrNoTypePatterns
	}

	for i, ex := range s.Selectors.Examples {
		if ex.Selector == "" {
			return fmt.Errorf("examples[%d]: %w", i, ErrEmptyDescriptorSelector)
		}
	}
	for i, ps := range s.Selectors.Parameters {
		if ps.Selector == "" {
			return fmt.Errorf("parameters[%d]: %w", i, ErrEmptyDescriptorSelector)
		}
	}
	if m := s.Selectors.Methods; m != nil && (m.Container == "" || m.Name == "") {
		return fmt.Errorf("methods: %w", ErrIncompleteMemberSelectors)
	}
	if pr := s.Selectors.Properties; pr != nil && (pr.Container == "" || pr.Name == "") {
		return fmt.Errorf("properties: %w", ErrIncompleteMemberSelectors)
	}

	return nil
}
