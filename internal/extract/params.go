package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/docscrape/docscrape/internal/config"
	"github.com/docscrape/docscrape/internal/model"
)

// restPrefixes are the leading markers that flag a rest/variadic
// parameter when no restPattern is configured. Order matters: the
// longest marker is tested first.
var restPrefixes = []string{"...", "**", "*"}

// parameterScope narrows parameter extraction to the first
// signature-like sub-element of the entry. Documentation pages often
// repeat parameter names in prose; scoping to the signature keeps
// extraction anchored to the declaration.
func (e *Engine) parameterScope(scope *goquery.Selection) *goquery.Selection {
	if sig := e.src.Selectors.Signature; sig != "" {
		if first := scope.Find(sig).First(); first.Length() > 0 {
			return first
		}
	}
	return scope
}

// parameters extracts parameters from scope. Descriptors are tried
// independently and all matches accumulate.
func (e *Engine) parameters(scope *goquery.Selection) []model.Parameter {
	var params []model.Parameter
	for _, desc := range e.src.Selectors.Parameters {
		scope.Find(desc.Selector).Each(func(_ int, el *goquery.Selection) {
			if desc.IsBare() {
				raw := strings.TrimSpace(el.Text())
				if raw == "" {
					return
				}
				params = append(params, model.Parameter{
					Name:   cleanParameterName(raw),
					IsRest: hasRestPrefix(raw),
				})
				return
			}
			if p, ok := e.richParameter(desc, el); ok {
				params = append(params, p)
			}
		})
	}
	return params
}

// richParameter extracts one parameter from a rich descriptor match. The
// second return value is false when the name pattern rejects the match.
func (e *Engine) richParameter(desc config.ParameterSelector, el *goquery.Selection) (model.Parameter, bool) {
	rawName := strings.TrimSpace(el.Text())
	if desc.NameSelector != "" {
		if t := firstText(el, desc.NameSelector); t != "" {
			rawName = t
		}
	}

	name := rawName
	if desc.NamePattern != nil {
		extracted, ok := desc.NamePattern.CaptureGroup(rawName)
		if !ok {
			e.logger.Debug("parameter name pattern did not match, skipping parameter",
				"text", rawName)
			return model.Parameter{}, false
		}
		name = extracted
	}

	isRest := hasRestPrefix(rawName)
	if desc.RestPattern != nil {
		isRest = desc.RestPattern.MatchString(rawName)
	}

	var typ string
	if desc.TypeSelector != "" {
		typ = firstText(el, desc.TypeSelector)
		if typ != "" && desc.TypePattern != nil {
			if cleaned, ok := desc.TypePattern.CaptureGroup(typ); ok {
				typ = cleaned
			}
		}
	}

	var def string
	defaultFound := false
	if desc.DefaultSelector != "" {
		if found := el.Find(desc.DefaultSelector).First(); found.Length() > 0 {
			defaultFound = true
			def = strings.TrimSpace(found.Text())
			if def != "" && desc.DefaultPattern != nil {
				if cleaned, ok := desc.DefaultPattern.CaptureGroup(def); ok {
					def = cleaned
				}
			}
		}
	}

	var description string
	if desc.DescriptionSelector != "" {
		description = firstText(el, desc.DescriptionSelector)
	}

	// A found default always makes the parameter optional; the pattern
	// can only add optionality on top, never remove it.
	optional := defaultFound
	if desc.OptionalPattern != nil && desc.OptionalPattern.MatchString(rawName) {
		optional = true
	}

	return model.Parameter{
		Name:        cleanParameterName(name),
		Type:        typ,
		Description: description,
		Optional:    optional,
		Default:     def,
		IsRest:      isRest,
	}, true
}

// hasRestPrefix reports whether name starts with a rest marker.
func hasRestPrefix(name string) bool {
	for _, prefix := range restPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// cleanParameterName strips trailing "="/"?" markers and leading rest
// markers from a parameter name.
func cleanParameterName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimRight(name, "=?")
	name = strings.TrimSpace(name)
	for _, prefix := range restPrefixes {
		if strings.HasPrefix(name, prefix) {
			name = strings.TrimPrefix(name, prefix)
			break
		}
	}
	return strings.TrimSpace(name)
}
