package extract

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/docscrape/docscrape/internal/config"
	"github.com/docscrape/docscrape/internal/model"
)

// methods extracts class members from the entry scope. Members with an
// empty name are skipped entirely. Each method recurses into the same
// parameter and returns extraction as the top-level entry, scoped to the
// method's own container.
func (e *Engine) methods(scope *goquery.Selection) []model.Method {
	ms := e.src.Selectors.Methods

	var methods []model.Method
	scope.Find(ms.Container).Each(func(_ int, container *goquery.Selection) {
		name := firstText(container, ms.Name)
		if name == "" {
			return
		}

		m := model.Method{
			Name:        name,
			Description: collectText(container, ms.Description),
			Decorators:  e.decorators(container, ms),
		}
		if ms.Signature != "" {
			m.Signature = firstText(container, ms.Signature)
		}
		if ms.IsStatic != "" {
			m.IsStatic = container.Find(ms.IsStatic).Length() > 0
		}
		if ms.IsPrivate != "" {
			m.IsPrivate = container.Find(ms.IsPrivate).Length() > 0
		}
		if len(e.src.Selectors.Parameters) > 0 {
			m.Parameters = e.parameters(e.parameterScope(container))
		}
		m.Returns = e.returns(container)

		methods = append(methods, m)
	})
	return methods
}

// properties extracts class attributes from the entry scope. Properties
// with an empty name are skipped entirely.
func (e *Engine) properties(scope *goquery.Selection) []model.Property {
	ps := e.src.Selectors.Properties

	var properties []model.Property
	scope.Find(ps.Container).Each(func(_ int, container *goquery.Selection) {
		name := firstText(container, ps.Name)
		if name == "" {
			return
		}

		p := model.Property{
			Name:        name,
			Description: collectText(container, ps.Description),
			Decorators:  e.decorators(container, ps),
		}
		if ps.Type != "" {
			p.Type = firstText(container, ps.Type)
		}
		if ps.Default != "" {
			p.Default = firstText(container, ps.Default)
		}
		if ps.IsStatic != "" {
			p.IsStatic = container.Find(ps.IsStatic).Length() > 0
		}
		if ps.IsPrivate != "" {
			p.IsPrivate = container.Find(ps.IsPrivate).Length() > 0
		}

		properties = append(properties, p)
	})
	return properties
}

// decorators collects trimmed non-empty decorator texts from a member
// container.
func (e *Engine) decorators(container *goquery.Selection, ms *config.MemberSelectors) []string {
	if ms.Decorators == "" {
		return nil
	}
	return collectText(container, config.SelectorList{ms.Decorators})
}
