package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/docscrape/docscrape/internal/config"
	"github.com/docscrape/docscrape/internal/model"
)

// examples collects code examples from the entry scope. Descriptors are
// tried independently and all matches accumulate; the result is never
// nil so entries always serialize with an explicit examples list.
func (e *Engine) examples(scope *goquery.Selection) []model.Example {
	examples := []model.Example{}
	for _, desc := range e.src.Selectors.Examples {
		scope.Find(desc.Selector).Each(func(_ int, el *goquery.Selection) {
			code := strings.TrimSpace(el.Text())
			if code == "" {
				return
			}
			examples = append(examples, model.Example{
				Code:     code,
				Language: e.resolveLanguage(desc, el),
			})
		})
	}
	return examples
}

// resolveLanguage resolves the language of one example element.
//
// Precedence, weakest to strongest: the source default, the descriptor's
// own language, the languageAttr attribute value, and finally the first
// class in the element's class list captured by languageClass. The class
// match is applied last so it overrides an attribute value.
func (e *Engine) resolveLanguage(desc config.ExampleSelector, el *goquery.Selection) string {
	if desc.IsBare() {
		return e.src.DefaultLanguage
	}

	lang := desc.Language
	if lang == "" {
		lang = e.src.DefaultLanguage
	}

	if desc.LanguageAttr != "" {
		if v, ok := el.Attr(desc.LanguageAttr); ok && v != "" {
			lang = v
		}
	}

	if desc.LanguageClass != nil {
		if classes, ok := el.Attr("class"); ok {
			for _, class := range strings.Fields(classes) {
				if captured, ok := desc.LanguageClass.CaptureGroup(class); ok {
					lang = captured
					break
				}
			}
		}
	}

	return lang
}
