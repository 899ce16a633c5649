package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/docscrape/docscrape/internal/config"
)

// collectText evaluates each selector in order against scope and
// concatenates all matched elements' trimmed non-empty texts across all
// selectors in that order. This is not first-match-wins: a primary
// paragraph selector and a fallback selector both contribute.
func collectText(scope *goquery.Selection, selectors config.SelectorList) []string {
	var blocks []string
	for _, selector := range selectors {
		if selector == "" {
			continue
		}
		scope.Find(selector).Each(func(_ int, el *goquery.Selection) {
			if t := strings.TrimSpace(el.Text()); t != "" {
				blocks = append(blocks, t)
			}
		})
	}
	return blocks
}

// firstText returns the trimmed text of the first element matched by
// selector within scope, or an empty string.
func firstText(scope *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	found := scope.Find(selector).First()
	if found.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(found.Text())
}
