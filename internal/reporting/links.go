package reporting

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// HelpLinks returns the destinations of the links in an audit's markdown
// help text, in document order.
func HelpLinks(helpText string) []string {
	if helpText == "" {
		return nil
	}

	source := []byte(helpText)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var links []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Link:
			links = append(links, string(v.Destination))
		case *ast.AutoLink:
			target := string(v.Label(source))
			if len(v.Protocol) > 0 && !strings.HasPrefix(target, string(v.Protocol)) {
				target = string(v.Protocol) + target
			}
			links = append(links, target)
		}
		return ast.WalkContinue, nil
	})
	return links
}
