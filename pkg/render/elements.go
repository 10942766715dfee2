package render

import (
	"github.com/frond-ui/frond/pkg/build"
	"github.com/frond-ui/frond/pkg/state"
)

// kindTags maps the built-in descriptor kinds to their HTML tags.
// Unknown kinds render as a div carrying the kind in a data attribute.
var kindTags = map[string]string{
	"panel":    "div",
	"stack":    "div",
	"row":      "div",
	"card":     "section",
	"text":     "span",
	"label":    "span",
	"heading":  "h1",
	"subtitle": "h2",
	"button":   "button",
	"input":    "input",
	"image":    "img",
	"link":     "a",
	"list":     "ul",
	"item":     "li",
	"divider":  "hr",
	"fragment": "", // children only, no wrapper
}

// TagFor returns the HTML tag for a descriptor kind, and whether the kind
// is one of the built-ins.
func TagFor(kind string) (string, bool) {
	tag, ok := kindTags[kind]
	return tag, ok
}

// RegisterBuiltins registers a renderable for every built-in kind. The
// instances are the HTML tag names; the Renderer works directly off node
// kinds and attributes, so mounting has nothing else to do.
func RegisterBuiltins(reg *build.Registry) {
	for kind, tag := range kindTags {
		tag := tag
		reg.Register(kind, build.RenderableFunc(func(*build.Node, *state.Store) (any, error) {
			return tag, nil
		}))
	}
}

// voidElements have no closing tag and cannot carry children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

func isVoidElement(tag string) bool {
	return voidElements[tag]
}

// booleanAttrs render as the bare attribute name when true.
var booleanAttrs = map[string]bool{
	"autofocus": true,
	"checked":   true,
	"disabled":  true,
	"hidden":    true,
	"multiple":  true,
	"open":      true,
	"readonly":  true,
	"required":  true,
	"selected":  true,
}

func isBooleanAttr(name string) bool {
	return booleanAttrs[name]
}
