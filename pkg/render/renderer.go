package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/frond-ui/frond/pkg/build"
	"github.com/frond-ui/frond/pkg/remote"
)

// Config configures the HTML renderer.
type Config struct {
	// Pretty enables pretty-printed output with indentation. Development
	// only; it increases output size.
	Pretty bool

	// Indent is the string used per indentation level in pretty mode.
	// Defaults to two spaces.
	Indent string

	// IncludePaths emits data-frond-path attributes on every node. The
	// preview server's live script uses them to swap rebuilt fragments in
	// place.
	IncludePaths bool
}

// Renderer renders built node trees to HTML. A Renderer is stateless and
// safe for concurrent use.
type Renderer struct {
	config Config
}

// NewRenderer creates a Renderer with the given configuration.
func NewRenderer(config Config) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders a value to an HTML string.
func (r *Renderer) RenderToString(v any) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a value to the given writer. Built nodes render
// as elements, primitives as escaped text, pending and failed remote
// values as inline placeholders. Structured values that are plain data
// render as nothing.
func (r *Renderer) RenderToWriter(w io.Writer, v any) error {
	return r.renderValue(w, v, 0)
}

func (r *Renderer) renderValue(w io.Writer, v any, depth int) error {
	switch x := v.(type) {
	case nil:
		return nil
	case *build.Node:
		return r.renderNode(w, x, depth)
	case remote.PendingValue:
		_, err := fmt.Fprintf(w, `<span class="frond-pending" title="%s"></span>`, escapeAttr(x.Directive))
		return err
	case remote.ErrorValue:
		_, err := fmt.Fprintf(w, `<span class="frond-failed" title="%s">%s</span>`,
			escapeAttr(x.Directive), escapeHTML(x.Message))
		return err
	case []any:
		for _, item := range x {
			if err := r.renderValue(w, item, depth); err != nil {
				return err
			}
		}
		return nil
	case string:
		_, err := io.WriteString(w, escapeHTML(x))
		return err
	case map[string]any:
		// Plain data, not markup.
		return nil
	default:
		_, err := io.WriteString(w, escapeHTML(fmt.Sprint(x)))
		return err
	}
}

func (r *Renderer) renderNode(w io.Writer, n *build.Node, depth int) error {
	if n.Err != nil {
		return r.renderErrorNode(w, n, depth)
	}

	tag, builtin := TagFor(n.Kind)
	if builtin && tag == "" {
		// Fragment: children only.
		return r.renderValue(w, n.Children, depth)
	}
	if !builtin {
		tag = "div"
	}

	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}

	if _, err := fmt.Fprintf(w, "<%s", tag); err != nil {
		return err
	}
	if !builtin {
		if _, err := fmt.Fprintf(w, ` data-frond-kind="%s"`, escapeAttr(n.Kind)); err != nil {
			return err
		}
	}
	if r.config.IncludePaths {
		if _, err := fmt.Fprintf(w, ` data-frond-path="%s"`, escapeAttr(n.Path)); err != nil {
			return err
		}
	}
	if err := r.writeAttrs(w, n); err != nil {
		return err
	}

	if isVoidElement(tag) {
		_, err := io.WriteString(w, ">")
		if err == nil && r.config.Pretty {
			_, err = io.WriteString(w, "\n")
		}
		return err
	}

	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	if text, ok := n.Attrs["text"]; ok {
		if err := r.renderValue(w, text, depth+1); err != nil {
			return err
		}
	}
	if len(n.Children) > 0 {
		if r.config.Pretty {
			io.WriteString(w, "\n")
		}
		for _, child := range n.Children {
			if err := r.renderValue(w, child, depth+1); err != nil {
				return err
			}
		}
		if r.config.Pretty {
			r.writeIndent(w, depth)
		}
	}

	if _, err := fmt.Fprintf(w, "</%s>", tag); err != nil {
		return err
	}
	if r.config.Pretty {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}

// renderErrorNode renders an isolated build failure as a visible box.
// The rest of the page renders normally around it.
func (r *Renderer) renderErrorNode(w io.Writer, n *build.Node, depth int) error {
	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}
	if _, err := io.WriteString(w, `<div class="frond-error"`); err != nil {
		return err
	}
	if r.config.IncludePaths {
		if _, err := fmt.Fprintf(w, ` data-frond-path="%s"`, escapeAttr(n.Path)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, ">%s</div>", escapeHTML(n.Err.Error())); err != nil {
		return err
	}
	if r.config.Pretty {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}

// writeAttrs renders a node's primitive attributes in sorted order.
// The "text" attribute becomes element content, and values that are data
// rather than markup text (nodes, sequences, structured values, remote
// markers) are not attribute material.
func (r *Renderer) writeAttrs(w io.Writer, n *build.Node) error {
	if len(n.Attrs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if key == "text" || strings.HasPrefix(key, "_") {
			continue
		}
		value := n.Attrs[key]

		if isBooleanAttr(key) {
			if b, ok := value.(bool); ok {
				if b {
					if _, err := fmt.Fprintf(w, " %s", key); err != nil {
						return err
					}
				}
				continue
			}
		}

		s, ok := attrString(value)
		if !ok || s == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, key, escapeAttr(s)); err != nil {
			return err
		}
	}
	return nil
}

// attrString converts an attribute value to its string form. The second
// return is false for values that do not belong in an attribute.
func attrString(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case bool:
		if v {
			return "true", true
		}
		return "false", true
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), true
	case float32, float64:
		return fmt.Sprintf("%g", v), true
	default:
		return "", false
	}
}

func (r *Renderer) writeIndent(w io.Writer, depth int) {
	for i := 0; i < depth; i++ {
		io.WriteString(w, r.config.Indent)
	}
}
