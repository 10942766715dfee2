package render

import (
	"bytes"
	"fmt"
	"io"
)

// Page wraps a rendered tree in a complete HTML document, as served by the
// preview server.
type Page struct {
	// Title is the document title.
	Title string

	// Lang is the html element's lang attribute. Defaults to "en".
	Lang string

	// Styles are stylesheet URLs linked in the head.
	Styles []string

	// LiveURL is the websocket endpoint for live fragment updates. Empty
	// disables the live script.
	LiveURL string
}

// WriteTo renders the full document around body using r.
func (p Page) WriteTo(w io.Writer, body any, r *Renderer) error {
	lang := p.Lang
	if lang == "" {
		lang = "en"
	}

	if _, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html lang=\"%s\">\n<head>\n", escapeAttr(lang)); err != nil {
		return err
	}
	fmt.Fprintf(w, "<meta charset=\"utf-8\">\n<title>%s</title>\n", escapeHTML(p.Title))
	for _, href := range p.Styles {
		fmt.Fprintf(w, "<link rel=\"stylesheet\" href=\"%s\">\n", escapeAttr(href))
	}
	if _, err := io.WriteString(w, "</head>\n<body>\n"); err != nil {
		return err
	}

	if err := r.RenderToWriter(w, body); err != nil {
		return err
	}

	if p.LiveURL != "" {
		fmt.Fprintf(w, liveScript, escapeAttr(p.LiveURL))
	}
	_, err := io.WriteString(w, "\n</body>\n</html>\n")
	return err
}

// Render renders the full document around body to a string.
func (p Page) Render(body any, r *Renderer) (string, error) {
	var buf bytes.Buffer
	if err := p.WriteTo(&buf, body, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// liveScript swaps rebuilt fragments in place. The server pushes one JSON
// message per replaced subtree: {"path": ..., "html": ...}.
const liveScript = `<script>
(function () {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "%s");
  ws.onmessage = function (ev) {
    var msg = JSON.parse(ev.data);
    var el = document.querySelector('[data-frond-path="' + msg.path + '"]');
    if (el) {
      el.outerHTML = msg.html;
    } else {
      location.reload();
    }
  };
})();
</script>`
