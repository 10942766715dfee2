package render

import "testing"

func TestEscapeHTML(t *testing.T) {
	tests := []struct{ in, want string }{
		{"plain", "plain"},
		{"<b>&</b>", "&lt;b&gt;&amp;&lt;/b&gt;"},
		{`"quoted" 'single'`, "&quot;quoted&quot; &#39;single&#39;"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := escapeHTML(tt.in); got != tt.want {
			t.Errorf("escapeHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEscapeAttr(t *testing.T) {
	if got := escapeAttr("a\nb\tc"); got != "a&#10;b&#9;c" {
		t.Errorf("escapeAttr = %q", got)
	}
	if got := escapeAttr(`x="y"`); got != "x=&quot;y&quot;" {
		t.Errorf("escapeAttr = %q", got)
	}
}
