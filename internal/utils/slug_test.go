package utils

import (
	"strings"
	"testing"
	"time"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Cool App", "my-cool-app"},
		{"  spaced   out  ", "spaced-out"},
		{"App_v2.0", "app-v2-0"},
		{"中文名字", ""},
		{"Emoji 🚀 Launch", "emoji-launch"},
		{"--already-dashed--", "already-dashed"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderMarkdownSanitizes(t *testing.T) {
	html := string(RenderMarkdown("**bold** <script>alert(1)</script>"))
	if !strings.Contains(html, "<strong>bold</strong>") {
		t.Errorf("markdown not rendered: %q", html)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("script tag must be stripped: %q", html)
	}
}

func TestCacheTTL(t *testing.T) {
	c := GetCache()

	c.Set("test:key", "value", -time.Second) // 已过期
	if got := c.Get("test:key"); got != nil {
		t.Errorf("expired entry = %v, want nil", got)
	}

	c.Set("project:abc", 1, time.Minute)
	c.Set("page:home", 1, time.Minute)
	c.Set("launch:range:2025-06-02:2025-06-10:free", 1, time.Minute)
	c.Set("unrelated:key", 1, time.Minute)
	c.InvalidateLaunchPages("abc")
	if c.Get("project:abc") != nil || c.Get("page:home") != nil {
		t.Error("launch pages must be invalidated")
	}
	if c.Get("launch:range:2025-06-02:2025-06-10:free") != nil {
		t.Error("availability calendar entries must be invalidated")
	}
	if c.Get("unrelated:key") == nil {
		t.Error("unrelated entries must survive invalidation")
	}
}
