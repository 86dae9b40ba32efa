package utils

import (
	"strings"
)

// Slugify 把项目名转成 URL slug：小写、空白转连字符、去掉其他符号
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true // 开头不允许连字符
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case r == ' ' || r == '-' || r == '_' || r == '.':
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
