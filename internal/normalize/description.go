package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var glyphCode = regexp.MustCompile(`\(cid:(\d+)\)`)

// DecodeGlyphs replaces "(cid:N)" glyph codes left by some PDF extractors
// with the ASCII character N. Codes outside the printable range are dropped.
func DecodeGlyphs(s string) string {
	if !strings.Contains(s, "(cid:") {
		return s
	}
	return glyphCode.ReplaceAllStringFunc(s, func(m string) string {
		n, err := strconv.Atoi(glyphCode.FindStringSubmatch(m)[1])
		if err != nil || n < 32 || n > 126 {
			return ""
		}
		return string(rune(n))
	})
}

// CleanDescription collapses whitespace and line-break artifacts, removes the
// given fragments (typically reference numbers already captured elsewhere),
// and trims separator noise from both ends. It never fails: when cleanup
// would leave nothing, the whitespace-collapsed input is returned.
func CleanDescription(raw string, drop ...string) string {
	base := spaces.ReplaceAllString(strings.TrimSpace(DecodeGlyphs(raw)), " ")

	s := base
	for _, d := range drop {
		d = strings.TrimSpace(d)
		if d != "" {
			s = strings.ReplaceAll(s, d, " ")
		}
	}
	s = spaces.ReplaceAllString(s, " ")
	s = strings.Trim(s, " |-*,;:")
	if s == "" {
		return base
	}
	return s
}
