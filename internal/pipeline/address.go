package pipeline

import (
	"regexp"
	"strings"
)

// propertyHeader is the property designation printed at the top of every
// certificate page, e.g. "[집합건물] 서울특별시 마포구 망원동 1 제101동 제1호".
var propertyHeader = regexp.MustCompile(`(?m)^\s*[\[【]\s*(?:집합건물|건물|토지)\s*[\]】]\s*(.+)$`)

// DeriveAddress returns the property address from the certificate header,
// or "" when no header line is present.
func DeriveAddress(text string) string {
	m := propertyHeader.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
