package factcheck

import (
	"fmt"
	"strings"
)

// SourceReferences renders the human-readable reference list appended below
// an annotated reading. Returns "" when no source was actually cited.
func SourceReferences(sources []Source) string {
	var b strings.Builder
	n := 0
	for _, s := range sources {
		if !s.Used {
			continue
		}
		n++
		fmt.Fprintf(&b, "%d. %s - %s\n", n, s.Title, s.URL)
	}
	if n == 0 {
		return ""
	}
	return "---\n**Nguồn tham khảo:**\n" + b.String()
}
