package bgg

import "strings"

// entityReplacer maps the fixed set of HTML entities BGG descriptions are
// known to carry. Entities outside this set pass through unchanged, and
// decoding text that contains none of them is a no-op, so repeated decoding
// is safe.
var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#039;", "'",
	"&rsquo;", "’",
	"&lsquo;", "‘",
	"&rdquo;", "”",
	"&ldquo;", "“",
)

// DecodeEntities decodes the fixed entity set used in BGG text fields.
func DecodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return entityReplacer.Replace(s)
}
