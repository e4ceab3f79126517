package intent

import "regexp"

var (
	mentionPattern    = regexp.MustCompile(`@\w+`)
	urlPattern        = regexp.MustCompile(`(\w+?://)?(www\.)?[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z]{1,10}\b[-a-zA-Z0-9()@:%_+.~#?&/=]*`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Sanitize strips @-mentions and URLs from raw input text and collapses runs
// of whitespace into single spaces. Mentions are replaced with a space, URLs
// with nothing; the order is fixed so output stays reproducible. The URL
// pattern tolerates hosts without a scheme ("t.co/x" is removed too).
func Sanitize(text string) string {
	text = mentionPattern.ReplaceAllString(text, " ")
	text = urlPattern.ReplaceAllString(text, "")
	return whitespacePattern.ReplaceAllString(text, " ")
}
