package devotional

import "strings"

var (
	encoder = strings.NewReplacer("\r\n", `\n`, "\n", `\n`)
	decoder = strings.NewReplacer(`\n`, "\n")
)

// EncodeText replaces line breaks with the two-character sequence `\n`,
// the form in which devotional text is cached.
func EncodeText(s string) string {
	return encoder.Replace(s)
}

// DecodeText reverses EncodeText.
func DecodeText(s string) string {
	return decoder.Replace(s)
}
