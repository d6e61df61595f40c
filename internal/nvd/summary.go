package nvd

import "regexp"

// a period that does not follow a digit, so "CVSS 3.1" or "1.4.61" do not end a sentence
var sentenceEnd = regexp.MustCompile(`(?:^|[^0-9])\.`)

// Summarize returns text up to and including its first sentence-ending period.
// Text without one is returned unchanged.
func Summarize(text string) string {
	loc := sentenceEnd.FindStringIndex(text)
	if loc == nil {
		return text
	}
	return text[:loc[1]]
}

// englishDescription returns the first description tagged "en"
func englishDescription(descs []Description) (string, bool) {
	for _, d := range descs {
		if d.Lang == "en" {
			return d.Value, true
		}
	}
	return "", false
}
