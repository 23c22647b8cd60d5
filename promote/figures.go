package promote

import "strings"

// maxCaptionLength bounds how long a figure/table caption can be before
// it's treated as misattributed body text rather than a real caption: a
// caption over this length that doesn't start with "Figure"/"Table" is
// dropped rather than emitted as a <title>, per §4.12's caption-sanity
// rule.
const maxCaptionLength = 200

// sanitizeCaption returns the caption to emit for a figure or table,
// suppressing captions that look like a runaway paragraph rather than a
// genuine caption.
func sanitizeCaption(caption string) string {
	if len(caption) <= maxCaptionLength {
		return caption
	}
	if strings.HasPrefix(caption, "Figure") || strings.HasPrefix(caption, "Table") {
		return caption
	}
	return ""
}
