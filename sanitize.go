package mangawatch

import "regexp"

var (
	blankLinesRE   = regexp.MustCompile(`\n{3,}`)
	inlineImageRE  = regexp.MustCompile(`!\[.*?\]\(data:image/.*?\)`)
	imageClusterRE = regexp.MustCompile(`(!\[.*?\]\(.*?\)\s*){3,}`)
)

// Sanitize shrinks markdown before it is sent to the extraction model.
// Runs of three or more newlines collapse to one blank line, inline
// data-URI images become [IMAGE_REMOVED] and runs of three or more
// consecutive images become a single [MULTIPLE_IMAGES_REMOVED] marker.
// Text content, including link targets, is never altered.
func Sanitize(markdown string) string {
	s := blankLinesRE.ReplaceAllString(markdown, "\n\n")
	s = inlineImageRE.ReplaceAllString(s, "[IMAGE_REMOVED]")
	s = imageClusterRE.ReplaceAllString(s, "\n[MULTIPLE_IMAGES_REMOVED]\n")
	return s
}
