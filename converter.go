package mangawatch

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML into Markdown, resolving relative links and
	// image sources against baseURL.
	Convert(html, baseURL string) (string, error)
}
