package mangawatch

import "context"

// Scraper produces the title, cover and chapter list of an item page.
type Scraper interface {
	// Scrape returns ESCRAPE when every fetch strategy failed.
	Scrape(ctx context.Context, url string) (*ScrapedItem, error)
}
