package mangawatch

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// TrackedItem represents a manga whose chapter list is watched for updates.
// Title and CoverURL always reflect the latest scrape of the source site.
type TrackedItem struct {
	ID            string     `json:"id"`
	URL           string     `json:"url"`
	Title         string     `json:"title"`
	CoverURL      string     `json:"coverUrl"`
	Domain        string     `json:"domain"`
	LastCheckedAt *time.Time `json:"lastCheckedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Validate returns an error if the item contains invalid fields.
func (i *TrackedItem) Validate() error {
	if i.URL == "" {
		return Errorf(EINVALID, "tracked item URL required")
	}
	if i.Domain == "" {
		return Errorf(EINVALID, "tracked item domain required")
	}
	return nil
}

// TrackedItemService represents a service for managing tracked items.
type TrackedItemService interface {
	// UpsertTrackedItem creates the item or, when an item with the same URL
	// exists, overwrites its title, cover and domain. The item's ID and
	// CreatedAt are populated from the stored row.
	UpsertTrackedItem(ctx context.Context, item *TrackedItem) error

	// FindTrackedItemByID retrieves an item by ID.
	// Returns ENOTFOUND if the item does not exist.
	FindTrackedItemByID(ctx context.Context, id string) (*TrackedItem, error)

	// FindTrackedItems retrieves items matching the filter.
	FindTrackedItems(ctx context.Context, filter TrackedItemFilter) ([]*TrackedItem, error)

	// UpdateTrackedItem updates an existing item.
	// Returns ENOTFOUND if the item does not exist.
	UpdateTrackedItem(ctx context.Context, id string, upd TrackedItemUpdate) (*TrackedItem, error)
}

// TrackedItemFilter represents a filter for FindTrackedItems.
type TrackedItemFilter struct {
	ID     *string `json:"id"`
	URL    *string `json:"url"`
	Domain *string `json:"domain"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// TrackedItemUpdate represents fields that can be updated on a tracked item.
type TrackedItemUpdate struct {
	Title         *string    `json:"title"`
	CoverURL      *string    `json:"coverUrl"`
	LastCheckedAt *time.Time `json:"lastCheckedAt"`
}

// DomainOf returns the lowercase hostname of rawURL.
func DomainOf(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", Errorf(EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", Errorf(EINVALID, "invalid URL %q: missing host", rawURL)
	}
	return host, nil
}
