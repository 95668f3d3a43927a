// Package productinfo guesses which retailer a product link points at. It
// never fetches the page.
package productinfo

import "strings"

const (
	StoreAmazon  = "amazon"
	StoreTarget  = "target"
	StoreWalmart = "walmart"
	StoreOther   = "other"
)

// Info is the product summary returned to clients. Title, price and image are
// not scraped and are always null.
type Info struct {
	Store string  `json:"store"`
	Title *string `json:"title"`
	Price *string `json:"price"`
	Image *string `json:"image"`
}

var retailers = []struct {
	domain string
	store  string
}{
	{"amazon.com", StoreAmazon},
	{"target.com", StoreTarget},
	{"walmart.com", StoreWalmart},
}

// Classify maps url onto a retailer by case-sensitive substring, checking
// retailers in a fixed priority order.
func Classify(url string) Info {
	for _, r := range retailers {
		if strings.Contains(url, r.domain) {
			return Info{Store: r.store}
		}
	}
	return Info{Store: StoreOther}
}
