package detect

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const defaultFetchTimeout = 10 * time.Second

// Strong indicators of a product page.
var addToCartSelectors = []string{
	".add-to-cart",
	"button[data-button-action='add-to-cart']",
	"#add-to-cart-or-refresh",
}

// Promo-code entry fields.
var promoInputSelectors = []string{
	"input[name='discount_name']",
	"#discount_name",
	".promo-code",
}

// Product-listing containers indicating a category page.
var categorySelectors = []string{
	".products",
	".product-miniature",
	"#products",
	".category-products",
}

// FromDOM detects the page type by fetching the page and inspecting its
// DOM structure. Used as a fallback when URL patterns are ambiguous.
// A nil client gets a default one with a 10s timeout.
func FromDOM(ctx context.Context, client *http.Client, rawURL string) (Detection, error) {
	if !IsValidStoreURL(rawURL) {
		return Detection{}, fmt.Errorf("detect: invalid url %q", rawURL)
	}
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Detection{}, fmt.Errorf("detect: build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Detection{}, fmt.Errorf("detect: fetch %q: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Detection{}, fmt.Errorf("detect: fetch %q: unexpected status %d", rawURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Detection{}, fmt.Errorf("detect: parse html: %w", err)
	}

	out := Detection{
		PageType:   PageUnknown,
		Method:     MethodDOM,
		URL:        rawURL,
		Confidence: 0.5,
	}

	for _, sel := range addToCartSelectors {
		if doc.Find(sel).Length() > 0 {
			out.HasAddToCart = true
			out.PageType = PageProduct
			out.Confidence = 0.9
			slog.Debug("detect: product page via add-to-cart button", "url", rawURL, "selector", sel)
			break
		}
	}

	for _, sel := range promoInputSelectors {
		if doc.Find(sel).Length() > 0 {
			out.HasPromoCodeInput = true
			break
		}
	}

	if !out.HasAddToCart {
		for _, sel := range categorySelectors {
			if doc.Find(sel).Length() > 0 {
				out.PageType = PageCategory
				out.Confidence = 0.8
				slog.Debug("detect: category page via product list", "url", rawURL, "selector", sel)
				break
			}
		}
	}

	return out, nil
}
