package detect

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Page types recognized by the detector.
const (
	PageProduct  = "product"
	PageCategory = "category"
	PageCatalog  = "catalog"
	PageUnknown  = "unknown"
)

// Detection methods.
const (
	MethodURL = "url"
	MethodDOM = "dom"
)

var (
	// Root URL only.
	reHomepage = regexp.MustCompile(`^https?://[^/]+/?$`)

	// Product ID with optional attribute ID, with or without .html:
	// /123-slug or /123-456-slug.
	reProduct = regexp.MustCompile(`/(\d+)(?:-\d+)?-[\w-]+`)

	// Category ID: /slug/456. The trailing group stands in for a negative
	// lookahead (unsupported by RE2): a captured "-digit" suffix means the
	// ID is really the head of a product-style id pair, not a category.
	reCategory = regexp.MustCompile(`/[\w-]+/(\d+)(-\d)?`)

	// Storefront listing pages.
	reCatalog = regexp.MustCompile(`/(nouveautes|promotions|meilleures-ventes)`)
)

// Detection is the result of page-type detection from a URL or the DOM.
type Detection struct {
	PageType   string
	Method     string
	URL        string
	ProductID  int
	CategoryID int

	// Confidence is 0–1; regex matches are certain, DOM heuristics and the
	// unknown fallback are not.
	Confidence float64

	// DOM-analysis flags; always false for URL detection.
	HasAddToCart      bool
	HasPromoCodeInput bool
}

// FromURL detects the page type from URL patterns alone.
//
// Strategy, first match wins: root URL → catalog (homepage), product ID
// pattern → product, category ID pattern → category, storefront listing
// paths → catalog. Anything else is unknown with reduced confidence —
// a valid result, not an error.
func FromURL(rawURL string) (Detection, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return Detection{}, fmt.Errorf("detect: invalid url %q: %w", rawURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return Detection{}, fmt.Errorf("detect: invalid url %q: missing scheme or host", rawURL)
	}

	lower := strings.ToLower(rawURL)
	path := strings.ToLower(parsed.Path)

	if reHomepage.MatchString(lower) {
		slog.Debug("detect: homepage", "url", rawURL)
		return Detection{PageType: PageCatalog, Method: MethodURL, URL: rawURL, Confidence: 1.0}, nil
	}

	if m := reProduct.FindStringSubmatch(path); m != nil {
		id, _ := strconv.Atoi(m[1])
		slog.Debug("detect: product page", "url", rawURL, "product_id", id)
		return Detection{PageType: PageProduct, Method: MethodURL, URL: rawURL, ProductID: id, Confidence: 1.0}, nil
	}

	if m := reCategory.FindStringSubmatch(path); m != nil && m[2] == "" {
		id, _ := strconv.Atoi(m[1])
		slog.Debug("detect: category page", "url", rawURL, "category_id", id)
		return Detection{PageType: PageCategory, Method: MethodURL, URL: rawURL, CategoryID: id, Confidence: 1.0}, nil
	}

	if reCatalog.MatchString(path) {
		slog.Debug("detect: catalog page", "url", rawURL)
		return Detection{PageType: PageCatalog, Method: MethodURL, URL: rawURL, Confidence: 1.0}, nil
	}

	slog.Warn("detect: could not detect page type", "url", rawURL)
	return Detection{PageType: PageUnknown, Method: MethodURL, URL: rawURL, Confidence: 0.5}, nil
}

// ProductID extracts the product ID from a product URL.
// The second return is false when the URL has no product pattern.
func ProductID(rawURL string) (int, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return 0, false
	}
	m := reProduct.FindStringSubmatch(strings.ToLower(parsed.Path))
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	return id, err == nil
}

// CategoryID extracts the category ID from a category URL.
func CategoryID(rawURL string) (int, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return 0, false
	}
	m := reCategory.FindStringSubmatch(strings.ToLower(parsed.Path))
	if m == nil || m[2] != "" {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	return id, err == nil
}

// IsValidStoreURL reports whether the URL is an absolute http(s) URL.
func IsValidStoreURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
