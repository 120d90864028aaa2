// Package promo detects active promotions on storefront pages.
//
// The Scraper drives a headless browser to find striked prices, cart
// rules auto-applied on add-to-cart, and manual promo-code inputs.
// Promotions aggregates the findings and derives a complexity level
// and an estimated server impact used when interpreting test results.
// Scraping is best-effort: a page that cannot be scraped yields empty
// Promotions, never a failed run.
package promo
