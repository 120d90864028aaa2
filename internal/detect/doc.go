// Package detect classifies storefront URLs into page types.
//
// FromURL matches URL patterns (product/category IDs, listing paths, root)
// and is the primary strategy. FromDOM fetches the page and inspects its
// markup — a fallback for URLs the patterns cannot classify. Both return
// an explicit Detection; "unknown" is a valid answer, not an error.
package detect
