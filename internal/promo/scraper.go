package promo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// Time given to the storefront's AJAX cart update after add-to-cart.
const cartUpdateWait = 2 * time.Second

// Crossed-out regular price.
var regularPriceSelectors = []string{
	".regular-price",
	".product-price-and-shipping .regular-price",
	"span.regular-price",
	".price-old",
	".old-price",
}

// Current (possibly discounted) price.
var currentPriceSelectors = []string{
	".current-price",
	".product-price",
	".price",
	".product-price-and-shipping .price",
}

var addToCartSelectors = []string{
	"button[data-button-action='add-to-cart']",
	".add-to-cart",
	"button.add-to-cart",
	".product-add-to-cart button",
	"button[name='add']",
}

var manualCodeSelectors = []string{
	"input[name='discount_name']",
	"input[name='voucher']",
	"input[placeholder*='promo' i]",
	"input[placeholder*='code' i]",
	"input[placeholder*='coupon' i]",
	".promo-code input",
	"#promo-code",
	".discount-code input",
}

// Scraper detects promotions by driving a headless browser.
type Scraper struct {
	headless    bool
	pageTimeout time.Duration
}

// NewScraper returns a Scraper. pageTimeout bounds each page visit.
func NewScraper(headless bool, pageTimeout time.Duration) *Scraper {
	if pageTimeout <= 0 {
		pageTimeout = 30 * time.Second
	}
	return &Scraper{headless: headless, pageTimeout: pageTimeout}
}

// Scrape visits the page and collects every promotion mechanic it can
// find. Scraping is best-effort: any failure is logged and yields
// empty Promotions, so a broken storefront page never fails a run.
// Cart-rule detection clicks add-to-cart and is only attempted on
// product pages.
func (s *Scraper) Scrape(ctx context.Context, rawURL, pageType string) Promotions {
	out := Promotions{PageType: pageType, URL: rawURL}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.headless),
		chromedp.Flag("disable-gpu", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	runCtx, cancelRun := context.WithTimeout(tabCtx, s.pageTimeout)
	defer cancelRun()

	var (
		regularText string
		currentText string
		hasManual   bool
	)
	tasks := chromedp.Tasks{
		chromedp.Navigate(rawURL),
		chromedp.Evaluate(firstTextScript(regularPriceSelectors), &regularText),
		chromedp.Evaluate(firstTextScript(currentPriceSelectors), &currentText),
		chromedp.Evaluate(existsScript(manualCodeSelectors), &hasManual),
	}
	if err := chromedp.Run(runCtx, tasks); err != nil {
		slog.Warn("promo: page scrape failed", "url", rawURL, "error", err)
		return out
	}
	out.HasManualCodeInput = hasManual
	out.StrikedPrice = strikedPriceFrom(regularText, currentText)

	if pageType == "product" {
		out.CartRules = s.scrapeCartRules(runCtx, rawURL)
	}

	if out.Any() {
		slog.Info("promo: promotions detected",
			"url", rawURL,
			"complexity", out.Complexity(),
			"cart_rules", len(out.CartRules),
			"striked_price", out.StrikedPrice != nil,
			"manual_code", out.HasManualCodeInput)
	} else {
		slog.Debug("promo: no promotions detected", "url", rawURL)
	}
	return out
}

// scrapeCartRules simulates add-to-cart in the already-loaded tab and
// reads the vouchers the storefront auto-applied.
func (s *Scraper) scrapeCartRules(ctx context.Context, rawURL string) []CartRule {
	var clicked bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(clickFirstScript(addToCartSelectors), &clicked)); err != nil {
		slog.Warn("promo: add-to-cart click failed", "url", rawURL, "error", err)
		return nil
	}
	if !clicked {
		slog.Debug("promo: no add-to-cart button found", "url", rawURL)
		return nil
	}

	var vouchersJSON string
	err := chromedp.Run(ctx,
		chromedp.Sleep(cartUpdateWait),
		chromedp.Evaluate(vouchersScript, &vouchersJSON),
	)
	if err != nil {
		slog.Warn("promo: voucher extraction failed", "url", rawURL, "error", err)
		return nil
	}
	rules, err := parseVouchers([]byte(vouchersJSON))
	if err != nil {
		slog.Warn("promo: voucher data unparseable", "url", rawURL, "error", err)
		return nil
	}
	return rules
}

// strikedPriceFrom builds a StrikedPrice from the two price texts.
// Returns nil unless both parse and the current price is lower.
func strikedPriceFrom(regularText, currentText string) *StrikedPrice {
	if strings.TrimSpace(regularText) == "" {
		return nil
	}
	if strings.TrimSpace(currentText) == "" {
		slog.Warn("promo: regular price shown without a current price", "regular", regularText)
		return nil
	}
	regular, ok := ParsePrice(regularText)
	if !ok {
		return nil
	}
	current, ok := ParsePrice(currentText)
	if !ok {
		return nil
	}
	if current >= regular {
		slog.Warn("promo: current price not below regular price", "regular", regular, "current", current)
		return nil
	}
	return &StrikedPrice{
		RegularPrice:       regular,
		CurrentPrice:       current,
		DiscountPercentage: DiscountPercentage(regular, current),
		Currency:           Currency(currentText),
	}
}

// Voucher objects as exposed by the storefront cart. Field shapes vary
// between storefront versions, hence the loose typing.
type rawVoucher struct {
	ID               any    `json:"id"`
	IDCartRule       any    `json:"id_cart_rule"`
	Code             string `json:"code"`
	Name             string `json:"name"`
	Value            any    `json:"value"`
	ReductionAmount  any    `json:"reduction_amount"`
	ReductionPercent any    `json:"reduction_percent"`
}

// parseVouchers decodes the JSON pulled out of the cart object into
// cart rules. Vouchers with no usable ID are skipped, not fatal.
func parseVouchers(data []byte) ([]CartRule, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var vouchers []rawVoucher
	if err := json.Unmarshal(data, &vouchers); err != nil {
		// Some storefront versions expose a single object.
		var one rawVoucher
		if err2 := json.Unmarshal(data, &one); err2 != nil {
			return nil, fmt.Errorf("promo: decode vouchers: %w", err)
		}
		vouchers = []rawVoucher{one}
	}

	var rules []CartRule
	for _, v := range vouchers {
		id, ok := asInt(v.IDCartRule)
		if !ok {
			id, ok = asInt(v.ID)
		}
		if !ok || id < 1 {
			slog.Warn("promo: voucher without usable rule id", "code", v.Code, "name", v.Name)
			continue
		}

		name := v.Code
		if name == "" {
			name = v.Name
		}
		if name == "" {
			name = "UNKNOWN"
		}

		amountRaw := firstNonNil(v.Value, v.ReductionAmount, v.ReductionPercent)
		amount, _ := asAmount(amountRaw)

		discountType := DiscountAmount
		if v.ReductionPercent != nil || strings.Contains(fmt.Sprint(amountRaw), "%") {
			discountType = DiscountPercent
		}

		rules = append(rules, CartRule{
			RuleID:       id,
			RuleName:     name,
			Amount:       amount,
			DiscountType: discountType,
		})
	}
	return rules, nil
}

func firstNonNil(vals ...any) any {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		return int(x), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		return n, err == nil
	default:
		return 0, false
	}
}

func asAmount(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		return ParsePrice(strings.TrimSuffix(strings.TrimSpace(x), "%"))
	default:
		return 0, false
	}
}

// firstTextScript returns JS yielding the first non-empty text among
// the selectors, or "".
func firstTextScript(selectors []string) string {
	sels, _ := json.Marshal(selectors)
	return fmt.Sprintf(`(() => {
	for (const s of %s) {
		const el = document.querySelector(s);
		if (el && el.textContent && el.textContent.trim()) {
			return el.textContent.trim();
		}
	}
	return "";
})()`, sels)
}

// existsScript returns JS yielding true when any selector matches.
func existsScript(selectors []string) string {
	sels, _ := json.Marshal(selectors)
	return fmt.Sprintf(`(() => {
	for (const s of %s) {
		if (document.querySelector(s)) return true;
	}
	return false;
})()`, sels)
}

// clickFirstScript returns JS clicking the first matching element and
// yielding whether a click happened.
func clickFirstScript(selectors []string) string {
	sels, _ := json.Marshal(selectors)
	return fmt.Sprintf(`(() => {
	for (const s of %s) {
		const el = document.querySelector(s);
		if (el) { el.click(); return true; }
	}
	return false;
})()`, sels)
}

// vouchersScript yields the auto-applied vouchers from the storefront
// cart object as a JSON string, or "null".
const vouchersScript = `(() => {
	if (window.prestashop &&
		window.prestashop.cart &&
		window.prestashop.cart.vouchers &&
		window.prestashop.cart.vouchers.added) {
		return JSON.stringify(window.prestashop.cart.vouchers.added);
	}
	return "null";
})()`
