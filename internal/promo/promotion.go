package promo

import "fmt"

// Complexity levels for the promotion mechanics on a page.
const (
	ComplexityLow    = "LOW"
	ComplexityMedium = "MEDIUM"
	ComplexityHigh   = "HIGH"
)

// Discount types carried by cart rules.
const (
	DiscountPercent      = "percentage"
	DiscountAmount       = "amount"
	DiscountFreeShipping = "free_shipping"
)

// Per-mechanic server impact weights. Cart rules are evaluated on
// every cart mutation, manual codes add a validation round-trip.
const (
	impactStrikedPrice = 0.05
	impactCartRule     = 0.15
	impactManualInput  = 0.25
)

// StrikedPrice is a plain price discount shown with a crossed-out
// regular price.
type StrikedPrice struct {
	RegularPrice       float64 `json:"regular_price"`
	CurrentPrice       float64 `json:"current_price"`
	DiscountPercentage float64 `json:"discount_percentage"`
	Currency           string  `json:"currency"`
}

// Validate checks the price pair is a real discount.
func (p *StrikedPrice) Validate() error {
	if p.RegularPrice <= 0 {
		return fmt.Errorf("promo: regular price must be positive, got %g", p.RegularPrice)
	}
	if p.CurrentPrice <= 0 {
		return fmt.Errorf("promo: current price must be positive, got %g", p.CurrentPrice)
	}
	if p.CurrentPrice >= p.RegularPrice {
		return fmt.Errorf("promo: current price %g is not below regular price %g", p.CurrentPrice, p.RegularPrice)
	}
	if p.DiscountPercentage < 0 || p.DiscountPercentage > 100 {
		return fmt.Errorf("promo: discount percentage %g out of range", p.DiscountPercentage)
	}
	return nil
}

// CartRule is a promotional rule auto-applied when a product enters
// the cart.
type CartRule struct {
	RuleID       int     `json:"rule_id"`
	RuleName     string  `json:"rule_name"`
	Amount       float64 `json:"amount"`
	DiscountType string  `json:"discount_type"`
}

// Validate checks the rule fields.
func (r *CartRule) Validate() error {
	if r.RuleID < 1 {
		return fmt.Errorf("promo: cart rule id must be >= 1, got %d", r.RuleID)
	}
	if r.RuleName == "" {
		return fmt.Errorf("promo: cart rule %d has no name", r.RuleID)
	}
	if r.Amount < 0 {
		return fmt.Errorf("promo: cart rule %q has negative amount %g", r.RuleName, r.Amount)
	}
	switch r.DiscountType {
	case DiscountPercent, DiscountAmount, DiscountFreeShipping:
		return nil
	default:
		return fmt.Errorf("promo: cart rule %q has unknown discount type %q", r.RuleName, r.DiscountType)
	}
}

// Promotions aggregates everything detected on one page.
type Promotions struct {
	PageType           string        `json:"page_type"`
	URL                string        `json:"url"`
	StrikedPrice       *StrikedPrice `json:"striked_price,omitempty"`
	CartRules          []CartRule    `json:"auto_cart_rules,omitempty"`
	HasManualCodeInput bool          `json:"has_manual_code_input"`
}

// Any reports whether at least one promotion mechanic was detected.
func (p *Promotions) Any() bool {
	return p.StrikedPrice != nil || len(p.CartRules) > 0 || p.HasManualCodeInput
}

// Complexity grades the promotion mechanics on the page.
//
// HIGH means two or more cart rules, or a manual code on top of an
// auto-applied rule. MEDIUM means a single cart rule or a manual code.
// Everything else, including a lone striked price, is LOW.
func (p *Promotions) Complexity() string {
	n := len(p.CartRules)
	switch {
	case n >= 2 || (p.HasManualCodeInput && n >= 1):
		return ComplexityHigh
	case n == 1 || p.HasManualCodeInput:
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}

// ServerImpact estimates the extra load the promotion mechanics put on
// the server, as a 0–1 score. Striked prices add 0.05, each cart rule
// 0.15 and a manual code input 0.25, capped at 1.0.
func (p *Promotions) ServerImpact() float64 {
	impact := 0.0
	if p.StrikedPrice != nil {
		impact += impactStrikedPrice
	}
	impact += float64(len(p.CartRules)) * impactCartRule
	if p.HasManualCodeInput {
		impact += impactManualInput
	}
	if impact > 1.0 {
		return 1.0
	}
	return impact
}
