package promo

import (
	"strings"
	"testing"
)

func TestParseVouchers(t *testing.T) {
	data := `[
		{"id_cart_rule": 42, "code": "BLACK_FRIDAY_2025", "reduction_percent": "15%"},
		{"id": 7, "name": "WELCOME", "value": "5,00 €"},
		{"code": "NO_ID", "value": "1.00"}
	]`

	rules, err := parseVouchers([]byte(data))
	if err != nil {
		t.Fatalf("parseVouchers() error = %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("parseVouchers() returned %d rules, want 2 (voucher without id skipped)", len(rules))
	}

	if rules[0].RuleID != 42 || rules[0].RuleName != "BLACK_FRIDAY_2025" {
		t.Errorf("rule 0: got %+v", rules[0])
	}
	if rules[0].DiscountType != DiscountPercent {
		t.Errorf("rule 0 discount type: got %q, want percentage", rules[0].DiscountType)
	}
	if !almostEqual(rules[0].Amount, 15) {
		t.Errorf("rule 0 amount: got %g, want 15", rules[0].Amount)
	}

	if rules[1].RuleID != 7 || rules[1].RuleName != "WELCOME" {
		t.Errorf("rule 1: got %+v", rules[1])
	}
	if rules[1].DiscountType != DiscountAmount {
		t.Errorf("rule 1 discount type: got %q, want amount", rules[1].DiscountType)
	}
	if !almostEqual(rules[1].Amount, 5) {
		t.Errorf("rule 1 amount: got %g, want 5", rules[1].Amount)
	}
}

func TestParseVouchers_SingleObject(t *testing.T) {
	rules, err := parseVouchers([]byte(`{"id_cart_rule": "3", "code": "SOLO", "reduction_amount": 2.5}`))
	if err != nil {
		t.Fatalf("parseVouchers() error = %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("parseVouchers() returned %d rules, want 1", len(rules))
	}
	if rules[0].RuleID != 3 || !almostEqual(rules[0].Amount, 2.5) || rules[0].DiscountType != DiscountAmount {
		t.Errorf("rule: got %+v", rules[0])
	}
}

func TestParseVouchers_Empty(t *testing.T) {
	for _, in := range []string{"", "null", "  null "} {
		rules, err := parseVouchers([]byte(in))
		if err != nil {
			t.Errorf("parseVouchers(%q) error = %v", in, err)
		}
		if len(rules) != 0 {
			t.Errorf("parseVouchers(%q) returned %d rules, want 0", in, len(rules))
		}
	}

	if _, err := parseVouchers([]byte("not json")); err == nil {
		t.Error("parseVouchers accepted malformed input")
	}
}

func TestStrikedPriceFrom(t *testing.T) {
	tests := []struct {
		name             string
		regular, current string
		want             *StrikedPrice
	}{
		{
			name:    "valid discount",
			regular: "100,00 €",
			current: "85,00 €",
			want:    &StrikedPrice{RegularPrice: 100, CurrentPrice: 85, DiscountPercentage: 15, Currency: "EUR"},
		},
		{"no regular price", "", "85,00 €", nil},
		{"no current price", "100,00 €", "", nil},
		{"current above regular", "85,00 €", "100,00 €", nil},
		{"equal prices", "85,00 €", "85,00 €", nil},
		{"unparseable regular", "gratuit", "85,00 €", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strikedPriceFrom(tt.regular, tt.current)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("strikedPriceFrom(%q, %q) = %+v, want %+v", tt.regular, tt.current, got, tt.want)
			}
			if got == nil {
				return
			}
			if !almostEqual(got.RegularPrice, tt.want.RegularPrice) ||
				!almostEqual(got.CurrentPrice, tt.want.CurrentPrice) ||
				!almostEqual(got.DiscountPercentage, tt.want.DiscountPercentage) ||
				got.Currency != tt.want.Currency {
				t.Errorf("strikedPriceFrom(%q, %q) = %+v, want %+v", tt.regular, tt.current, got, tt.want)
			}
		})
	}
}

func TestScriptBuilders(t *testing.T) {
	js := firstTextScript([]string{".a", "#b"})
	for _, want := range []string{`".a"`, `"#b"`, "querySelector", "textContent"} {
		if !strings.Contains(js, want) {
			t.Errorf("firstTextScript missing %q:\n%s", want, js)
		}
	}

	if js := existsScript([]string{".x"}); !strings.Contains(js, `".x"`) || !strings.Contains(js, "return true") {
		t.Errorf("existsScript malformed:\n%s", js)
	}

	if js := clickFirstScript([]string{".btn"}); !strings.Contains(js, "el.click()") {
		t.Errorf("clickFirstScript malformed:\n%s", js)
	}
}
