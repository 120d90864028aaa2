package detect

import "testing"

func TestFromURL(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		wantType       string
		wantProductID  int
		wantCategoryID int
		wantConfidence float64
	}{
		{
			name:           "homepage",
			url:            "https://shop.example.com/",
			wantType:       PageCatalog,
			wantConfidence: 1.0,
		},
		{
			name:           "homepage without trailing slash",
			url:            "https://shop.example.com",
			wantType:       PageCatalog,
			wantConfidence: 1.0,
		},
		{
			name:           "product with html suffix",
			url:            "https://shop.example.com/123-espresso-machine.html",
			wantType:       PageProduct,
			wantProductID:  123,
			wantConfidence: 1.0,
		},
		{
			name:           "product with attribute id",
			url:            "https://shop.example.com/123-456-espresso-machine.html",
			wantType:       PageProduct,
			wantProductID:  123,
			wantConfidence: 1.0,
		},
		{
			name:           "product without html suffix",
			url:            "https://shop.example.com/9087-grinder",
			wantType:       PageProduct,
			wantProductID:  9087,
			wantConfidence: 1.0,
		},
		{
			name:           "category",
			url:            "https://shop.example.com/electronics/42",
			wantType:       PageCategory,
			wantCategoryID: 42,
			wantConfidence: 1.0,
		},
		{
			name:           "catalog promotions",
			url:            "https://shop.example.com/promotions",
			wantType:       PageCatalog,
			wantConfidence: 1.0,
		},
		{
			name:           "catalog new products",
			url:            "https://shop.example.com/nouveautes",
			wantType:       PageCatalog,
			wantConfidence: 1.0,
		},
		{
			name:           "catalog best sellers",
			url:            "https://shop.example.com/meilleures-ventes",
			wantType:       PageCatalog,
			wantConfidence: 1.0,
		},
		{
			name:           "uppercase path is normalized",
			url:            "https://shop.example.com/PROMOTIONS",
			wantType:       PageCatalog,
			wantConfidence: 1.0,
		},
		{
			name:           "unknown page",
			url:            "https://shop.example.com/contact-us",
			wantType:       PageUnknown,
			wantConfidence: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := FromURL(tt.url)
			if err != nil {
				t.Fatalf("FromURL(%q) error = %v", tt.url, err)
			}
			if d.PageType != tt.wantType {
				t.Errorf("page type: got %q, want %q", d.PageType, tt.wantType)
			}
			if d.ProductID != tt.wantProductID {
				t.Errorf("product id: got %d, want %d", d.ProductID, tt.wantProductID)
			}
			if d.CategoryID != tt.wantCategoryID {
				t.Errorf("category id: got %d, want %d", d.CategoryID, tt.wantCategoryID)
			}
			if d.Confidence != tt.wantConfidence {
				t.Errorf("confidence: got %g, want %g", d.Confidence, tt.wantConfidence)
			}
			if d.Method != MethodURL {
				t.Errorf("method: got %q, want %q", d.Method, MethodURL)
			}
		})
	}
}

func TestFromURL_Invalid(t *testing.T) {
	for _, u := range []string{"", "not-a-url", "/relative/path", "ftp//oops"} {
		if _, err := FromURL(u); err == nil {
			t.Errorf("FromURL(%q) succeeded, want error", u)
		}
	}
}

func TestProductID(t *testing.T) {
	if id, ok := ProductID("https://shop.example.com/123-product.html"); !ok || id != 123 {
		t.Errorf("ProductID: got (%d, %v), want (123, true)", id, ok)
	}
	if _, ok := ProductID("https://shop.example.com/electronics/42"); ok {
		t.Error("ProductID matched a category URL")
	}
}

func TestCategoryID(t *testing.T) {
	if id, ok := CategoryID("https://shop.example.com/electronics/42"); !ok || id != 42 {
		t.Errorf("CategoryID: got (%d, %v), want (42, true)", id, ok)
	}
	// An id followed by -digit is a product-style pair, not a category.
	if _, ok := CategoryID("https://shop.example.com/cat/123-4"); ok {
		t.Error("CategoryID matched a product-style id pair")
	}
}

func TestIsValidStoreURL(t *testing.T) {
	valid := []string{"http://a.example.com", "https://a.example.com/x"}
	invalid := []string{"", "ftp://a.example.com", "a.example.com", "/path"}

	for _, u := range valid {
		if !IsValidStoreURL(u) {
			t.Errorf("IsValidStoreURL(%q) = false, want true", u)
		}
	}
	for _, u := range invalid {
		if IsValidStoreURL(u) {
			t.Errorf("IsValidStoreURL(%q) = true, want false", u)
		}
	}
}
