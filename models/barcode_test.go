package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestIsScaleBarcode(t *testing.T) {
	cases := []struct {
		code string
		want bool
	}{
		{"2012345036000", true},
		{"2112345012506", true},
		{"7791234567890", false}, // regular EAN-13
		{"2012345", false},       // too short
		{"", false},
	}
	for _, c := range cases {
		if got := IsScaleBarcode(c.code); got != c.want {
			t.Errorf("IsScaleBarcode(%q) = %v, want %v", c.code, got, c.want)
		}
	}
}

func TestDecodeScaleBarcode_PriceEmbedded(t *testing.T) {
	// 20 | 12345 | 03600 | 0 -> product 12345, Bs 36.00
	decoded, err := DecodeScaleBarcode("2012345036000")
	if err != nil {
		t.Fatal(err)
	}
	if decoded.ProductCode != "12345" {
		t.Errorf("product code = %q, want 12345", decoded.ProductCode)
	}
	if decoded.EncodedPrice == nil || !decoded.EncodedPrice.Equal(dec("36")) {
		t.Errorf("encoded price = %v, want 36", decoded.EncodedPrice)
	}
	if decoded.EncodedWeight != nil {
		t.Error("price-embedded label must not carry a weight")
	}
}

func TestDecodeScaleBarcode_WeightEmbedded(t *testing.T) {
	// 21 | 12345 | 01250 | 6 -> product 12345, 1.250 kg
	decoded, err := DecodeScaleBarcode("2112345012506")
	if err != nil {
		t.Fatal(err)
	}
	if decoded.ProductCode != "12345" {
		t.Errorf("product code = %q, want 12345", decoded.ProductCode)
	}
	if decoded.EncodedWeight == nil || !decoded.EncodedWeight.Equal(dec("1.25")) {
		t.Errorf("encoded weight = %v, want 1.25", decoded.EncodedWeight)
	}
	if decoded.EncodedPrice != nil {
		t.Error("weight-embedded label must not carry a price")
	}
}

func TestDecodeScaleBarcode_Errors(t *testing.T) {
	cases := []struct {
		code string
		want error
	}{
		{"2012345036001", ErrBarcodeCheckDigit},
		{"7791234567890", ErrNotScaleBarcode},
		{"20x2345036000", ErrNotScaleBarcode},
		{"2012345", ErrNotScaleBarcode},
	}
	for _, c := range cases {
		_, err := DecodeScaleBarcode(c.code)
		if !errors.Is(err, c.want) {
			t.Errorf("DecodeScaleBarcode(%q) err = %v, want %v", c.code, err, c.want)
		}
	}
}

func TestCheckDigitEAN13(t *testing.T) {
	cases := []struct {
		first12 string
		want    int
	}{
		{"201234503600", 0},
		{"211234501250", 6},
		{"400638133393", 1}, // well-known EAN-13 example
	}
	for _, c := range cases {
		if got := checkDigitEAN13(c.first12); got != c.want {
			t.Errorf("checkDigitEAN13(%q) = %d, want %d", c.first12, got, c.want)
		}
	}
}

func TestResolveAgainst_WeightEmbedded(t *testing.T) {
	decoded, err := DecodeScaleBarcode("2112345012506")
	if err != nil {
		t.Fatal(err)
	}

	qty, effective := decoded.ResolveAgainst(weightProduct("40"), "")

	if !qty.Equal(dec("1.25")) {
		t.Errorf("qty = %s, want 1.25", qty)
	}
	// weight labels charge the catalog price for the exact weight
	if !effective.Equal(dec("40")) {
		t.Errorf("effective = %s, want 40", effective)
	}
}

func TestResolveAgainst_PriceEmbeddedWithKeyedWeight(t *testing.T) {
	decoded, err := DecodeScaleBarcode("2012345036000")
	if err != nil {
		t.Fatal(err)
	}

	qty, effective := decoded.ResolveAgainst(weightProduct("40"), "1,2")

	if !qty.Equal(dec("1.2")) {
		t.Errorf("qty = %s, want 1.2", qty)
	}
	// Bs 36 over 1.2 kg -> 30/kg
	if !effective.Equal(dec("30")) {
		t.Errorf("effective = %s, want 30", effective)
	}
	if !effective.Mul(qty).Round(2).Equal(dec("36")) {
		t.Errorf("effective x qty = %s, must match the label price", effective.Mul(qty))
	}
}

func TestResolveAgainst_PriceEmbeddedReconstructsWeight(t *testing.T) {
	decoded, err := DecodeScaleBarcode("2012345036000")
	if err != nil {
		t.Fatal(err)
	}

	qty, effective := decoded.ResolveAgainst(weightProduct("40"), "")

	// no keyed weight: 36 / 40 per kg -> 0.9 kg at catalog price
	if !qty.Equal(dec("0.9")) {
		t.Errorf("qty = %s, want 0.9", qty)
	}
	if !effective.Equal(dec("40")) {
		t.Errorf("effective = %s, want 40", effective)
	}
}

func TestResolveAgainst_ZeroPricedProduct(t *testing.T) {
	decoded, err := DecodeScaleBarcode("2012345036000")
	if err != nil {
		t.Fatal(err)
	}
	product := weightProduct("0")

	qty, effective := decoded.ResolveAgainst(product, "")

	if !qty.Equal(decimal.NewFromInt(1)) {
		t.Errorf("qty = %s, want 1", qty)
	}
	if !effective.Equal(dec("36")) {
		t.Errorf("effective = %s, want 36", effective)
	}
}
