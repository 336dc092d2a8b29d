package models

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale labels are EAN-13 with an in-store prefix:
//
//	2 T PPPPP VVVVV C
//
// T = 0 for price-embedded labels (VVVVV = total price in centavos) and
// T = 1 for weight-embedded labels (VVVVV = net weight in grams).
// PPPPP is the 5-digit in-store product code and C the standard mod-10
// check digit.
const (
	scaleBarcodePrefixPrice  = "20"
	scaleBarcodePrefixWeight = "21"
)

var (
	ErrNotScaleBarcode     = errors.New("not a scale barcode")
	ErrBarcodeCheckDigit   = errors.New("barcode check digit mismatch")
	decimalThousand        = decimal.NewFromInt(1000)
	decimalCentavosPerUnit = decimal.NewFromInt(100)
)

type DecodedBarcode struct {
	Raw         string
	ProductCode string
	// EncodedPrice is the label's total price in Bs (price-embedded labels).
	EncodedPrice *decimal.Decimal
	// EncodedWeight is the label's net weight in kg (weight-embedded labels).
	EncodedWeight *decimal.Decimal
}

// IsScaleBarcode reports whether code looks like an in-store scale label.
func IsScaleBarcode(code string) bool {
	return len(code) == 13 &&
		(strings.HasPrefix(code, scaleBarcodePrefixPrice) || strings.HasPrefix(code, scaleBarcodePrefixWeight))
}

// DecodeScaleBarcode parses and checksum-validates a scale label.
func DecodeScaleBarcode(code string) (*DecodedBarcode, error) {
	if !IsScaleBarcode(code) {
		return nil, ErrNotScaleBarcode
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return nil, ErrNotScaleBarcode
		}
	}
	if checkDigitEAN13(code[:12]) != int(code[12]-'0') {
		return nil, ErrBarcodeCheckDigit
	}

	value, err := strconv.ParseInt(code[7:12], 10, 64)
	if err != nil {
		return nil, ErrNotScaleBarcode
	}

	decoded := &DecodedBarcode{
		Raw:         code,
		ProductCode: code[2:7],
	}
	if strings.HasPrefix(code, scaleBarcodePrefixPrice) {
		price := decimal.NewFromInt(value).Div(decimalCentavosPerUnit)
		decoded.EncodedPrice = &price
	} else {
		weight := decimal.NewFromInt(value).DivRound(decimalThousand, 3)
		decoded.EncodedWeight = &weight
	}
	return decoded, nil
}

// ResolveAgainst derives the line quantity and effective unit price for a
// scanned label sold against the given catalog product.
//
// Weight-embedded labels charge the catalog price for the exact weight.
// Price-embedded labels charge exactly the encoded price: the weight comes
// from the label's human-readable part when the cashier keyed it in, or is
// reconstructed from the catalog price otherwise, and the effective unit
// price is whatever makes weight x price match the label.
func (d *DecodedBarcode) ResolveAgainst(product *Product, rawQty string) (decimal.Decimal, decimal.Decimal) {
	if d.EncodedWeight != nil {
		qty := d.EncodedWeight.Round(2)
		if qty.LessThan(minWeightQty) {
			qty = minWeightQty
		}
		return qty, product.UnitPrice
	}

	price := *d.EncodedPrice
	var qty decimal.Decimal
	if strings.TrimSpace(rawQty) != "" {
		qty = NormalizeQuantity(rawQty, product.SaleType)
	} else if product.UnitPrice.GreaterThan(decimal.Zero) {
		qty = price.DivRound(product.UnitPrice, 2)
		if qty.LessThan(minWeightQty) {
			qty = minWeightQty
		}
	} else {
		qty = decimalOne
	}

	effective := price.DivRound(qty, 4)
	return qty, effective
}

func checkDigitEAN13(first12 string) int {
	sum := 0
	for i, r := range first12 {
		digit := int(r - '0')
		if i%2 == 1 {
			digit *= 3
		}
		sum += digit
	}
	return (10 - sum%10) % 10
}
