package models

import (
	"strings"

	"bitbucket.org/andeansoft/carniceria_backend/utils"
	"github.com/shopspring/decimal"
)

var (
	decimalOne     = decimal.NewFromInt(1)
	minWeightQty   = decimal.NewFromFloat(0.01)
	decimalHundred = decimal.NewFromInt(100)
)

// NormalizeQuantity turns free-text quantity entry into a valid quantity for
// the product's sale type. Commas are accepted as decimal separators.
// UNIT products get an integer clamped to a minimum of 1; WEIGHT products get
// a 2-decimal kilogram value clamped to a minimum of 0.01. Garbage input is
// coerced to the nearest valid boundary, never rejected.
func NormalizeQuantity(raw string, saleType SaleType) decimal.Decimal {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))

	parsed, err := decimal.NewFromString(cleaned)
	if saleType == SaleTypeUnit {
		if err != nil {
			return decimalOne
		}
		qty := parsed.Truncate(0)
		if qty.LessThan(decimalOne) {
			return decimalOne
		}
		return qty
	}

	if err != nil || parsed.LessThan(minWeightQty) {
		return minWeightQty
	}
	return parsed.Round(2)
}

// CartLine is the sealed union of the two kinds of checkout lines.
// StandardLine quantities come from cashier entry or a scale scan;
// BatchLine quantities are always one pre-weighed package and cannot be
// edited, which the type enforces by carrying no quantity at all.
type CartLine interface {
	LineProductId() int
	Quantity() decimal.Decimal
	ChargedUnitPrice() decimal.Decimal
	Subtotal() decimal.Decimal
	DiscountAmount() decimal.Decimal
	Total() decimal.Decimal
	Scenario() PricingScenario

	isCartLine()
}

type StandardLine struct {
	ProductId            int
	Qty                  decimal.Decimal
	UnitPrice            decimal.Decimal
	EffectiveUnitPrice   *decimal.Decimal
	Discount             decimal.Decimal
	DiscountAutoDetected bool
	ScannedBarcode       string
	Notes                string
}

func (l StandardLine) isCartLine() {}

func (l StandardLine) LineProductId() int { return l.ProductId }

func (l StandardLine) Quantity() decimal.Decimal { return l.Qty }

// ChargedUnitPrice is the per-unit price the charge is based on. A scanned
// effective price above the catalog price silently wins (label printers
// encode the exact weight/price pair); an effective price below the catalog
// price is already materialized as a line discount, so the catalog price
// stays the base.
func (l StandardLine) ChargedUnitPrice() decimal.Decimal {
	if l.EffectiveUnitPrice != nil && l.EffectiveUnitPrice.GreaterThan(l.UnitPrice) {
		return *l.EffectiveUnitPrice
	}
	return l.UnitPrice
}

func (l StandardLine) Subtotal() decimal.Decimal {
	return utils.Round2(l.Qty.Mul(l.ChargedUnitPrice()))
}

func (l StandardLine) DiscountAmount() decimal.Decimal { return l.Discount }

// Total is subtotal minus discount, clamped at zero.
func (l StandardLine) Total() decimal.Decimal {
	total := utils.Round2(l.Subtotal().Sub(l.Discount))
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

func (l StandardLine) Scenario() PricingScenario {
	if l.EffectiveUnitPrice == nil {
		if l.Discount.GreaterThan(decimal.Zero) {
			return PricingScenarioDiscount
		}
		return PricingScenarioNormal
	}
	if l.EffectiveUnitPrice.LessThan(l.UnitPrice) {
		return PricingScenarioDiscount
	}
	return PricingScenarioOverride
}

// BatchLine locks a cart line to one vacuum-packed lot: its exact weight and
// package price. Quantity is always "1 package".
type BatchLine struct {
	ProductId   int
	BatchId     int
	BatchNumber string
	FixedWeight decimal.Decimal
	FixedPrice  decimal.Decimal
	Notes       string
}

func (l BatchLine) isCartLine() {}

func (l BatchLine) LineProductId() int { return l.ProductId }

func (l BatchLine) Quantity() decimal.Decimal { return decimalOne }

func (l BatchLine) ChargedUnitPrice() decimal.Decimal { return l.FixedPrice }

func (l BatchLine) Subtotal() decimal.Decimal { return utils.Round2(l.FixedPrice) }

func (l BatchLine) DiscountAmount() decimal.Decimal { return decimal.Zero }

func (l BatchLine) Total() decimal.Decimal { return l.Subtotal() }

func (l BatchLine) Scenario() PricingScenario { return PricingScenarioNormal }

// CartTotals aggregates a priced cart.
// GrandTotal is rounded to the integer boliviano; receipts show no cents.
type CartTotals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

func TotalCart(lines []CartLine) CartTotals {
	var subtotal, discountTotal decimal.Decimal
	for _, line := range lines {
		subtotal = subtotal.Add(line.Subtotal())
		discountTotal = discountTotal.Add(line.DiscountAmount())
	}
	return CartTotals{
		Subtotal:      subtotal,
		DiscountTotal: discountTotal,
		GrandTotal:    utils.RoundBs(subtotal.Sub(discountTotal)),
	}
}

// BuildStandardLine resolves a cashier-entered (or scanned) line against the
// catalog product. Quantity text is normalized per sale type. A scanned label
// price below the catalog price is converted into an auto-detected discount so
// the receipt can show the catalog price struck through; an active catalog
// discount is applied the same way when the cashier entered none.
func BuildStandardLine(product *Product, rawQty string, discount decimal.Decimal, scanned *DecodedBarcode, notes string) StandardLine {
	line := StandardLine{
		ProductId: product.ID,
		UnitPrice: product.UnitPrice,
		Discount:  discount,
		Notes:     notes,
	}

	if scanned != nil {
		line.ScannedBarcode = scanned.Raw
		qty, effective := scanned.ResolveAgainst(product, rawQty)
		line.Qty = qty
		line.EffectiveUnitPrice = &effective
	} else {
		line.Qty = NormalizeQuantity(rawQty, product.SaleType)
	}

	if line.EffectiveUnitPrice != nil && line.EffectiveUnitPrice.LessThan(line.UnitPrice) && discount.IsZero() {
		line.Discount = utils.Round2(line.UnitPrice.Sub(*line.EffectiveUnitPrice).Mul(line.Qty))
		line.DiscountAutoDetected = true
	} else if scanned == nil && discount.IsZero() && product.HasActiveDiscount() {
		line.Discount = utils.Round2(product.DiscountAmount.Mul(line.Qty))
		line.DiscountAutoDetected = true
	}

	return line
}

// BuildBatchLine locks a line to the lot's fixed weight and package price.
func BuildBatchLine(batch *ProductBatch, notes string) BatchLine {
	return BatchLine{
		ProductId:   batch.ProductId,
		BatchId:     batch.ID,
		BatchNumber: batch.BatchNumber,
		FixedWeight: batch.ActualWeight,
		FixedPrice:  batch.UnitPrice,
		Notes:       notes,
	}
}
