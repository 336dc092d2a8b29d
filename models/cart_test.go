package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNormalizeQuantity_Unit(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"3", "3"},
		{"  3 ", "3"},
		{"3.7", "3"},
		{"3,7", "3"},
		{"0", "1"},
		{"-2", "1"},
		{"", "1"},
		{"abc", "1"},
		{"2.", "2"},
		{"12", "12"},
	}
	for _, c := range cases {
		got := NormalizeQuantity(c.raw, SaleTypeUnit)
		if !got.Equal(dec(c.want)) {
			t.Errorf("NormalizeQuantity(%q, UNIT) = %s, want %s", c.raw, got, c.want)
		}
		if !got.Equal(got.Truncate(0)) {
			t.Errorf("NormalizeQuantity(%q, UNIT) = %s is not an integer", c.raw, got)
		}
		if got.LessThan(decimal.NewFromInt(1)) {
			t.Errorf("NormalizeQuantity(%q, UNIT) = %s is below 1", c.raw, got)
		}
	}
}

func TestNormalizeQuantity_Weight(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"1.25", "1.25"},
		{"1,25", "1.25"},
		{"1,250", "1.25"},
		{"0.005", "0.01"},
		{"0", "0.01"},
		{"-1", "0.01"},
		{"", "0.01"},
		{"x", "0.01"},
		{"2.", "2"},
		{"0,", "0.01"},
		{"1.999", "2"},
		{"0.954", "0.95"},
	}
	for _, c := range cases {
		got := NormalizeQuantity(c.raw, SaleTypeWeight)
		if !got.Equal(dec(c.want)) {
			t.Errorf("NormalizeQuantity(%q, WEIGHT) = %s, want %s", c.raw, got, c.want)
		}
		if got.LessThan(dec("0.01")) {
			t.Errorf("NormalizeQuantity(%q, WEIGHT) = %s is below 0.01", c.raw, got)
		}
		if got.Exponent() < -2 {
			t.Errorf("NormalizeQuantity(%q, WEIGHT) = %s has more than 2 decimals", c.raw, got)
		}
	}
}

func unitProduct(price string) *Product {
	active := false
	return &Product{
		ID:             1,
		Name:           "Chorizo",
		SaleType:       SaleTypeUnit,
		UnitPrice:      dec(price),
		DiscountActive: &active,
	}
}

func weightProduct(price string) *Product {
	active := false
	return &Product{
		ID:             2,
		Name:           "Lomo",
		SaleType:       SaleTypeWeight,
		UnitPrice:      dec(price),
		DiscountActive: &active,
	}
}

func TestStandardLine_UnitExample(t *testing.T) {
	// UNIT product priced Bs 25, quantity text "3"
	line := BuildStandardLine(unitProduct("25"), "3", decimal.Zero, nil, "")

	if !line.Qty.Equal(dec("3")) {
		t.Fatalf("qty = %s, want 3", line.Qty)
	}
	if !line.Subtotal().Equal(dec("75")) {
		t.Errorf("subtotal = %s, want 75", line.Subtotal())
	}
	if !line.Total().Equal(dec("75")) {
		t.Errorf("total = %s, want 75", line.Total())
	}
	if line.Scenario() != PricingScenarioNormal {
		t.Errorf("scenario = %s, want Normal", line.Scenario())
	}
}

func TestStandardLine_WeightExample(t *testing.T) {
	// WEIGHT product priced Bs 40/kg, quantity text "1,250"
	line := BuildStandardLine(weightProduct("40"), "1,250", decimal.Zero, nil, "")

	if !line.Qty.Equal(dec("1.25")) {
		t.Fatalf("qty = %s, want 1.25", line.Qty)
	}
	if !line.Subtotal().Equal(dec("50")) {
		t.Errorf("subtotal = %s, want 50", line.Subtotal())
	}
}

func TestStandardLine_SubtotalRoundedToCents(t *testing.T) {
	// 0.33 kg at Bs 9.99/kg = 3.2967, charged as Bs 3.30
	line := BuildStandardLine(weightProduct("9.99"), "0,33", decimal.Zero, nil, "")

	if !line.Subtotal().Equal(dec("3.30")) {
		t.Errorf("subtotal = %s, want 3.30", line.Subtotal())
	}
}

func TestStandardLine_DiscountExample(t *testing.T) {
	// item with unitPrice=50, discount=10 -> total=40
	line := BuildStandardLine(unitProduct("50"), "1", dec("10"), nil, "")

	if !line.Total().Equal(dec("40")) {
		t.Errorf("total = %s, want 40", line.Total())
	}
	if line.DiscountAutoDetected {
		t.Error("manual discount must not be flagged auto-detected")
	}
	if line.Scenario() != PricingScenarioDiscount {
		t.Errorf("scenario = %s, want Discount", line.Scenario())
	}
}

func TestStandardLine_TotalClampedNonNegative(t *testing.T) {
	line := BuildStandardLine(unitProduct("10"), "1", dec("999"), nil, "")

	if line.Total().IsNegative() {
		t.Fatalf("total = %s, must never be negative", line.Total())
	}
	if !line.Total().Equal(decimal.Zero) {
		t.Errorf("total = %s, want 0", line.Total())
	}
}

func TestStandardLine_AutoDetectedCatalogDiscount(t *testing.T) {
	active := true
	product := unitProduct("30")
	product.DiscountAmount = dec("5")
	product.DiscountActive = &active

	line := BuildStandardLine(product, "2", decimal.Zero, nil, "")

	if !line.Discount.Equal(dec("10")) {
		t.Errorf("discount = %s, want 10 (5 per unit x 2)", line.Discount)
	}
	if !line.DiscountAutoDetected {
		t.Error("catalog discount must be flagged auto-detected")
	}
	if !line.Total().Equal(dec("50")) {
		t.Errorf("total = %s, want 50", line.Total())
	}
}

func TestStandardLine_ScannedBelowCatalogIsDiscount(t *testing.T) {
	// label encodes Bs 36 for 1.2kg of a Bs 40/kg product: effective 30/kg
	product := weightProduct("40")
	scanned := &DecodedBarcode{Raw: "2012345036005", EncodedPrice: decPtr("36")}

	line := BuildStandardLine(product, "1.2", decimal.Zero, scanned, "")

	if line.Scenario() != PricingScenarioDiscount {
		t.Fatalf("scenario = %s, want Discount", line.Scenario())
	}
	if !line.DiscountAutoDetected {
		t.Error("scanned price below catalog must auto-detect a discount")
	}
	// total must equal the encoded price
	if !line.Total().Equal(dec("36")) {
		t.Errorf("total = %s, want 36", line.Total())
	}
}

func TestStandardLine_ScannedAboveCatalogIsOverride(t *testing.T) {
	// label encodes Bs 54 for 1.2kg of a Bs 40/kg product: effective 45/kg
	product := weightProduct("40")
	scanned := &DecodedBarcode{Raw: "2012345054005", EncodedPrice: decPtr("54")}

	line := BuildStandardLine(product, "1.2", decimal.Zero, scanned, "")

	if line.Scenario() != PricingScenarioOverride {
		t.Fatalf("scenario = %s, want Override", line.Scenario())
	}
	// effective price silently governs the charge
	if !line.Total().Equal(dec("54")) {
		t.Errorf("total = %s, want 54", line.Total())
	}
	if line.Discount.GreaterThan(decimal.Zero) {
		t.Errorf("override must not create a discount, got %s", line.Discount)
	}
}

func TestBatchLine_FixedPriceExample(t *testing.T) {
	// batch with actualWeight=0.950, unitPrice=45 -> line total=45
	batch := &ProductBatch{
		ID:           7,
		ProductId:    3,
		BatchNumber:  "L-2026-014",
		ActualWeight: dec("0.950"),
		UnitPrice:    dec("45"),
	}

	line := BuildBatchLine(batch, "")

	if !line.Quantity().Equal(dec("1")) {
		t.Errorf("quantity = %s, want 1 package", line.Quantity())
	}
	if !line.Total().Equal(dec("45")) {
		t.Errorf("total = %s, want 45", line.Total())
	}
	if !line.Subtotal().Equal(dec("45")) {
		t.Errorf("subtotal = %s, want 45", line.Subtotal())
	}
	if !line.DiscountAmount().Equal(decimal.Zero) {
		t.Errorf("batch lines carry no discount, got %s", line.DiscountAmount())
	}
}

func TestTotalCart_Additivity(t *testing.T) {
	// 75 + (50 - 5) + 45
	lines := []CartLine{
		BuildStandardLine(unitProduct("25"), "3", decimal.Zero, nil, ""),
		BuildStandardLine(weightProduct("40"), "1,250", dec("5"), nil, ""),
		BuildBatchLine(&ProductBatch{ID: 1, ProductId: 3, ActualWeight: dec("0.95"), UnitPrice: dec("45")}, ""),
	}

	totals := TotalCart(lines)

	if !totals.Subtotal.Equal(dec("170")) {
		t.Errorf("subtotal = %s, want 170", totals.Subtotal)
	}
	if !totals.DiscountTotal.Equal(dec("5")) {
		t.Errorf("discount total = %s, want 5", totals.DiscountTotal)
	}
	if !totals.GrandTotal.Equal(dec("165")) {
		t.Errorf("grand total = %s, want 165", totals.GrandTotal)
	}

	var sumSubtotals, sumDiscounts decimal.Decimal
	for _, line := range lines {
		sumSubtotals = sumSubtotals.Add(line.Subtotal())
		sumDiscounts = sumDiscounts.Add(line.DiscountAmount())
	}
	if !totals.Subtotal.Equal(sumSubtotals) {
		t.Error("cart subtotal must equal the sum of line subtotals")
	}
	if !totals.DiscountTotal.Equal(sumDiscounts) {
		t.Error("cart discount total must equal the sum of line discounts")
	}
}

func TestTotalCart_GrandTotalRoundedToWholeBs(t *testing.T) {
	lines := []CartLine{
		BuildStandardLine(weightProduct("39.9"), "0.33", decimal.Zero, nil, ""), // 13.17
	}

	totals := TotalCart(lines)

	if !totals.GrandTotal.Equal(totals.GrandTotal.Round(0)) {
		t.Errorf("grand total = %s, want a whole-Bs amount", totals.GrandTotal)
	}
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
