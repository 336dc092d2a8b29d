package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func methodPtr(m PaymentMethod) *PaymentMethod { return &m }

func TestExpectedCashAmount(t *testing.T) {
	movements := []CashMovement{
		{MovementType: CashMovementTypeSale, PaymentMethod: methodPtr(PaymentMethodCash), Amount: dec("120")},
		{MovementType: CashMovementTypeSale, PaymentMethod: methodPtr(PaymentMethodCard), Amount: dec("300")},
		{MovementType: CashMovementTypeSale, PaymentMethod: methodPtr(PaymentMethodQr), Amount: dec("45")},
		{MovementType: CashMovementTypeManualIn, PaymentMethod: methodPtr(PaymentMethodCash), Amount: dec("50")},
		{MovementType: CashMovementTypeManualOut, PaymentMethod: methodPtr(PaymentMethodCash), Amount: dec("30")},
		{MovementType: CashMovementTypeVoid, PaymentMethod: methodPtr(PaymentMethodCash), Amount: dec("20")},
	}

	// 200 opening + 120 cash sale + 50 in - 30 out - 20 void; card and QR never touch the drawer
	expected := ExpectedCashAmount(dec("200"), movements)
	if !expected.Equal(dec("320")) {
		t.Errorf("expected cash = %s, want 320", expected)
	}
}

func TestExpectedCashAmount_NoMovements(t *testing.T) {
	expected := ExpectedCashAmount(dec("150"), nil)
	if !expected.Equal(dec("150")) {
		t.Errorf("expected cash = %s, want the opening amount 150", expected)
	}
}

func TestClassifyDeviation(t *testing.T) {
	cases := []struct {
		name      string
		deviation string
		expected  string
		want      DeviationClass
	}{
		{"exact count", "0", "1000", DeviationClassNormal},
		{"small shortage", "-5", "1000", DeviationClassNormal},
		{"at warning boundary", "10", "10000", DeviationClassNormal},
		{"moderate shortage", "-12", "5000", DeviationClassWarning},
		{"moderate overage", "25", "5000", DeviationClassWarning},
		{"large shortage", "-60", "5000", DeviationClassCritical},
		{"small drawer large pct", "-6", "100", DeviationClassCritical},
		{"small drawer moderate pct", "2", "100", DeviationClassWarning},
		{"empty drawer", "5", "0", DeviationClassNormal},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ClassifyDeviation(dec(c.deviation), dec(c.expected))
			if got != c.want {
				t.Errorf("ClassifyDeviation(%s, %s) = %s, want %s", c.deviation, c.expected, got, c.want)
			}
		})
	}
}

func TestClassifyDeviation_SignAgnostic(t *testing.T) {
	expected := decimal.NewFromInt(5000)
	for _, d := range []string{"30", "-30"} {
		if got := ClassifyDeviation(dec(d), expected); got != DeviationClassWarning {
			t.Errorf("ClassifyDeviation(%s, 5000) = %s, want Warning", d, got)
		}
	}
}
