package models

type SaleType string

const (
	SaleTypeUnit   SaleType = "UNIT"
	SaleTypeWeight SaleType = "WEIGHT"
)

func (t SaleType) Valid() bool {
	return t == SaleTypeUnit || t == SaleTypeWeight
}

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "Cash"
	PaymentMethodCard     PaymentMethod = "Card"
	PaymentMethodQr       PaymentMethod = "QR"
	PaymentMethodTransfer PaymentMethod = "Transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodQr, PaymentMethodTransfer:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusReady     OrderStatus = "Ready"
	OrderStatusCompleted OrderStatus = "Completed"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusReady, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

type CashSessionStatus string

const (
	CashSessionStatusOpen   CashSessionStatus = "Open"
	CashSessionStatusClosed CashSessionStatus = "Closed"
)

type CashMovementType string

const (
	CashMovementTypeSale      CashMovementType = "Sale"
	CashMovementTypeManualIn  CashMovementType = "ManualIn"
	CashMovementTypeManualOut CashMovementType = "ManualOut"
	CashMovementTypeVoid      CashMovementType = "Void"
)

func (t CashMovementType) Valid() bool {
	switch t {
	case CashMovementTypeSale, CashMovementTypeManualIn, CashMovementTypeManualOut, CashMovementTypeVoid:
		return true
	}
	return false
}

// DeviationClass grades the gap between declared and expected cash at close.
type DeviationClass string

const (
	DeviationClassNormal   DeviationClass = "Normal"
	DeviationClassWarning  DeviationClass = "Warning"
	DeviationClassCritical DeviationClass = "Critical"
)

// PricingScenario describes how a line's effective price relates to the
// catalog price, for receipt/screen rendering.
type PricingScenario string

const (
	// catalog price charged as-is
	PricingScenarioNormal PricingScenario = "Normal"
	// effective price below catalog; catalog shown struck through
	PricingScenarioDiscount PricingScenario = "Discount"
	// effective price present but not lower; catalog price displayed,
	// effective price silently governs the charge (label-printer barcodes)
	PricingScenarioOverride PricingScenario = "Override"
)

type OutboxPublishStatus string

const (
	OutboxPublishStatusPending    OutboxPublishStatus = "Pending"
	OutboxPublishStatusProcessing OutboxPublishStatus = "Processing"
	OutboxPublishStatusPublished  OutboxPublishStatus = "Published"
	OutboxPublishStatusFailed     OutboxPublishStatus = "Failed"
	OutboxPublishStatusDead       OutboxPublishStatus = "Dead"
)

type EventReferenceType string

const (
	EventReferenceTypeSale  EventReferenceType = "Sale"
	EventReferenceTypeOrder EventReferenceType = "Order"
)

type EventAction string

const (
	EventActionCreate EventAction = "Create"
	EventActionUpdate EventAction = "Update"
	EventActionCancel EventAction = "Cancel"
)

type UserRole string

const (
	UserRoleAdmin   UserRole = "Admin"
	UserRoleCashier UserRole = "Cashier"
)

func (r UserRole) Valid() bool {
	return r == UserRoleAdmin || r == UserRoleCashier
}
