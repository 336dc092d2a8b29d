package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/andeansoft/carniceria_backend/config"
	"bitbucket.org/andeansoft/carniceria_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashSession is a terminal-scoped shift. Sales and manual movements
// accumulate against it; closing compares declared cash to the running
// expectation and grades the deviation.
type CashSession struct {
	ID             int               `gorm:"primary_key" json:"id"`
	SequenceNo     decimal.Decimal   `gorm:"type:decimal(15);not null" json:"sequence_no"`
	TerminalId     int               `gorm:"index;not null" json:"terminal_id" binding:"required"`
	UserId         int               `gorm:"index;not null" json:"user_id"`
	OpeningAmount  decimal.Decimal   `gorm:"type:decimal(20,4);not null" json:"opening_amount"`
	ExpectedAmount *decimal.Decimal  `gorm:"type:decimal(20,4);default:null" json:"expected_amount"`
	DeclaredAmount *decimal.Decimal  `gorm:"type:decimal(20,4);default:null" json:"declared_amount"`
	Deviation      *decimal.Decimal  `gorm:"type:decimal(20,4);default:null" json:"deviation"`
	Classification *DeviationClass   `gorm:"type:enum('Normal','Warning','Critical');default:null" json:"classification"`
	Status         CashSessionStatus `gorm:"type:enum('Open','Closed');not null;default:'Open'" json:"status"`
	Notes          string            `gorm:"type:text" json:"notes"`
	OpenedAt       time.Time         `gorm:"not null" json:"opened_at"`
	ClosedAt       *time.Time        `gorm:"default:null" json:"closed_at"`
	Movements      []CashMovement    `gorm:"foreignKey:CashSessionId" json:"movements"`
	CreatedAt      time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// CashMovement is an immutable entry in the session ledger. Corrections are
// inverse entries, never edits.
type CashMovement struct {
	ID            int              `gorm:"primary_key" json:"id"`
	CashSessionId int              `gorm:"index;not null" json:"cash_session_id"`
	MovementType  CashMovementType `gorm:"type:enum('Sale','ManualIn','ManualOut','Void');not null" json:"movement_type"`
	PaymentMethod *PaymentMethod   `gorm:"type:enum('Cash','Card','QR','Transfer');default:null" json:"payment_method"`
	Amount        decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"amount"`
	Description   string           `gorm:"size:255;not null" json:"description"`
	ReferenceId   *int             `gorm:"default:null" json:"reference_id"`
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

var (
	ErrNoOpenSession      = errors.New("no open cash session for terminal")
	ErrSessionAlreadyOpen = errors.New("terminal already has an open cash session")
)

// deviation grading thresholds
var (
	deviationWarnAbs     = decimal.NewFromInt(10)
	deviationCriticalAbs = decimal.NewFromInt(50)
	deviationWarnPct     = decimal.NewFromInt(1)
	deviationCriticalPct = decimal.NewFromInt(5)
)

// ExpectedCashAmount is the cash the drawer should hold: opening amount plus
// cash-affecting movements. Card/QR/transfer sales never touch the drawer.
func ExpectedCashAmount(opening decimal.Decimal, movements []CashMovement) decimal.Decimal {
	expected := opening
	for _, m := range movements {
		if m.PaymentMethod != nil && *m.PaymentMethod != PaymentMethodCash {
			continue
		}
		switch m.MovementType {
		case CashMovementTypeSale, CashMovementTypeManualIn:
			expected = expected.Add(m.Amount)
		case CashMovementTypeManualOut, CashMovementTypeVoid:
			expected = expected.Sub(m.Amount)
		}
	}
	return expected
}

// ClassifyDeviation grades |declared - expected|: tiny gaps are normal
// counting noise, moderate ones need a note, large ones need a manager.
func ClassifyDeviation(deviation decimal.Decimal, expected decimal.Decimal) DeviationClass {
	abs := deviation.Abs()
	var pct decimal.Decimal
	if expected.GreaterThan(decimal.Zero) {
		pct = abs.Mul(decimalHundred).DivRound(expected, 2)
	}

	if abs.GreaterThan(deviationCriticalAbs) || pct.GreaterThan(deviationCriticalPct) {
		return DeviationClassCritical
	}
	if abs.GreaterThan(deviationWarnAbs) || pct.GreaterThan(deviationWarnPct) {
		return DeviationClassWarning
	}
	return DeviationClassNormal
}

type NewCashSession struct {
	TerminalId    int             `json:"terminal_id" binding:"required"`
	OpeningAmount decimal.Decimal `json:"opening_amount"`
	Notes         string          `json:"notes"`
}

func OpenCashSession(ctx context.Context, input *NewCashSession) (*CashSession, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user is required")
	}
	if err := utils.ValidateResourceId[Terminal](ctx, input.TerminalId); err != nil {
		return nil, errors.New("terminal not found")
	}
	if input.OpeningAmount.IsNegative() {
		return nil, errors.New("opening amount cannot be negative")
	}

	count, err := utils.ResourceCountWhere[CashSession](ctx, "terminal_id = ? AND status = ?", input.TerminalId, CashSessionStatusOpen)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSessionAlreadyOpen
	}

	seqNo, err := utils.GetSequence[CashSession](ctx)
	if err != nil {
		return nil, err
	}

	session := CashSession{
		SequenceNo:    decimal.NewFromInt(seqNo),
		TerminalId:    input.TerminalId,
		UserId:        userId,
		OpeningAmount: input.OpeningAmount,
		Status:        CashSessionStatusOpen,
		Notes:         input.Notes,
		OpenedAt:      time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// GetOpenCashSession returns the terminal's current shift.
func GetOpenCashSession(ctx context.Context, terminalId int) (*CashSession, error) {
	db := config.GetDB()

	var session CashSession
	err := db.WithContext(ctx).Preload("Movements").
		Where("terminal_id = ? AND status = ?", terminalId, CashSessionStatusOpen).
		First(&session).Error
	if err != nil {
		return nil, ErrNoOpenSession
	}
	return &session, nil
}

type NewCashMovement struct {
	CashSessionId int              `json:"cash_session_id" binding:"required"`
	MovementType  CashMovementType `json:"movement_type" binding:"required"`
	Amount        decimal.Decimal  `json:"amount" binding:"required"`
	Description   string           `json:"description" binding:"required"`
}

// RecordCashMovement adds a manual in/out entry to an open session.
// Sale movements are written by checkout, not through this path.
func RecordCashMovement(ctx context.Context, input *NewCashMovement) (*CashMovement, error) {
	db := config.GetDB()

	if input.MovementType != CashMovementTypeManualIn && input.MovementType != CashMovementTypeManualOut {
		return nil, errors.New("only manual movements can be recorded directly")
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("amount must be positive")
	}

	session, err := utils.FetchSingleModel[CashSession](ctx, input.CashSessionId)
	if err != nil {
		return nil, err
	}
	if session.Status != CashSessionStatusOpen {
		return nil, errors.New("cash session is closed")
	}

	cash := PaymentMethodCash
	movement := CashMovement{
		CashSessionId: session.ID,
		MovementType:  input.MovementType,
		PaymentMethod: &cash,
		Amount:        input.Amount,
		Description:   input.Description,
	}
	if err := db.WithContext(ctx).Create(&movement).Error; err != nil {
		return nil, err
	}
	return &movement, nil
}

// recordSaleMovement writes the session ledger entry for a completed sale
// inside the checkout transaction.
func recordSaleMovement(ctx context.Context, tx *gorm.DB, sessionId int, saleId int, method PaymentMethod, amount decimal.Decimal, description string) error {
	movement := CashMovement{
		CashSessionId: sessionId,
		MovementType:  CashMovementTypeSale,
		PaymentMethod: &method,
		Amount:        amount,
		Description:   description,
		ReferenceId:   &saleId,
	}
	return tx.WithContext(ctx).Create(&movement).Error
}

type CloseCashSessionInput struct {
	CashSessionId  int             `json:"cash_session_id" binding:"required"`
	DeclaredAmount decimal.Decimal `json:"declared_amount"`
	Notes          string          `json:"notes"`
}

func CloseCashSession(ctx context.Context, input *CloseCashSessionInput) (*CashSession, error) {
	db := config.GetDB()

	var session CashSession
	err := db.WithContext(ctx).Preload("Movements").First(&session, input.CashSessionId).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if session.Status != CashSessionStatusOpen {
		return nil, errors.New("cash session is already closed")
	}
	if input.DeclaredAmount.IsNegative() {
		return nil, errors.New("declared amount cannot be negative")
	}

	expected := ExpectedCashAmount(session.OpeningAmount, session.Movements)
	deviation := input.DeclaredAmount.Sub(expected)
	classification := ClassifyDeviation(deviation, expected)
	now := time.Now().UTC()

	session.ExpectedAmount = &expected
	session.DeclaredAmount = &input.DeclaredAmount
	session.Deviation = &deviation
	session.Classification = &classification
	session.Status = CashSessionStatusClosed
	session.ClosedAt = &now
	if input.Notes != "" {
		session.Notes = input.Notes
	}

	if err := db.WithContext(ctx).Save(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}
