package config

import (
	"os"
	"strings"
)

// PublishSaleEvents gates the outbox dispatcher. With publishing disabled,
// sale event records still accumulate and can be replayed later.
//
// Set via env:
// - PUBLISH_SALE_EVENTS=true
func PublishSaleEvents() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("PUBLISH_SALE_EVENTS")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// EnforceDiscountCap rejects checkout lines whose discount exceeds the
// pre-discount subtotal. Kept behind a flag so legacy front-ends that
// validate in their own modal keep working unchanged.
//
// Set via env:
// - ENFORCE_DISCOUNT_CAP=false (default true)
func EnforceDiscountCap() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("ENFORCE_DISCOUNT_CAP")))
	if v == "" {
		return true
	}
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
