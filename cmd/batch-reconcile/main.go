// batch-reconcile frees vacuum-packed lot reservations that no live order
// holds: reservations left behind by closed orders, and orders whose pickup
// date expired. Run it from cron; the server also exposes the same sweep at
// POST /internal/ops/reconcile-batches.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/batch-reconcile
//
// Env:
//   - ORDER_EXPIRY_GRACE_HOURS: hours past pickup_date before a pending order
//     is cancelled (default 24; set 0 to skip expiry cancellation)
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"bitbucket.org/andeansoft/carniceria_backend/config"
	"bitbucket.org/andeansoft/carniceria_backend/workflow"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()

	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	logger := config.GetLogger()

	released, err := workflow.ReconcileBatchReservations(ctx, db, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to reconcile batch reservations: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Released %d orphaned lot reservations\n", released)

	graceHours := 24
	if v := os.Getenv("ORDER_EXPIRY_GRACE_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			graceHours = n
		}
	}
	if graceHours == 0 {
		return
	}

	cancelled, err := workflow.ReleaseExpiredOrderReservations(ctx, db, logger, time.Duration(graceHours)*time.Hour)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to cancel expired orders: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Cancelled %d expired pickup orders\n", cancelled)
}
