package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"bitbucket.org/andeansoft/carniceria_backend/models"
	"bitbucket.org/andeansoft/carniceria_backend/utils"
	"github.com/gin-gonic/gin"
)

func registerRoutes(r *gin.Engine) {
	r.POST("/auth/login", loginHandler())
	r.GET("/auth/me", currentUserHandler())
	r.POST("/auth/users", createUserHandler())

	r.GET("/product-categories", listProductCategoriesHandler())
	r.POST("/product-categories", createProductCategoryHandler())
	r.PUT("/product-categories/:id", updateProductCategoryHandler())
	r.DELETE("/product-categories/:id", deleteProductCategoryHandler())

	r.GET("/products", listProductsHandler())
	r.POST("/products", createProductHandler())
	r.GET("/products/:id", getProductHandler())
	r.PUT("/products/:id", updateProductHandler())
	r.DELETE("/products/:id", deleteProductHandler())
	r.POST("/products/:id/toggle-active", toggleProductActiveHandler())
	r.GET("/products/:id/batches", listProductBatchesHandler())
	r.POST("/products/:id/image", uploadProductImageHandler())

	r.GET("/product-batches", listAvailableBatchesHandler())
	r.POST("/product-batches", createProductBatchHandler())
	r.PUT("/product-batches/:id", updateProductBatchHandler())
	r.DELETE("/product-batches/:id", deleteProductBatchHandler())

	r.GET("/customers", searchCustomersHandler())
	r.POST("/customers", createCustomerHandler())
	r.GET("/customers/:id", getCustomerHandler())
	r.PUT("/customers/:id", updateCustomerHandler())
	r.DELETE("/customers/:id", deleteCustomerHandler())
	r.POST("/customers/:id/toggle-active", toggleCustomerActiveHandler())

	r.GET("/terminals", listTerminalsHandler())
	r.POST("/terminals", createTerminalHandler())

	r.POST("/cash-sessions", openCashSessionHandler())
	r.GET("/cash-sessions/open", getOpenCashSessionHandler())
	r.POST("/cash-sessions/close", closeCashSessionHandler())
	r.POST("/cash-movements", recordCashMovementHandler())

	r.POST("/pos/price-cart", priceCartHandler())
	r.POST("/pos/decode-barcode", decodeBarcodeHandler())

	r.POST("/sales", createSaleHandler())
	r.GET("/sales", listSalesHandler())
	r.GET("/sales/:id", getSaleHandler())

	r.POST("/orders", createOrderHandler())
	r.GET("/orders", listOrdersHandler())
	r.GET("/orders/:id", getOrderHandler())
	r.POST("/orders/:id/ready", markOrderReadyHandler())
	r.POST("/orders/:id/cancel", cancelOrderHandler())
	r.POST("/orders/:id/checkout", checkoutOrderHandler())

	r.GET("/reports/daily-sales", dailySalesReportHandler())
	r.GET("/reports/sales-by-product", salesByProductReportHandler())

	// Ops tooling (admin only).
	r.POST("/internal/ops/outbox/replay", outboxReplayHandler())
	r.POST("/internal/ops/reconcile-batches", reconcileBatchesHandler())
}

func idParam(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func requireUser(c *gin.Context) bool {
	if id, ok := utils.GetUserIdFromContext(c.Request.Context()); !ok || id <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}
	return true
}

func requireAdmin(c *gin.Context) bool {
	if !requireUser(c) {
		return false
	}
	role, _ := utils.GetRoleFromContext(c.Request.Context())
	if models.UserRole(role) != models.UserRoleAdmin {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}
	return true
}

// checkoutErrorStatus maps lot contention to 409 so the front-end can refresh
// the lot picker instead of showing a generic validation error.
func checkoutErrorStatus(err error) int {
	if errors.Is(err, models.ErrBatchUnavailable) {
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

// sessionUser loads the authenticated user record.
func sessionUser(ctx context.Context) (*models.User, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("unauthorized")
	}
	return models.GetUser(ctx, userId)
}
