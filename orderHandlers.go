package main

import (
	"net/http"
	"strconv"

	"bitbucket.org/andeansoft/carniceria_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func createOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		var input models.NewOrder
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		order, err := models.CreateOrder(c.Request.Context(), &input)
		if err != nil {
			c.JSON(checkoutErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": order})
	}
}

func listOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		customerId, _ := strconv.Atoi(c.Query("customer_id"))
		limit, _ := strconv.Atoi(c.Query("limit"))
		offset, _ := strconv.Atoi(c.Query("offset"))
		status := models.OrderStatus(c.Query("status"))
		if status != "" && !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}

		orders, err := models.ListOrders(c.Request.Context(), status, customerId, limit, offset)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": orders})
	}
}

func getOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		order, err := models.GetOrder(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": order})
	}
}

func markOrderReadyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		order, err := models.MarkOrderReady(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": order})
	}
}

func cancelOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		order, err := models.CancelOrder(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": order})
	}
}

type orderCheckoutRequest struct {
	CashSessionId  int                  `json:"cash_session_id" binding:"required"`
	PaymentMethod  models.PaymentMethod `json:"payment_method" binding:"required"`
	AmountTendered string               `json:"amount_tendered"`
	Notes          string               `json:"notes"`
}

// checkoutOrderHandler converts a reservation pickup into a regular sale:
// the order's lines (reserved lots included) feed the standard checkout and
// the order completes inside the same transaction.
func checkoutOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var req orderCheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		order, err := models.GetOrder(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if order.CurrentStatus != models.OrderStatusPending && order.CurrentStatus != models.OrderStatusReady {
			c.JSON(http.StatusBadRequest, gin.H{"error": "order is " + string(order.CurrentStatus)})
			return
		}

		input := models.NewSale{
			CashSessionId: req.CashSessionId,
			CustomerId:    order.CustomerId,
			OrderId:       order.ID,
			PaymentMethod: req.PaymentMethod,
			Notes:         req.Notes,
			Details:       models.OrderCheckoutDetails(order),
		}
		if req.AmountTendered != "" {
			tendered, err := decimal.NewFromString(req.AmountTendered)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount_tendered"})
				return
			}
			input.AmountTendered = tendered
		}

		sale, err := models.CreateSale(c.Request.Context(), &input)
		if err != nil {
			c.JSON(checkoutErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": sale})
	}
}
