package main

import (
	"net/http"
	"strconv"
	"time"

	"bitbucket.org/andeansoft/carniceria_backend/models"
	"github.com/gin-gonic/gin"
)

type priceCartRequest struct {
	Details []models.NewSaleDetail `json:"details" binding:"required"`
}

// priceCartHandler runs the cart engine without touching stock or lots; the
// checkout screen calls it on every cart change to render live totals.
func priceCartHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		var req priceCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		priced, err := models.PriceCart(c.Request.Context(), req.Details)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": priced})
	}
}

type decodeBarcodeRequest struct {
	Barcode string `json:"barcode" binding:"required"`
}

type decodeBarcodeResponse struct {
	Product *models.Product        `json:"product"`
	Decoded *models.DecodedBarcode `json:"decoded,omitempty"`
}

// decodeBarcodeHandler resolves a scan to a catalog product. Scale labels are
// decoded and matched on the embedded product code; anything else is looked
// up as a regular catalog barcode.
func decodeBarcodeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		var req decodeBarcodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		if models.IsScaleBarcode(req.Barcode) {
			decoded, err := models.DecodeScaleBarcode(req.Barcode)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			product, err := models.GetProductByScaleCode(ctx, decoded.ProductCode)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "no product for scale code " + decoded.ProductCode})
				return
			}
			c.JSON(http.StatusOK, gin.H{"data": decodeBarcodeResponse{Product: product, Decoded: decoded}})
			return
		}

		product, err := models.GetProductByBarcode(ctx, req.Barcode)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no product for barcode"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": decodeBarcodeResponse{Product: product}})
	}
}

func createSaleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		var input models.NewSale
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx, span := tracer.Start(c.Request.Context(), "pos.checkout")
		defer span.End()

		sale, err := models.CreateSale(ctx, &input)
		if err != nil {
			c.JSON(checkoutErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": sale})
	}
}

func getSaleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		sale, err := models.GetSale(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": sale})
	}
}

func listSalesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		cashSessionId, _ := strconv.Atoi(c.Query("cash_session_id"))
		limit, _ := strconv.Atoi(c.Query("limit"))
		offset, _ := strconv.Atoi(c.Query("offset"))

		fromDate, toDate, err := dateRangeQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		sales, err := models.ListSales(c.Request.Context(), cashSessionId, fromDate, toDate, limit, offset)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": sales})
	}
}

// dateRangeQuery parses optional from_date / to_date query params
// (2006-01-02); to_date is inclusive through end of day.
func dateRangeQuery(c *gin.Context) (*time.Time, *time.Time, error) {
	var fromDate, toDate *time.Time
	if v := c.Query("from_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, nil, err
		}
		fromDate = &t
	}
	if v := c.Query("to_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, nil, err
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		toDate = &end
	}
	return fromDate, toDate, nil
}
