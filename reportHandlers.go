package main

import (
	"net/http"
	"strings"
	"time"

	"bitbucket.org/andeansoft/carniceria_backend/models/reports"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// reportRange parses the from_date / to_date query params.
// Defaults to the last 30 days when omitted.
func reportRange(c *gin.Context) (time.Time, time.Time, bool) {
	fromPtr, toPtr, err := dateRangeQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return time.Time{}, time.Time{}, false
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now
	if fromPtr != nil {
		from = *fromPtr
	}
	if toPtr != nil {
		to = *toPtr
	}
	return from, to, true
}

func wantsExcel(c *gin.Context) bool {
	return strings.EqualFold(c.Query("format"), "xlsx")
}

func dailySalesReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		from, to, ok := reportRange(c)
		if !ok {
			return
		}

		records, err := reports.GetDailySalesReport(c.Request.Context(), from, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if wantsExcel(c) {
			rows := make([]reports.ExcelExporter, 0, len(records))
			for _, r := range records {
				rows = append(rows, r)
			}
			c.Writer.Header().Set("Content-Type", xlsxContentType)
			c.Writer.Header().Set("Content-Disposition", "attachment; filename=daily-sales.xlsx")
			if err := reports.WriteExcel(c.Writer, rows,
				"Day", "Sales", "Subtotal", "Discount", "Total",
				"Cash", "Card", "QR", "Transfer",
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write file"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": records})
	}
}

func salesByProductReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		from, to, ok := reportRange(c)
		if !ok {
			return
		}

		records, err := reports.GetSalesByProductReport(c.Request.Context(), from, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if wantsExcel(c) {
			rows := make([]reports.ExcelExporter, 0, len(records))
			for _, r := range records {
				rows = append(rows, r)
			}
			c.Writer.Header().Set("Content-Type", xlsxContentType)
			c.Writer.Header().Set("Content-Disposition", "attachment; filename=sales-by-product.xlsx")
			if err := reports.WriteExcel(c.Writer, rows,
				"Product", "Sale Type", "Lines", "Qty", "Discount", "Total",
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write file"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": records})
	}
}
