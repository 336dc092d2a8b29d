package reports

import (
	"context"
	"time"

	"bitbucket.org/andeansoft/carniceria_backend/config"
	"github.com/shopspring/decimal"
)

type SalesByProductResponse struct {
	ProductId     int             `json:"ProductId"`
	ProductName   string          `json:"ProductName"`
	SaleType      string          `json:"SaleType"`
	LineCount     int             `json:"LineCount"`
	TotalQty      decimal.Decimal `json:"TotalQty"`
	TotalDiscount decimal.Decimal `json:"TotalDiscount"`
	TotalSales    decimal.Decimal `json:"TotalSales"`
}

func GetSalesByProductReport(ctx context.Context, fromDate time.Time, toDate time.Time) ([]*SalesByProductResponse, error) {

	sql := `
SELECT
    sd.product_id,
    sd.product_name,
    sd.sale_type,
    sd.line_count,
    sd.total_qty,
    sd.total_discount,
    sd.total_sales
FROM
    (SELECT
        product_id,
            MAX(product_name) AS product_name,
            MAX(sale_type) AS sale_type,
            COUNT(sale_details.id) AS line_count,
            SUM(qty) AS total_qty,
            SUM(discount_amount) AS total_discount,
            SUM(sale_details.total_amount) AS total_sales
    FROM
        sale_details
            JOIN sales ON sales.id = sale_details.sale_id
    WHERE
        sales.sale_date BETWEEN @fromDate AND @toDate
    GROUP BY product_id) AS sd
ORDER BY sd.total_sales DESC;
`

	var records []*SalesByProductResponse
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"fromDate": fromDate,
		"toDate":   toDate,
	}).Scan(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r SalesByProductResponse) GetCellValues() []interface{} {
	return []interface{}{
		r.ProductName,
		r.SaleType,
		r.LineCount,
		r.TotalQty,
		r.TotalDiscount,
		r.TotalSales,
	}
}
