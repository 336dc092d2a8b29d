package reports

import (
	"context"
	"time"

	"bitbucket.org/andeansoft/carniceria_backend/config"
	"github.com/shopspring/decimal"
)

type DailySalesResponse struct {
	SaleDay       string          `json:"SaleDay"`
	SaleCount     int             `json:"SaleCount"`
	Subtotal      decimal.Decimal `json:"Subtotal"`
	TotalDiscount decimal.Decimal `json:"TotalDiscount"`
	TotalSales    decimal.Decimal `json:"TotalSales"`
	CashSales     decimal.Decimal `json:"CashSales"`
	CardSales     decimal.Decimal `json:"CardSales"`
	QrSales       decimal.Decimal `json:"QrSales"`
	TransferSales decimal.Decimal `json:"TransferSales"`
}

func GetDailySalesReport(ctx context.Context, fromDate time.Time, toDate time.Time) ([]*DailySalesResponse, error) {

	sql := `
SELECT
    DATE(sale_date) AS sale_day,
    COUNT(id) AS sale_count,
    SUM(subtotal) AS subtotal,
    SUM(discount_total) AS total_discount,
    SUM(total_amount) AS total_sales,
    SUM(CASE WHEN payment_method = 'Cash' THEN total_amount ELSE 0 END) AS cash_sales,
    SUM(CASE WHEN payment_method = 'Card' THEN total_amount ELSE 0 END) AS card_sales,
    SUM(CASE WHEN payment_method = 'QR' THEN total_amount ELSE 0 END) AS qr_sales,
    SUM(CASE WHEN payment_method = 'Transfer' THEN total_amount ELSE 0 END) AS transfer_sales
FROM
    sales
WHERE
    sale_date BETWEEN @fromDate AND @toDate
GROUP BY DATE(sale_date)
ORDER BY sale_day;
`

	var records []*DailySalesResponse
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"fromDate": fromDate,
		"toDate":   toDate,
	}).Scan(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r DailySalesResponse) GetCellValues() []interface{} {
	return []interface{}{
		r.SaleDay,
		r.SaleCount,
		r.Subtotal,
		r.TotalDiscount,
		r.TotalSales,
		r.CashSales,
		r.CardSales,
		r.QrSales,
		r.TransferSales,
	}
}
