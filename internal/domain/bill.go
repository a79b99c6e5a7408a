package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type BillStatus string

const (
	BillPending   BillStatus = "PENDING"
	BillPaid      BillStatus = "PAID"
	BillCancelled BillStatus = "CANCELLED"
)

type BillItem struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

type BillItems []BillItem

func (b BillItems) Value() (driver.Value, error) {
	if b == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(b)
}

func (b *BillItems) Scan(src any) error {
	return scanJSON(src, b)
}

type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

func (c Customer) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *Customer) Scan(src any) error {
	return scanJSON(src, c)
}

type Bill struct {
	ID         string          `json:"id" db:"id"`
	BillUUID   string          `json:"billUUID" db:"bill_uuid"`
	BillNumber string          `json:"billNumber" db:"bill_number"`
	BillDate   time.Time       `json:"billDate" db:"bill_date"`
	Customer   Customer        `json:"customer" db:"customer"`
	Items      BillItems       `json:"items" db:"items"`
	GrandTotal decimal.Decimal `json:"grandTotal" db:"grand_total"`
	GST        decimal.Decimal `json:"gst" db:"gst"`
	Status     BillStatus      `json:"status" db:"status"`
	Notes      string          `json:"notes" db:"notes"`
	CreatedBy  *string         `json:"createdBy" db:"created_by"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time       `json:"updatedAt" db:"updated_at"`
}

// ComputeTotals fills missing item totals with quantity*price and sums the
// grand total from the item totals.
func (b *Bill) ComputeTotals() {
	grand := decimal.Zero
	for i := range b.Items {
		item := &b.Items[i]
		if item.Total.IsZero() {
			item.Total = item.Quantity.Mul(item.Price)
		}
		grand = grand.Add(item.Total)
	}
	b.GrandTotal = grand
}

func scanJSON(src any, dst any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported scan type %T", src)
	}
	return json.Unmarshal(data, dst)
}
