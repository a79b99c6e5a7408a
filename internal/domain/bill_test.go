package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotals(t *testing.T) {
	b := &Bill{Items: BillItems{
		{Name: "Rice", Quantity: decimal.NewFromInt(3), Price: decimal.RequireFromString("12.50")},
		{Name: "Oil", Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(100), Total: decimal.NewFromInt(95)},
	}}

	b.ComputeTotals()

	assert.True(t, b.Items[0].Total.Equal(decimal.RequireFromString("37.5")))
	assert.True(t, b.Items[1].Total.Equal(decimal.NewFromInt(95)), "explicit total kept")
	assert.True(t, b.GrandTotal.Equal(decimal.RequireFromString("132.5")))
}

func TestBillItems_ScanValue(t *testing.T) {
	v, err := BillItems(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	var items BillItems
	require.NoError(t, items.Scan(`[{"name":"Tea","quantity":"2","unit":"cup","price":"10","total":"20"}]`))
	require.Len(t, items, 1)
	assert.Equal(t, "cup", items[0].Unit)

	var c Customer
	require.NoError(t, c.Scan([]byte(`{"name":"Kiran","phone":"98765"}`)))
	assert.Equal(t, "98765", c.Phone)
	assert.Error(t, c.Scan(42))
}
