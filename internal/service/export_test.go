package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"splitpay-api/internal/domain"
)

type memoryFiles struct {
	name string
	data []byte
}

func (m *memoryFiles) Save(_ context.Context, fileName string, data []byte) (string, error) {
	m.name, m.data = "abc_"+fileName, data
	return m.name, nil
}

func (m *memoryFiles) GetURL(fileName string) string {
	return "http://localhost:5000/files/" + fileName
}

func TestExportStatement(t *testing.T) {
	store := newMemoryRequests()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	store.put(domain.PaymentRequest{
		ID: "1", SenderUserUUID: "A", ReceiverUserUUID: "B", Amount: decimal.NewFromInt(100),
		Currency: "INR", Status: domain.StatusPending, CreatedAt: base,
		Repayments: domain.Repayments{
			{Amount: decimal.NewFromInt(30), BalanceRemaining: decimal.NewFromInt(70), RepaidAt: base},
			{Amount: decimal.NewFromInt(20), BalanceRemaining: decimal.NewFromInt(50), RepaidAt: base},
		},
	})
	store.put(domain.PaymentRequest{ID: "2", SenderUserUUID: "C", ReceiverUserUUID: "A", Amount: decimal.NewFromInt(10), Status: domain.StatusDeclined, CreatedAt: base})
	store.put(domain.PaymentRequest{ID: "3", SenderUserUUID: "B", ReceiverUserUUID: "C", Amount: decimal.NewFromInt(10), Status: domain.StatusPending, CreatedAt: base})

	files := &memoryFiles{}
	svc := NewExportService(store, newStaticProfiles(alice, bob), files, time.UTC)
	svc.now = fixedClock(time.Date(2025, 3, 2, 8, 30, 0, 0, time.UTC))

	res, err := svc.ExportStatement(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "abc_statement_A_20250302_083000.xlsx", res.File)
	assert.Equal(t, "http://localhost:5000/files/abc_statement_A_20250302_083000.xlsx", res.URL)

	f, err := excelize.OpenReader(bytes.NewReader(files.data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(requestsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Request ID", rows[0][0])
	assert.Equal(t, []string{"1", "1 Mar 2025, 9:00 AM", "Alice", "Bob", "100", "INR", "50", "50", "PENDING"}, rows[1][:9])

	reps, err := f.GetRows(repaymentsSheet)
	require.NoError(t, err)
	require.Len(t, reps, 3)
	assert.Equal(t, "70", reps[1][3])
	assert.Equal(t, "50", reps[2][3])
}
