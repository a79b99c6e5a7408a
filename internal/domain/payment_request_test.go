package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPending(amount int64) *PaymentRequest {
	return &PaymentRequest{
		ID:               "pr-1",
		SenderUserUUID:   "S",
		ReceiverUserUUID: "R",
		Amount:           decimal.NewFromInt(amount),
		Currency:         DefaultCurrency,
		Status:           StatusPending,
		Repayments:       Repayments{},
	}
}

func TestApplyRepayment_PartialThenFull(t *testing.T) {
	pr := newPending(100)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	rep, err := pr.ApplyRepayment(decimal.NewFromInt(40), "first", now)
	require.NoError(t, err)
	assert.True(t, rep.BalanceRemaining.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, StatusPending, pr.Status)
	assert.Nil(t, pr.PaidAt)

	later := now.Add(time.Hour)
	rep, err = pr.ApplyRepayment(decimal.NewFromInt(60), "", later)
	require.NoError(t, err)
	assert.True(t, rep.BalanceRemaining.IsZero())
	assert.Equal(t, StatusPaid, pr.Status)
	require.NotNil(t, pr.PaidAt)
	assert.Equal(t, later, *pr.PaidAt)
	assert.Len(t, pr.Repayments, 2)
	assert.True(t, pr.Balance().IsZero())
}

func TestApplyRepayment_OverpaymentIsNotClamped(t *testing.T) {
	pr := newPending(50)
	now := time.Now()

	_, err := pr.ApplyRepayment(decimal.NewFromInt(30), "", now)
	require.NoError(t, err)
	rep, err := pr.ApplyRepayment(decimal.NewFromInt(45), "", now)
	require.NoError(t, err)

	assert.True(t, rep.BalanceRemaining.Equal(decimal.NewFromInt(-25)))
	assert.Equal(t, StatusPaid, pr.Status)
	assert.True(t, pr.Amount.Equal(decimal.NewFromInt(50)), "principal must not change")
}

func TestApplyRepayment_RejectsNonPositive(t *testing.T) {
	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		pr := newPending(10)
		_, err := pr.ApplyRepayment(amount, "", time.Now())

		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "amount", vErr.Field)
		assert.Empty(t, pr.Repayments)
	}
}

func TestApplyRepayment_DecimalFractions(t *testing.T) {
	pr := newPending(0)
	pr.Amount = decimal.RequireFromString("0.30")

	for i := 0; i < 3; i++ {
		_, err := pr.ApplyRepayment(decimal.RequireFromString("0.10"), "", time.Now())
		require.NoError(t, err)
	}
	assert.True(t, pr.Repayments[2].BalanceRemaining.IsZero())
	assert.Equal(t, StatusPaid, pr.Status)
}

func TestDecline_AllowedFromPaid(t *testing.T) {
	pr := newPending(10)
	pr.MarkPaid("TXN1", DefaultPaymentMethod, false, time.Now())

	pr.Decline(time.Now())
	assert.Equal(t, StatusDeclined, pr.Status)

	pr.Decline(time.Now())
	assert.Equal(t, StatusDeclined, pr.Status)
}

func TestMarkPaid_LeavesRepaymentsAlone(t *testing.T) {
	pr := newPending(100)
	_, err := pr.ApplyRepayment(decimal.NewFromInt(10), "", time.Now())
	require.NoError(t, err)

	pr.MarkPaid("TXNABC", DefaultPaymentMethod, true, time.Now())

	assert.Equal(t, StatusPaid, pr.Status)
	assert.Len(t, pr.Repayments, 1)
	assert.True(t, pr.MarkAsFriendCredit)
	require.NotNil(t, pr.PaymentMethod)
	assert.Equal(t, DefaultPaymentMethod, *pr.PaymentMethod)
}

func TestSetStatus(t *testing.T) {
	pr := newPending(10)
	require.NoError(t, pr.SetStatus(StatusPaid, time.Now()))
	require.NoError(t, pr.SetStatus(StatusPending, time.Now()))
	assert.Equal(t, StatusPending, pr.Status)

	err := pr.SetStatus("RE_PAID", time.Now())
	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, StatusPending, pr.Status)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("DECLINED")
	require.NoError(t, err)
	assert.Equal(t, StatusDeclined, s)

	_, err = ParseStatus("pending")
	assert.Error(t, err)
}

func TestNewTransactionID(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	id, err := NewTransactionID(now)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(id, "TXN"+strings.ToUpper("loyw3v28")))
	assert.Len(t, id, len("TXN")+len("loyw3v28")+transactionSuffixChars)

	other, err := NewTransactionID(now)
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestRepayments_ScanValue(t *testing.T) {
	in := Repayments{{Amount: decimal.NewFromInt(5), BalanceRemaining: decimal.NewFromInt(5), Notes: "x"}}
	v, err := in.Value()
	require.NoError(t, err)

	var out Repayments
	require.NoError(t, out.Scan(v))
	require.Len(t, out, 1)
	assert.True(t, out[0].Amount.Equal(decimal.NewFromInt(5)))

	require.NoError(t, out.Scan(nil))
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestSamePair(t *testing.T) {
	a := &PaymentRequest{SenderUserUUID: "A", ReceiverUserUUID: "B"}
	assert.True(t, a.SamePair(&PaymentRequest{SenderUserUUID: "B", ReceiverUserUUID: "A"}))
	assert.True(t, a.SamePair(&PaymentRequest{SenderUserUUID: "A", ReceiverUserUUID: "B"}))
	assert.False(t, a.SamePair(&PaymentRequest{SenderUserUUID: "A", ReceiverUserUUID: "C"}))
}
