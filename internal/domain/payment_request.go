package domain

import (
	"crypto/rand"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentRequestStatus string

const (
	StatusPending  PaymentRequestStatus = "PENDING"
	StatusPaid     PaymentRequestStatus = "PAID"
	StatusDeclined PaymentRequestStatus = "DECLINED"
)

const (
	DefaultCurrency      = "INR"
	DefaultPaymentMethod = "UPI"

	transactionIDPrefix    = "TXN"
	transactionSuffixChars = 6
)

func (s PaymentRequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusDeclined:
		return true
	}
	return false
}

func ParseStatus(v string) (PaymentRequestStatus, error) {
	s := PaymentRequestStatus(v)
	if !s.Valid() {
		return "", &ValidationError{Field: "status", Message: "Status must be PENDING, PAID, or DECLINED"}
	}
	return s, nil
}

type Repayment struct {
	Amount           decimal.Decimal `json:"amount"`
	RepaidAt         time.Time       `json:"repaidAt"`
	BalanceRemaining decimal.Decimal `json:"balanceRemaining"`
	Notes            string          `json:"notes"`
}

// Repayments is stored as a single JSONB column on the payment request row.
type Repayments []Repayment

func (r Repayments) Value() (driver.Value, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r)
}

func (r *Repayments) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*r = Repayments{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("repayments: unsupported scan type %T", src)
	}
	out := Repayments{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("repayments: %w", err)
	}
	*r = out
	return nil
}

type PaymentRequest struct {
	ID                 string               `json:"id" db:"id"`
	SenderUserUUID     string               `json:"senderUserUUID" db:"sender_user_uuid"`
	ReceiverUserUUID   string               `json:"receiverUserUUID" db:"receiver_user_uuid"`
	Amount             decimal.Decimal      `json:"amount" db:"amount"`
	Currency           string               `json:"currency" db:"currency"`
	Notes              string               `json:"notes" db:"notes"`
	Status             PaymentRequestStatus `json:"status" db:"status"`
	TransactionID      *string              `json:"transactionId" db:"transaction_id"`
	PaymentMethod      *string              `json:"paymentMethod" db:"payment_method"`
	PaidAt             *time.Time           `json:"paidAt" db:"paid_at"`
	MarkAsFriendCredit bool                 `json:"markAsFriendCredit" db:"mark_as_friend_credit"`
	Repayments         Repayments           `json:"repayments" db:"repayments"`
	Version            int64                `json:"-" db:"version"`
	CreatedAt          time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time            `json:"updatedAt" db:"updated_at"`
}

func (p *PaymentRequest) TotalRepaid() decimal.Decimal {
	total := decimal.Zero
	for _, r := range p.Repayments {
		total = total.Add(r.Amount)
	}
	return total
}

// Balance is the live outstanding amount; it goes negative on overpayment.
func (p *PaymentRequest) Balance() decimal.Decimal {
	return p.Amount.Sub(p.TotalRepaid())
}

// IsParty reports whether userUUID is the sender or the receiver.
func (p *PaymentRequest) IsParty(userUUID string) bool {
	return userUUID != "" && (p.SenderUserUUID == userUUID || p.ReceiverUserUUID == userUUID)
}

func (p *PaymentRequest) SamePair(other *PaymentRequest) bool {
	return (p.SenderUserUUID == other.SenderUserUUID && p.ReceiverUserUUID == other.ReceiverUserUUID) ||
		(p.SenderUserUUID == other.ReceiverUserUUID && p.ReceiverUserUUID == other.SenderUserUUID)
}

// ApplyRepayment appends one installment and settles the request once the
// running balance reaches zero or below.
func (p *PaymentRequest) ApplyRepayment(amount decimal.Decimal, notes string, now time.Time) (Repayment, error) {
	if err := ValidateAmount("amount", amount); err != nil {
		return Repayment{}, err
	}

	newBalance := p.Amount.Sub(p.TotalRepaid().Add(amount))
	rep := Repayment{
		Amount:           amount,
		RepaidAt:         now,
		BalanceRemaining: newBalance,
		Notes:            notes,
	}
	p.Repayments = append(p.Repayments, rep)

	if !newBalance.IsPositive() {
		p.Status = StatusPaid
		paidAt := now
		p.PaidAt = &paidAt
	}
	p.UpdatedAt = now
	return rep, nil
}

func (p *PaymentRequest) MarkPaid(transactionID, method string, friendCredit bool, now time.Time) {
	p.Status = StatusPaid
	p.TransactionID = &transactionID
	p.PaymentMethod = &method
	paidAt := now
	p.PaidAt = &paidAt
	p.MarkAsFriendCredit = friendCredit
	p.UpdatedAt = now
}

func (p *PaymentRequest) Decline(now time.Time) {
	p.Status = StatusDeclined
	p.UpdatedAt = now
}

func (p *PaymentRequest) SetStatus(status PaymentRequestStatus, now time.Time) error {
	if !status.Valid() {
		return &ValidationError{Field: "status", Message: "Status must be PENDING, PAID, or DECLINED"}
	}
	p.Status = status
	p.UpdatedAt = now
	return nil
}

// NewTransactionID builds TXN + base36(unix millis) + a random base36 suffix.
// Collisions are unlikely but not checked.
func NewTransactionID(now time.Time) (string, error) {
	const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	var b strings.Builder
	b.WriteString(transactionIDPrefix)
	b.WriteString(strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)))

	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < transactionSuffixChars; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.New("failed to generate transaction id")
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}
