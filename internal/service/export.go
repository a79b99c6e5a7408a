package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"splitpay-api/internal/domain"
	"splitpay-api/internal/repository"
)

const (
	requestsSheet   = "Requests"
	repaymentsSheet = "Repayments"
)

type FileStore interface {
	Save(ctx context.Context, fileName string, data []byte) (string, error)
	GetURL(fileName string) string
}

type ExportResult struct {
	URL  string `json:"url"`
	File string `json:"file"`
}

type statementRow struct {
	pr       domain.PaymentRequest
	sender   string
	receiver string
}

type repaymentRow struct {
	requestID string
	rep       domain.Repayment
}

type RequestColumn struct {
	Header string
	Value  func(r statementRow, loc *time.Location) any
}

type RepaymentColumn struct {
	Header string
	Value  func(r repaymentRow, loc *time.Location) any
}

func money(d decimal.Decimal) any {
	f, _ := d.Float64()
	return f
}

func optional(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

var requestColumns = []RequestColumn{
	{Header: "Request ID", Value: func(r statementRow, _ *time.Location) any { return r.pr.ID }},
	{Header: "Created", Value: func(r statementRow, loc *time.Location) any { return readableDate(r.pr.CreatedAt, loc) }},
	{Header: "From", Value: func(r statementRow, _ *time.Location) any { return r.sender }},
	{Header: "To", Value: func(r statementRow, _ *time.Location) any { return r.receiver }},
	{Header: "Amount", Value: func(r statementRow, _ *time.Location) any { return money(r.pr.Amount) }},
	{Header: "Currency", Value: func(r statementRow, _ *time.Location) any { return r.pr.Currency }},
	{Header: "Repaid", Value: func(r statementRow, _ *time.Location) any { return money(r.pr.TotalRepaid()) }},
	{Header: "Balance", Value: func(r statementRow, _ *time.Location) any { return money(r.pr.Balance()) }},
	{Header: "Status", Value: func(r statementRow, _ *time.Location) any { return string(r.pr.Status) }},
	{Header: "Transaction ID", Value: func(r statementRow, _ *time.Location) any { return optional(r.pr.TransactionID) }},
	{Header: "Paid At", Value: func(r statementRow, loc *time.Location) any {
		if r.pr.PaidAt == nil {
			return ""
		}
		return readableDate(*r.pr.PaidAt, loc)
	}},
	{Header: "Notes", Value: func(r statementRow, _ *time.Location) any { return r.pr.Notes }},
}

var repaymentColumns = []RepaymentColumn{
	{Header: "Request ID", Value: func(r repaymentRow, _ *time.Location) any { return r.requestID }},
	{Header: "Repaid At", Value: func(r repaymentRow, loc *time.Location) any { return readableDate(r.rep.RepaidAt, loc) }},
	{Header: "Amount", Value: func(r repaymentRow, _ *time.Location) any { return money(r.rep.Amount) }},
	{Header: "Balance Remaining", Value: func(r repaymentRow, _ *time.Location) any { return money(r.rep.BalanceRemaining) }},
	{Header: "Notes", Value: func(r repaymentRow, _ *time.Location) any { return r.rep.Notes }},
}

type ExportService struct {
	store    PaymentRequestStore
	profiles ProfileResolver
	files    FileStore
	loc      *time.Location
	now      func() time.Time
}

func NewExportService(store PaymentRequestStore, profiles ProfileResolver, files FileStore, loc *time.Location) *ExportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ExportService{store: store, profiles: profiles, files: files, loc: loc, now: time.Now}
}

// ExportStatement writes every non-declined request the user is party to
// into an xlsx workbook and stores it for download.
func (s *ExportService) ExportStatement(ctx context.Context, userUUID string) (*ExportResult, error) {
	items, err := s.store.List(ctx, repository.PaymentRequestsFilter{
		PartyUUID:       &userUUID,
		ExcludeStatuses: []domain.PaymentRequestStatus{domain.StatusDeclined},
	})
	if err != nil {
		return nil, err
	}

	names, err := s.partyNames(ctx, items)
	if err != nil {
		return nil, err
	}

	data, err := s.buildWorkbook(userUUID, items, names)
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("statement_%s_%s.xlsx", userUUID, s.now().Format("20060102_150405"))
	stored, err := s.files.Save(ctx, fileName, data)
	if err != nil {
		return nil, fmt.Errorf("save statement: %w", err)
	}
	return &ExportResult{URL: s.files.GetURL(stored), File: stored}, nil
}

func (s *ExportService) partyNames(ctx context.Context, items []domain.PaymentRequest) (map[string]string, error) {
	names := map[string]string{}
	if len(items) == 0 {
		return names, nil
	}

	var uuids []string
	for _, pr := range items {
		for _, u := range []string{pr.SenderUserUUID, pr.ReceiverUserUUID} {
			if _, ok := names[u]; !ok {
				names[u] = u
				uuids = append(uuids, u)
			}
		}
	}

	profiles, err := s.profiles.ResolveMany(ctx, uuids)
	if err != nil {
		return nil, fmt.Errorf("resolve profiles: %w", err)
	}
	for u, p := range profiles {
		if p.Name != "" {
			names[u] = p.Name
		}
	}
	return names, nil
}

func (s *ExportService) buildWorkbook(userUUID string, items []domain.PaymentRequest, names map[string]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), requestsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(repaymentsSheet); err != nil {
		return nil, err
	}
	_ = f.SetDocProps(&excelize.DocProperties{Creator: "user_" + userUUID, Title: "Payment statement"})

	for i, col := range requestColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(requestsSheet, cell, col.Header)
	}
	for i, col := range repaymentColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(repaymentsSheet, cell, col.Header)
	}

	repRow := 2
	for i, pr := range items {
		row := statementRow{pr: pr, sender: names[pr.SenderUserUUID], receiver: names[pr.ReceiverUserUUID]}
		for j, col := range requestColumns {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(requestsSheet, cell, col.Value(row, s.loc)); err != nil {
				return nil, err
			}
		}

		for _, rep := range pr.Repayments {
			rr := repaymentRow{requestID: pr.ID, rep: rep}
			for j, col := range repaymentColumns {
				cell, _ := excelize.CoordinatesToCellName(j+1, repRow)
				if err := f.SetCellValue(repaymentsSheet, cell, col.Value(rr, s.loc)); err != nil {
					return nil, err
				}
			}
			repRow++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
