package handler

import (
	"strings"
	"time"

	"github.com/blueshark0/pas/internal/domain/account"
	"github.com/blueshark0/pas/internal/domain/activity"
	"github.com/blueshark0/pas/internal/domain/entry"
	"github.com/blueshark0/pas/internal/domain/history"
	"github.com/blueshark0/pas/internal/domain/preset"
	"github.com/blueshark0/pas/internal/domain/recurrence"
	"github.com/blueshark0/pas/internal/domain/shared"
	engine "github.com/blueshark0/pas/internal/ledger_engine/service"
	"github.com/shopspring/decimal"
)

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=20" binding:"min=1"`
}

type CreateAccountRequest struct {
	Name           string          `json:"name" binding:"required"`
	Kind           string          `json:"kind"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	OpenedOn       string          `json:"opened_on"`
	Description    string          `json:"description"`
}

// AmountRequest is the body of balance init and edit
type AmountRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required"`
}

type AdjustRequest struct {
	Target      *decimal.Decimal `json:"target" binding:"required"`
	Date        string           `json:"date"`
	Description string           `json:"description"`
}

type TransferRequest struct {
	FromAccountID int64            `json:"from_account_id" binding:"required"`
	ToAccountID   int64            `json:"to_account_id" binding:"required"`
	Amount        *decimal.Decimal `json:"amount" binding:"required"`
	Date          string           `json:"date"`
	Description   string           `json:"description"`
}

type RecurrenceRequest struct {
	Type     string `json:"type"`
	Interval int    `json:"interval"`
	EndDate  string `json:"end_date"`
}

type CreatePresetRequest struct {
	AccountID     *int64             `json:"account_id"`
	Type          string             `json:"type" binding:"required"`
	Amount        *decimal.Decimal   `json:"amount" binding:"required"`
	ExecutionDate string             `json:"execution_date" binding:"required"`
	Description   string             `json:"description"`
	Recurrence    *RecurrenceRequest `json:"recurrence"`
}

type UpdatePresetRequest struct {
	AccountID     *int64             `json:"account_id"`
	Type          *string            `json:"type"`
	Amount        *decimal.Decimal   `json:"amount"`
	ExecutionDate *string            `json:"execution_date"`
	Description   *string            `json:"description"`
	Recurrence    *RecurrenceRequest `json:"recurrence"`
}

type InstallmentRequest struct {
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalPeriods  int             `json:"total_periods"`
	CurrentPeriod int             `json:"current_period"`
}

type CreateEntryRequest struct {
	AccountID   int64               `json:"account_id" binding:"required"`
	Type        string              `json:"type" binding:"required"`
	Amount      *decimal.Decimal    `json:"amount" binding:"required"`
	Date        string              `json:"date" binding:"required"`
	Category    string              `json:"category"`
	Description string              `json:"description"`
	Kind        string              `json:"kind"`
	Period      string              `json:"period"`
	Status      string              `json:"status"`
	Installment *InstallmentRequest `json:"installment"`
}

type UpdateEntryRequest struct {
	Type        *string          `json:"type"`
	Amount      *decimal.Decimal `json:"amount"`
	Date        *string          `json:"date"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Status      *string          `json:"status"`
}

type EntryQuery struct {
	AccountID *int64 `form:"account_id"`
	Type      string `form:"type"`
	From      string `form:"from"`
	To        string `form:"to"`
}

type HistoryQuery struct {
	AccountID     *int64 `form:"account_id"`
	ChangeType    string `form:"change_type"`
	From          string `form:"from"`
	To            string `form:"to"`
	TransactionID *int64 `form:"transaction_id"`
}

type AccountResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	Amount         string `json:"amount"`
	InitialBalance string `json:"initial_balance"`
	Description    string `json:"description,omitempty"`
	OpenedOn       string `json:"opened_on"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

type BalanceResponse struct {
	AccountID int64  `json:"account_id"`
	Amount    string `json:"amount"`
}

type AdjustmentResponse struct {
	AccountID int64  `json:"account_id"`
	Amount    string `json:"amount"`
	Delta     string `json:"delta"`
	Adjusted  bool   `json:"adjusted"`
	EntryID   *int64 `json:"entry_id,omitempty"`
	EventID   *int64 `json:"history_event_id,omitempty"`
}

type TransferResponse struct {
	FromBalance BalanceResponse `json:"from"`
	ToBalance   BalanceResponse `json:"to"`
	FromEntryID int64           `json:"from_entry_id"`
	ToEntryID   int64           `json:"to_entry_id"`
}

type RecurrenceResponse struct {
	Type     string `json:"type"`
	Interval int    `json:"interval"`
	EndDate  string `json:"end_date,omitempty"`
}

type PresetResponse struct {
	ID            int64              `json:"id"`
	AccountID     *int64             `json:"account_id,omitempty"`
	Type          string             `json:"type"`
	Amount        string             `json:"amount"`
	ExecutionDate string             `json:"execution_date"`
	Description   string             `json:"description,omitempty"`
	Status        string             `json:"status"`
	Recurring     bool               `json:"is_recurring"`
	Recurrence    RecurrenceResponse `json:"recurrence"`
	PreviousID    *int64             `json:"previous_id,omitempty"`
	ExecutedAt    string             `json:"executed_at,omitempty"`
}

type EntryResponse struct {
	ID             int64               `json:"id"`
	AccountID      int64               `json:"account_id"`
	Type           string              `json:"type"`
	Amount         string              `json:"amount"`
	Date           string              `json:"date"`
	Category       string              `json:"category,omitempty"`
	Description    string              `json:"description,omitempty"`
	Kind           string              `json:"kind"`
	Period         string              `json:"period"`
	Status         string              `json:"status"`
	Source         string              `json:"source"`
	NextOccurrence string              `json:"next_occurrence,omitempty"`
	TemplateID     *int64              `json:"template_id,omitempty"`
	Installment    *InstallmentRequest `json:"installment,omitempty"`
}

type HistoryEventResponse struct {
	ID                   int64  `json:"id"`
	AccountID            int64  `json:"account_id"`
	OccurredAt           string `json:"occurred_at"`
	ChangeType           string `json:"change_type"`
	RelatedTransactionID *int64 `json:"related_transaction_id,omitempty"`
	RelatedEntryID       *int64 `json:"related_entry_id,omitempty"`
	AmountChange         string `json:"amount_change"`
	BalanceAfter         string `json:"balance_after"`
	Description          string `json:"description,omitempty"`
}

type ExecutedItemResponse struct {
	PresetID      int64  `json:"preset_id"`
	AccountID     int64  `json:"account_id"`
	ExecutionDate string `json:"execution_date"`
	AmountChange  string `json:"amount_change"`
	BalanceAfter  string `json:"balance_after"`
	SuccessorID   *int64 `json:"successor_id,omitempty"`
}

type FailedItemResponse struct {
	PresetID      int64  `json:"preset_id"`
	AccountID     int64  `json:"account_id"`
	ExecutionDate string `json:"execution_date"`
	Reason        string `json:"reason"`
}

type ExecutionResponse struct {
	AsOf          string                 `json:"as_of"`
	Executed      []ExecutedItemResponse `json:"executed"`
	Failed        []FailedItemResponse   `json:"failed"`
	Skipped       []int64                `json:"skipped,omitempty"`
	FinalBalances map[int64]string       `json:"final_balances"`
}

type SweepAcceptedResponse struct {
	RequestID string `json:"request_id"`
	AsOfDate  string `json:"as_of_date,omitempty"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(shared.MoneyScale)
}

func date(t time.Time) string {
	return t.Format(shared.DateLayout)
}

func (r *RecurrenceRequest) toRule() (recurrence.Rule, error) {
	if r == nil {
		return recurrence.None(), nil
	}
	t, err := recurrence.ParseType(r.Type)
	if err != nil {
		return recurrence.Rule{}, err
	}
	rule := recurrence.Rule{Type: t, Interval: r.Interval}
	if rule.Interval == 0 {
		rule.Interval = 1
	}
	if r.EndDate != "" {
		end, err := shared.ParseDate("recurrence.end_date", r.EndDate)
		if err != nil {
			return recurrence.Rule{}, err
		}
		rule.EndDate = &end
	}
	return rule, nil
}

func (r *UpdatePresetRequest) toPatch() (preset.Patch, error) {
	patch := preset.Patch{
		Amount:      r.Amount,
		Description: r.Description,
		AccountID:   r.AccountID,
	}
	if r.Type != nil {
		t, err := shared.ParseTransactionType(*r.Type)
		if err != nil {
			return preset.Patch{}, err
		}
		patch.Type = &t
	}
	if r.ExecutionDate != nil {
		d, err := shared.ParseDate("execution_date", *r.ExecutionDate)
		if err != nil {
			return preset.Patch{}, err
		}
		patch.ExecutionDate = &d
	}
	if r.Recurrence != nil {
		rule, err := r.Recurrence.toRule()
		if err != nil {
			return preset.Patch{}, err
		}
		patch.Recurrence = &rule
	}
	return patch, nil
}

func parseEntryStatus(s string) (entry.Status, error) {
	switch st := entry.Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case "":
		return entry.StatusSettled, nil
	case entry.StatusSettled, entry.StatusUnsettled:
		return st, nil
	}
	return "", shared.NewValidationError("status", "must be SETTLED or UNSETTLED")
}

func (r *CreateEntryRequest) toDraft() (entry.Draft, error) {
	txType, err := shared.ParseTransactionType(r.Type)
	if err != nil {
		return entry.Draft{}, err
	}
	d, err := shared.ParseDate("date", r.Date)
	if err != nil {
		return entry.Draft{}, err
	}
	period, err := recurrence.ParseType(r.Period)
	if err != nil {
		return entry.Draft{}, err
	}
	status, err := parseEntryStatus(r.Status)
	if err != nil {
		return entry.Draft{}, err
	}

	draft := entry.Draft{
		AccountID:   r.AccountID,
		Type:        txType,
		Amount:      *r.Amount,
		Date:        d,
		Category:    r.Category,
		Description: r.Description,
		Kind:        entry.Kind(strings.ToUpper(strings.TrimSpace(r.Kind))),
		Period:      period,
		Status:      status,
	}
	if r.Installment != nil {
		draft.Installment = &entry.Installment{
			TotalAmount:   r.Installment.TotalAmount,
			TotalPeriods:  r.Installment.TotalPeriods,
			CurrentPeriod: r.Installment.CurrentPeriod,
		}
	}
	return draft, nil
}

func (r *UpdateEntryRequest) toPatch() (entry.Patch, error) {
	patch := entry.Patch{
		Amount:      r.Amount,
		Category:    r.Category,
		Description: r.Description,
	}
	if r.Type != nil {
		t, err := shared.ParseTransactionType(*r.Type)
		if err != nil {
			return entry.Patch{}, err
		}
		patch.Type = &t
	}
	if r.Date != nil {
		d, err := shared.ParseDate("date", *r.Date)
		if err != nil {
			return entry.Patch{}, err
		}
		patch.Date = &d
	}
	if r.Status != nil {
		st, err := parseEntryStatus(*r.Status)
		if err != nil {
			return entry.Patch{}, err
		}
		patch.Status = &st
	}
	return patch, nil
}

func (q *EntryQuery) toFilter() (entry.Filter, error) {
	f := entry.Filter{AccountID: q.AccountID}
	if q.Type != "" {
		t, err := shared.ParseTransactionType(q.Type)
		if err != nil {
			return entry.Filter{}, err
		}
		f.Type = &t
	}
	var err error
	if f.From, err = optionalDatePtr("from", q.From); err != nil {
		return entry.Filter{}, err
	}
	if f.To, err = optionalDatePtr("to", q.To); err != nil {
		return entry.Filter{}, err
	}
	return f, nil
}

func (q *HistoryQuery) toFilter() (history.Filter, error) {
	f := history.Filter{AccountID: q.AccountID, RelatedTransactionID: q.TransactionID}
	if q.ChangeType != "" {
		ct, err := shared.ParseChangeType(strings.ToUpper(q.ChangeType))
		if err != nil {
			return history.Filter{}, err
		}
		f.ChangeType = &ct
	}
	var err error
	if f.From, err = optionalDatePtr("from", q.From); err != nil {
		return history.Filter{}, err
	}
	if f.To, err = optionalDatePtr("to", q.To); err != nil {
		return history.Filter{}, err
	}
	return f, nil
}

func optionalDatePtr(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := shared.ParseDate(field, s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func mapAccount(acc *account.Account) AccountResponse {
	return AccountResponse{
		ID:             acc.ID,
		Name:           acc.Name,
		Kind:           string(acc.Kind),
		Amount:         money(acc.Amount),
		InitialBalance: money(acc.InitialBalance),
		Description:    acc.Description,
		OpenedOn:       date(acc.OpenedOn),
		CreatedAt:      acc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      acc.UpdatedAt.Format(time.RFC3339),
	}
}

func mapBalance(acc *account.Account) BalanceResponse {
	return BalanceResponse{AccountID: acc.ID, Amount: money(acc.Amount)}
}

func mapPreset(t *preset.Transaction) PresetResponse {
	resp := PresetResponse{
		ID:            t.ID,
		AccountID:     t.AccountID,
		Type:          string(t.Type),
		Amount:        money(t.Amount),
		ExecutionDate: date(t.ExecutionDate),
		Description:   t.Description,
		Status:        string(t.Status),
		Recurring:     t.IsRecurring(),
		Recurrence: RecurrenceResponse{
			Type:     string(t.Recurrence.Type),
			Interval: t.Recurrence.Interval,
		},
		PreviousID: t.PreviousID,
	}
	if t.Recurrence.EndDate != nil {
		resp.Recurrence.EndDate = date(*t.Recurrence.EndDate)
	}
	if t.ExecutedAt != nil {
		resp.ExecutedAt = t.ExecutedAt.Format(time.RFC3339)
	}
	return resp
}

func mapPresets(items []*preset.Transaction) []PresetResponse {
	out := make([]PresetResponse, 0, len(items))
	for _, t := range items {
		out = append(out, mapPreset(t))
	}
	return out
}

func mapEntry(e *entry.Entry) EntryResponse {
	resp := EntryResponse{
		ID:          e.ID,
		AccountID:   e.AccountID,
		Type:        string(e.Type),
		Amount:      money(e.Amount),
		Date:        date(e.Date),
		Category:    e.Category,
		Description: e.Description,
		Kind:        string(e.Kind),
		Period:      string(e.Period),
		Status:      string(e.Status),
		Source:      string(e.Source),
		TemplateID:  e.TemplateID,
	}
	if e.NextOccurrence != nil {
		resp.NextOccurrence = date(*e.NextOccurrence)
	}
	if e.Installment != nil {
		resp.Installment = &InstallmentRequest{
			TotalAmount:   e.Installment.TotalAmount,
			TotalPeriods:  e.Installment.TotalPeriods,
			CurrentPeriod: e.Installment.CurrentPeriod,
		}
	}
	return resp
}

func mapEntries(items []*entry.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(items))
	for _, e := range items {
		out = append(out, mapEntry(e))
	}
	return out
}

func mapEvent(e *history.Event) HistoryEventResponse {
	return HistoryEventResponse{
		ID:                   e.ID,
		AccountID:            e.AccountID,
		OccurredAt:           e.OccurredAt.UTC().Format(time.RFC3339Nano),
		ChangeType:           string(e.ChangeType),
		RelatedTransactionID: e.RelatedTransactionID,
		RelatedEntryID:       e.RelatedEntryID,
		AmountChange:         money(e.AmountChange),
		BalanceAfter:         money(e.BalanceAfter),
		Description:          e.Description,
	}
}

func mapEvents(items []*history.Event) []HistoryEventResponse {
	out := make([]HistoryEventResponse, 0, len(items))
	for _, e := range items {
		out = append(out, mapEvent(e))
	}
	return out
}

func mapActivity(items []*activity.Record) []HistoryEventResponse {
	out := make([]HistoryEventResponse, 0, len(items))
	for _, r := range items {
		out = append(out, HistoryEventResponse{
			ID:                   r.EventID,
			AccountID:            r.AccountID,
			OccurredAt:           r.OccurredAt.UTC().Format(time.RFC3339Nano),
			ChangeType:           string(r.ChangeType),
			RelatedTransactionID: r.RelatedTransactionID,
			RelatedEntryID:       r.RelatedEntryID,
			AmountChange:         money(r.AmountChange),
			BalanceAfter:         money(r.BalanceAfter),
			Description:          r.Description,
		})
	}
	return out
}

func mapExecution(r *engine.ExecutionResult) ExecutionResponse {
	resp := ExecutionResponse{
		AsOf:          date(r.AsOf),
		Executed:      make([]ExecutedItemResponse, 0, len(r.Executed)),
		Failed:        make([]FailedItemResponse, 0, len(r.Failed)),
		Skipped:       r.Skipped,
		FinalBalances: make(map[int64]string, len(r.FinalBalances)),
	}
	for _, item := range r.Executed {
		resp.Executed = append(resp.Executed, ExecutedItemResponse{
			PresetID:      item.PresetID,
			AccountID:     item.AccountID,
			ExecutionDate: date(item.ExecutionDate),
			AmountChange:  money(item.AmountChange),
			BalanceAfter:  money(item.BalanceAfter),
			SuccessorID:   item.SuccessorID,
		})
	}
	for _, item := range r.Failed {
		resp.Failed = append(resp.Failed, FailedItemResponse{
			PresetID:      item.PresetID,
			AccountID:     item.AccountID,
			ExecutionDate: date(item.ExecutionDate),
			Reason:        item.Reason,
		})
	}
	for id, amount := range r.FinalBalances {
		resp.FinalBalances[id] = money(amount)
	}
	return resp
}
