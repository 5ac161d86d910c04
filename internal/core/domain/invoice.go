package domain

import (
	"fmt"
	"strings"
	"time"
)

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

const (
	InvoicePaid    InvoiceStatus = "Payée"
	InvoicePending InvoiceStatus = "En attente"
	InvoiceLate    InvoiceStatus = "En retard"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoicePaid, InvoicePending, InvoiceLate:
		return true
	}
	return false
}

// Invoice bills a client for a service of the firm. Amounts are in MAD.
type Invoice struct {
	ID         string        `json:"id" bson:"_id"`
	Numero     string        `json:"numero" bson:"numero"`
	ClientID   string        `json:"client_id" bson:"client_id"`
	ClientName string        `json:"client_name" bson:"client_name"`
	Type       string        `json:"type" bson:"type"`
	IssueDate  time.Time     `json:"issue_date" bson:"issue_date"`
	DueDate    time.Time     `json:"due_date" bson:"due_date"`
	AmountHT   float64       `json:"amount_ht" bson:"amount_ht"`
	AmountTVA  float64       `json:"amount_tva" bson:"amount_tva"`
	AmountTTC  float64       `json:"amount_ttc" bson:"amount_ttc"`
	Status     InvoiceStatus `json:"status" bson:"status"`
	CreatedBy  string        `json:"created_by" bson:"created_by"`
	CreatedAt  time.Time     `json:"created_at" bson:"created_at"`
}

// EffectiveStatus returns InvoiceLate for an unpaid invoice past due.
func (i *Invoice) EffectiveStatus(now time.Time) InvoiceStatus {
	if i.Status != InvoicePaid && !i.DueDate.IsZero() && now.After(i.DueDate) {
		return InvoiceLate
	}
	return i.Status
}

// Matches searches the invoice number and the client name.
func (i *Invoice) Matches(term string) bool {
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	return strings.Contains(strings.ToLower(i.Numero), needle) ||
		strings.Contains(strings.ToLower(i.ClientName), needle)
}

// InvoiceNumber formats the sequential number of an invoice within a year.
func InvoiceNumber(year int, seq int64) string {
	return fmt.Sprintf("FACT-%d-%03d", year, seq)
}

// InvoiceInput is submitted when issuing an invoice.
type InvoiceInput struct {
	ClientID  string
	Type      string
	IssueDate time.Time
	DueDate   time.Time
	AmountHT  float64
}

func (in InvoiceInput) Validate() error {
	if in.ClientID == "" {
		return Invalid("client_id", "is required")
	}
	if in.AmountHT <= 0 {
		return Invalid("amount_ht", "must be greater than 0")
	}
	if !in.DueDate.IsZero() && !in.IssueDate.IsZero() && in.DueDate.Before(in.IssueDate) {
		return Invalid("due_date", "must not be before issue_date")
	}
	return nil
}
