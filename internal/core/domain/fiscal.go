package domain

import (
	"strings"
	"time"
)

// FiscalType is the tax a deadline belongs to.
type FiscalType string

const (
	FiscalTVA         FiscalType = "TVA"
	FiscalIS          FiscalType = "IS"
	FiscalIR          FiscalType = "IR"
	FiscalDeclaration FiscalType = "Declaration"
)

func (t FiscalType) Valid() bool {
	switch t {
	case FiscalTVA, FiscalIS, FiscalIR, FiscalDeclaration:
		return true
	}
	return false
}

// FiscalDeadline is a dated filing or payment obligation.
type FiscalDeadline struct {
	ID          string     `json:"id" bson:"_id"`
	Title       string     `json:"title" bson:"title"`
	Date        time.Time  `json:"date" bson:"date"`
	Type        FiscalType `json:"type" bson:"type"`
	Description string     `json:"description" bson:"description"`
	Urgent      bool       `json:"urgent" bson:"urgent"`
	CreatedBy   string     `json:"created_by" bson:"created_by"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
}

type FiscalDeadlineInput struct {
	Title       string
	Date        time.Time
	Type        FiscalType
	Description string
	Urgent      bool
}

func (in FiscalDeadlineInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return Invalid("title", "is required")
	}
	if in.Date.IsZero() {
		return Invalid("date", "is required")
	}
	if !in.Type.Valid() {
		return Invalid("type", "must be one of TVA, IS, IR, Declaration")
	}
	return nil
}
