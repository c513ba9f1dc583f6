package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type RiskLevel string

const (
	RiskLow  RiskLevel = "low"
	RiskMid  RiskLevel = "mid"
	RiskHigh RiskLevel = "high"
)

func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMid, RiskHigh:
		return true
	}
	return false
}

type OutcomeStatus string

const (
	OutcomePending OutcomeStatus = "pending"
	OutcomeWon     OutcomeStatus = "won"
	OutcomeLost    OutcomeStatus = "lost"
	OutcomeVoid    OutcomeStatus = "void"
)

func (s OutcomeStatus) Valid() bool {
	switch s {
	case OutcomePending, OutcomeWon, OutcomeLost, OutcomeVoid:
		return true
	}
	return false
}

// Tip is a single prediction on a match.
//
// Catalog tips have an empty SourceID. Entries inside a package's tip list are
// copies: they carry a freshly minted ID and the catalog ID in SourceID.
type Tip struct {
	ID         string          `json:"id" yaml:"id"`
	SourceID   string          `json:"source_id,omitempty" yaml:"source_id,omitempty"`
	MatchID    string          `json:"match_id" yaml:"match_id"`
	Match      string          `json:"match" yaml:"match"`
	League     string          `json:"league" yaml:"league"`
	Prediction string          `json:"prediction" yaml:"prediction"`
	Odds       decimal.Decimal `json:"odds" yaml:"odds"`
	Risk       RiskLevel       `json:"risk" yaml:"risk"`
	Status     OutcomeStatus   `json:"status" yaml:"status"`
	IsFree     bool            `json:"is_free" yaml:"is_free"`
	Date       string          `json:"date" yaml:"date"`
	UpdatedAt  time.Time       `json:"updated_at" yaml:"updated_at,omitempty"`
}

// Odds is a shopspring decimal, which is immutable, so a plain assignment is
// already a safe copy.
// Clone exists so call sites say what they mean.
func (t Tip) Clone() Tip {
	return t
}

func CloneTips(tips []Tip) []Tip {
	if tips == nil {
		return nil
	}
	out := make([]Tip, len(tips))
	copy(out, tips)
	return out
}
