package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Accounts, transactions, tickets and notifications are read-only in the
// console; they only flow through search, filtering and export.

type Account struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email" yaml:"email"`
	Phone     string    `json:"phone" yaml:"phone"`
	Plan      string    `json:"plan" yaml:"plan"`
	Status    string    `json:"status" yaml:"status"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

type Transaction struct {
	ID          string          `json:"id" yaml:"id"`
	AccountID   string          `json:"account_id" yaml:"account_id"`
	AccountName string          `json:"account_name" yaml:"account_name"`
	Reference   string          `json:"reference" yaml:"reference"`
	Amount      decimal.Decimal `json:"amount" yaml:"amount"`
	Currency    string          `json:"currency" yaml:"currency"`
	Method      string          `json:"method" yaml:"method"`
	Status      string          `json:"status" yaml:"status"`
	CreatedAt   time.Time       `json:"created_at" yaml:"created_at"`
}

type Ticket struct {
	ID        string    `json:"id" yaml:"id"`
	AccountID string    `json:"account_id" yaml:"account_id"`
	Requester string    `json:"requester" yaml:"requester"`
	Subject   string    `json:"subject" yaml:"subject"`
	Category  string    `json:"category" yaml:"category"`
	Priority  string    `json:"priority" yaml:"priority"`
	Status    string    `json:"status" yaml:"status"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

type Notification struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Body      string    `json:"body" yaml:"body"`
	Channel   string    `json:"channel" yaml:"channel"`
	Audience  string    `json:"audience" yaml:"audience"`
	Status    string    `json:"status" yaml:"status"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
