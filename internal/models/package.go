package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PackageStatus string

const (
	PackageActive   PackageStatus = "active"
	PackageInactive PackageStatus = "inactive"
)

// Package is a purchasable bundle of tips. Tips are snapshots taken when they
// were added and never alias catalog tips.
type Package struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	Price       decimal.Decimal `json:"price" yaml:"price"`
	Status      PackageStatus   `json:"status" yaml:"status"`
	Tips        []Tip           `json:"tips" yaml:"tips"`
	TipCount    int             `json:"tip_count" yaml:"-"`
	Revision    int             `json:"revision" yaml:"-"`
	UpdatedAt   time.Time       `json:"updated_at" yaml:"updated_at,omitempty"`
}

func (p Package) Clone() Package {
	p.Tips = CloneTips(p.Tips)
	return p
}

func ClonePackages(pkgs []Package) []Package {
	if pkgs == nil {
		return nil
	}
	out := make([]Package, len(pkgs))
	for i := range pkgs {
		out[i] = pkgs[i].Clone()
	}
	return out
}
