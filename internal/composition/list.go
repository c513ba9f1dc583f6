// Package composition edits the ordered tip list of a package.
//
// Every operation is copy-on-write: it returns a new slice and leaves its
// input untouched, so a caller holding the previous list (the committed
// package, another session) never observes the change.
//
// Within one list no two entries share a de-duplication key. The keys of an
// entry are its identity and the composite of its match and prediction.
package composition

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	domainerrors "github.com/Cheertaboi/tips-console/internal/errors"
	"github.com/Cheertaboi/tips-console/internal/models"
)

// IDFunc mints a fresh identity for a copied tip.
type IDFunc func() string

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

type Field string

const (
	FieldMatch      Field = "match"
	FieldLeague     Field = "league"
	FieldPrediction Field = "prediction"
	FieldOdds       Field = "odds"
	FieldRisk       Field = "risk"
	FieldStatus     Field = "status"
	FieldDate       Field = "date"
)

const copySuffix = " (Copy)"

func identityKey(id string) string {
	return "id:" + id
}

// CompositeKey is the match+prediction key used to spot the same tip under
// different identities.
func CompositeKey(t models.Tip) string {
	return "mp:" + t.MatchID + "|" + strings.ToLower(strings.TrimSpace(t.Prediction))
}

type keySet map[string]struct{}

func (k keySet) has(key string) bool {
	_, ok := k[key]
	return ok
}

func (k keySet) add(t models.Tip) {
	k[identityKey(t.ID)] = struct{}{}
	k[CompositeKey(t)] = struct{}{}
}

func keysOf(list []models.Tip, skip int) keySet {
	keys := make(keySet, 2*len(list))
	for i, t := range list {
		if i == skip {
			continue
		}
		keys.add(t)
	}
	return keys
}

func checkIndex(list []models.Tip, index int) error {
	if index < 0 || index >= len(list) {
		return domainerrors.IndexOutOfRange(index, len(list))
	}
	return nil
}

// AddTips appends copies of the candidates not already represented in list.
// A candidate is skipped when its identity matches an entry's identity or
// source, or its composite key matches an entry's. Accepted copies get a
// fresh ID, remember the candidate ID as SourceID and are never free.
func AddTips(list, candidates []models.Tip, newID IDFunc) (out []models.Tip, added, skipped int) {
	out = models.CloneTips(list)
	if out == nil {
		out = []models.Tip{}
	}
	keys := keysOf(list, -1)
	sources := make(keySet, len(list))
	for _, t := range list {
		if t.SourceID != "" {
			sources[identityKey(t.SourceID)] = struct{}{}
		}
	}

	for _, c := range candidates {
		idKey := identityKey(c.ID)
		if keys.has(idKey) || sources.has(idKey) || keys.has(CompositeKey(c)) {
			skipped++
			continue
		}
		cp := c.Clone()
		cp.SourceID = c.ID
		cp.ID = newID()
		cp.IsFree = false
		out = append(out, cp)
		keys.add(cp)
		sources[idKey] = struct{}{}
		added++
	}
	return out, added, skipped
}

// RemoveTip removes the entry at index; later entries shift left.
func RemoveTip(list []models.Tip, index int) ([]models.Tip, error) {
	if err := checkIndex(list, index); err != nil {
		return nil, err
	}
	out := make([]models.Tip, 0, len(list)-1)
	out = append(out, list[:index]...)
	return append(out, list[index+1:]...), nil
}

// MoveTip swaps the entry at index with its neighbour in dir. Moving the
// first entry up or the last entry down returns an unchanged copy.
func MoveTip(list []models.Tip, index int, dir Direction) ([]models.Tip, error) {
	if err := checkIndex(list, index); err != nil {
		return nil, err
	}
	var target int
	switch dir {
	case Up:
		target = index - 1
	case Down:
		target = index + 1
	default:
		return nil, domainerrors.Validationf("unknown direction %q", dir)
	}

	out := models.CloneTips(list)
	if target < 0 || target >= len(out) {
		return out, nil
	}
	out[index], out[target] = out[target], out[index]
	return out, nil
}

// DuplicateTip inserts a copy of the entry at index right after it. The copy
// gets a fresh ID and a " (Copy)" suffix on its prediction (numbered when
// needed) so its composite key stays unique.
func DuplicateTip(list []models.Tip, index int, newID IDFunc) ([]models.Tip, error) {
	if err := checkIndex(list, index); err != nil {
		return nil, err
	}
	keys := keysOf(list, -1)

	src := list[index]
	cp := src.Clone()
	cp.ID = newID()
	if cp.SourceID == "" {
		cp.SourceID = src.ID
	}
	for n := 1; ; n++ {
		suffix := copySuffix
		if n > 1 {
			suffix = fmt.Sprintf(" (Copy %d)", n)
		}
		cp.Prediction = src.Prediction + suffix
		if !keys.has(CompositeKey(cp)) {
			break
		}
	}

	out := make([]models.Tip, 0, len(list)+1)
	out = append(out, list[:index+1]...)
	out = append(out, cp)
	return append(out, list[index+1:]...), nil
}

// EditField sets one field of the entry at index. Values are validated, and
// an edit that would give the entry another entry's composite key is
// rejected with DuplicateTip.
func EditField(list []models.Tip, index int, field Field, value string) ([]models.Tip, error) {
	if err := checkIndex(list, index); err != nil {
		return nil, err
	}
	t := list[index].Clone()
	value = strings.TrimSpace(value)

	switch field {
	case FieldMatch:
		if value == "" {
			return nil, domainerrors.Validation("match must not be empty")
		}
		t.Match = value
	case FieldLeague:
		t.League = value
	case FieldPrediction:
		if value == "" {
			return nil, domainerrors.Validation("prediction must not be empty")
		}
		t.Prediction = value
	case FieldOdds:
		odds, err := decimal.NewFromString(value)
		if err != nil || !odds.IsPositive() {
			return nil, domainerrors.Validationf("odds must be a positive decimal, got %q", value)
		}
		t.Odds = odds
	case FieldRisk:
		risk := models.RiskLevel(value)
		if !risk.Valid() {
			return nil, domainerrors.Validationf("unknown risk level %q", value)
		}
		t.Risk = risk
	case FieldStatus:
		status := models.OutcomeStatus(value)
		if !status.Valid() {
			return nil, domainerrors.Validationf("unknown outcome status %q", value)
		}
		t.Status = status
	case FieldDate:
		if value == "" {
			return nil, domainerrors.Validation("date must not be empty")
		}
		t.Date = value
	default:
		return nil, domainerrors.Validationf("field %q is not editable", field)
	}

	if keysOf(list, index).has(CompositeKey(t)) {
		return nil, domainerrors.DuplicateTipf("another entry already predicts %q for match %s", t.Prediction, t.MatchID)
	}

	out := models.CloneTips(list)
	out[index] = t
	return out, nil
}
