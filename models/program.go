package models

import (
	"gorm.io/gorm"

	"microschool-crm/internal/engine/tuition"
)

// Program represents one enrollment offering ("5-day full-time",
// "3-day hybrid", ...). Programs are deactivated rather than deleted;
// Capacity is a limit only, the authoritative enrollment count is always
// recounted from active enrollments.
type Program struct {
	gorm.Model
	Name        string  `json:"name" gorm:"not null"`
	Type        string  `json:"type" gorm:"default:'full-time'"`
	Description string  `json:"description"`
	Capacity    int     `json:"capacity"`
	BasePrice   float64 `json:"basePrice" gorm:"type:numeric(12,2)"`
	Active      *bool   `json:"active" gorm:"default:true"`

	Tiers []SlidingScaleTier    `json:"tiers,omitempty" gorm:"foreignKey:ProgramID"`
	Rules []ProgramDiscountRule `json:"rules,omitempty" gorm:"foreignKey:ProgramID"`
}

// SlidingScaleTier is one income band of a program's sliding scale.
// Position keeps the stored order; tier selection is first-match.
type SlidingScaleTier struct {
	gorm.Model
	ProgramID    uint     `json:"programId" gorm:"index"`
	Position     int      `json:"position"`
	IncomeMin    *float64 `json:"incomeMin" gorm:"type:numeric(12,2)"`
	IncomeMax    *float64 `json:"incomeMax" gorm:"type:numeric(12,2)"`
	MonthlyPrice float64  `json:"monthlyPrice" gorm:"type:numeric(12,2)"`
}

// ProgramDiscountRule is one entry of a program's ordered discount rule
// list. Order matters: the evaluator takes the first matching rule.
type ProgramDiscountRule struct {
	gorm.Model
	ProgramID          uint     `json:"programId" gorm:"index"`
	Position           int      `json:"position"`
	Type               string   `json:"type"`
	Form               string   `json:"form" gorm:"default:'percentage'"`
	Value              float64  `json:"value" gorm:"type:numeric(12,2)"`
	Applicability      string   `json:"applicability"`
	Stackable          bool     `json:"stackable" gorm:"default:true"`
	MaxDiscountPercent *float64 `json:"maxDiscountPercent"`
	Formula            string   `json:"formula"`
	Active             *bool    `json:"active" gorm:"default:true"`
}

// Pricing converts the stored configuration into the engine's input type,
// preserving tier and rule order.
func (p Program) Pricing() tuition.Program {
	ep := tuition.Program{
		Name:      p.Name,
		Type:      tuition.ProgramType(p.Type),
		Capacity:  p.Capacity,
		BasePrice: p.BasePrice,
	}
	for _, t := range p.Tiers {
		ep.Tiers = append(ep.Tiers, tuition.Tier{
			IncomeMin:    t.IncomeMin,
			IncomeMax:    t.IncomeMax,
			MonthlyPrice: t.MonthlyPrice,
		})
	}
	for _, r := range p.Rules {
		active := r.Active == nil || *r.Active
		ep.Rules = append(ep.Rules, tuition.DiscountRule{
			Type:               tuition.RuleType(r.Type),
			Form:               tuition.DiscountForm(r.Form),
			Value:              r.Value,
			Applicability:      r.Applicability,
			Stackable:          r.Stackable,
			MaxDiscountPercent: r.MaxDiscountPercent,
			Formula:            r.Formula,
			Active:             active,
		})
	}
	return ep
}
