package models

// RiskProfile describes a portfolio's declared risk appetite.
type RiskProfile string

const (
	RiskConservative RiskProfile = "conservative"
	RiskModerate     RiskProfile = "moderate"
	RiskAggressive   RiskProfile = "aggressive"
)

// Portfolio groups the trades of one owner. TotalValue is a cache written by
// revaluation and is never trusted as a source of truth.
type Portfolio struct {
	Base
	UserID            string      `json:"userId" validate:"required"`
	Name              string      `json:"name" validate:"required,max=200"`
	Description       string      `json:"description"`
	TotalValue        float64     `json:"totalValue" validate:"gte=0"`
	InitialInvestment float64     `json:"initialInvestment" validate:"gte=0"`
	Currency          string      `json:"currency" validate:"required,iso4217"`
	RiskProfile       RiskProfile `json:"riskProfile" validate:"required,risk_profile"`
	IsActive          bool        `json:"isActive"`
}

// Field implements store.Document.
func (p *Portfolio) Field(name string) (any, bool) {
	switch name {
	case "userId":
		return p.UserID, true
	case "name":
		return p.Name, true
	case "currency":
		return p.Currency, true
	case "riskProfile":
		return p.RiskProfile, true
	case "isActive":
		return p.IsActive, true
	}
	return p.baseField(name)
}

// PortfolioPatch holds the portfolio fields an update may change.
type PortfolioPatch struct {
	Name              *string      `json:"name"`
	Description       *string      `json:"description"`
	TotalValue        *float64     `json:"totalValue"`
	InitialInvestment *float64     `json:"initialInvestment"`
	Currency          *string      `json:"currency"`
	RiskProfile       *RiskProfile `json:"riskProfile"`
	IsActive          *bool        `json:"isActive"`
}

// Apply copies the set fields of the patch onto p.
func (pp PortfolioPatch) Apply(p *Portfolio) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.TotalValue != nil {
		p.TotalValue = *pp.TotalValue
	}
	if pp.InitialInvestment != nil {
		p.InitialInvestment = *pp.InitialInvestment
	}
	if pp.Currency != nil {
		p.Currency = *pp.Currency
	}
	if pp.RiskProfile != nil {
		p.RiskProfile = *pp.RiskProfile
	}
	if pp.IsActive != nil {
		p.IsActive = *pp.IsActive
	}
}
