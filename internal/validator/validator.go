// Package validator holds the schema rules shared by Gin's binding engine and
// the per-entity validation pass the services run before every write.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apperrors "tradebook/internal/errors"
	"tradebook/internal/models"
)

// validCurrencies contains ISO 4217 currency codes.
var validCurrencies = map[string]bool{
	"AED": true, "AFN": true, "ALL": true, "AMD": true, "ANG": true,
	"AOA": true, "ARS": true, "AUD": true, "AWG": true, "AZN": true,
	"BAM": true, "BBD": true, "BDT": true, "BGN": true, "BHD": true,
	"BIF": true, "BMD": true, "BND": true, "BOB": true, "BRL": true,
	"BSD": true, "BTN": true, "BWP": true, "BYN": true, "BZD": true,
	"CAD": true, "CDF": true, "CHF": true, "CLP": true, "CNY": true,
	"COP": true, "CRC": true, "CUP": true, "CVE": true, "CZK": true,
	"DJF": true, "DKK": true, "DOP": true, "DZD": true, "EGP": true,
	"ERN": true, "ETB": true, "EUR": true, "FJD": true, "FKP": true,
	"GBP": true, "GEL": true, "GHS": true, "GIP": true, "GMD": true,
	"GNF": true, "GTQ": true, "GYD": true, "HKD": true, "HNL": true,
	"HRK": true, "HTG": true, "HUF": true, "IDR": true, "ILS": true,
	"INR": true, "IQD": true, "IRR": true, "ISK": true, "JMD": true,
	"JOD": true, "JPY": true, "KES": true, "KGS": true, "KHR": true,
	"KMF": true, "KPW": true, "KRW": true, "KWD": true, "KYD": true,
	"KZT": true, "LAK": true, "LBP": true, "LKR": true, "LRD": true,
	"LSL": true, "LYD": true, "MAD": true, "MDL": true, "MGA": true,
	"MKD": true, "MMK": true, "MNT": true, "MOP": true, "MRU": true,
	"MUR": true, "MVR": true, "MWK": true, "MXN": true, "MYR": true,
	"MZN": true, "NAD": true, "NGN": true, "NIO": true, "NOK": true,
	"NPR": true, "NZD": true, "OMR": true, "PAB": true, "PEN": true,
	"PGK": true, "PHP": true, "PKR": true, "PLN": true, "PYG": true,
	"QAR": true, "RON": true, "RSD": true, "RUB": true, "RWF": true,
	"SAR": true, "SBD": true, "SCR": true, "SDG": true, "SEK": true,
	"SGD": true, "SHP": true, "SLE": true, "SOS": true, "SRD": true,
	"SSP": true, "STN": true, "SVC": true, "SYP": true, "SZL": true,
	"THB": true, "TJS": true, "TMT": true, "TND": true, "TOP": true,
	"TRY": true, "TTD": true, "TWD": true, "TZS": true, "UAH": true,
	"UGX": true, "USD": true, "UYU": true, "UZS": true, "VES": true,
	"VND": true, "VUV": true, "WST": true, "XAF": true, "XCD": true,
	"XOF": true, "XPF": true, "YER": true, "ZAR": true, "ZMW": true,
	"ZWL": true,
}

var rules = map[string]validator.Func{
	"iso4217":      validateISO4217,
	"asset_type":   validateAssetType,
	"trade_type":   validateTradeType,
	"trade_status": validateTradeStatus,
	"risk_profile": validateRiskProfile,
	"user_role":    validateUserRole,
}

// Register registers all custom validators with the Gin binding engine and
// makes it report JSON field names.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonName)
		for tag, fn := range rules {
			_ = v.RegisterValidation(tag, fn)
		}
	}
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

// Validator runs the schema pass over entity records. Violations are reported
// under the record's JSON field names.
type Validator struct {
	v *validator.Validate
}

// New builds an entity validator with every custom rule registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	for tag, fn := range rules {
		_ = v.RegisterValidation(tag, fn)
	}
	return &Validator{v: v}
}

// Violations returns every failed rule of record, or nil when it is valid.
func (val *Validator) Violations(record any) []apperrors.Violation {
	err := val.v.Struct(record)
	if err == nil {
		return nil
	}

	return violationsOf(err)
}

func violationsOf(err error) []apperrors.Violation {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []apperrors.Violation{{Field: "", Rule: "invalid", Message: err.Error()}}
	}

	out := make([]apperrors.Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apperrors.Violation{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: message(fe),
		})
	}
	return out
}

// Validate returns a validation AppError listing every violation, or nil.
func (val *Validator) Validate(record any) error {
	if violations := val.Violations(record); len(violations) > 0 {
		return apperrors.WithViolations(violations)
	}
	return nil
}

// BindingError converts a Gin binding failure into a validation AppError. Rule
// failures become violations; malformed bodies keep the decoder's message.
func BindingError(err error) *apperrors.AppError {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return apperrors.WithViolations(violationsOf(err))
	}
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "iso4217":
		return fmt.Sprintf("%s must be an ISO 4217 currency code", fe.Field())
	case "asset_type":
		return fmt.Sprintf("%s must be one of stock, etf, bond, crypto, mutual_fund", fe.Field())
	case "trade_type":
		return fmt.Sprintf("%s must be buy or sell", fe.Field())
	case "trade_status":
		return fmt.Sprintf("%s must be one of pending, executed, failed, cancelled", fe.Field())
	case "risk_profile":
		return fmt.Sprintf("%s must be one of conservative, moderate, aggressive", fe.Field())
	case "user_role":
		return fmt.Sprintf("%s must be one of investor, admin, analyst", fe.Field())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}

func validateISO4217(fl validator.FieldLevel) bool {
	return validCurrencies[fl.Field().String()]
}

func validateAssetType(fl validator.FieldLevel) bool {
	switch models.AssetType(fl.Field().String()) {
	case models.AssetTypeStock, models.AssetTypeETF, models.AssetTypeBond, models.AssetTypeCrypto, models.AssetTypeMutualFund:
		return true
	}
	return false
}

func validateTradeType(fl validator.FieldLevel) bool {
	switch models.TradeType(fl.Field().String()) {
	case models.TradeBuy, models.TradeSell:
		return true
	}
	return false
}

func validateTradeStatus(fl validator.FieldLevel) bool {
	switch models.TradeStatus(fl.Field().String()) {
	case models.TradePending, models.TradeExecuted, models.TradeFailed, models.TradeCancelled:
		return true
	}
	return false
}

func validateRiskProfile(fl validator.FieldLevel) bool {
	switch models.RiskProfile(fl.Field().String()) {
	case models.RiskConservative, models.RiskModerate, models.RiskAggressive:
		return true
	}
	return false
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch models.Role(fl.Field().String()) {
	case models.RoleInvestor, models.RoleAdmin, models.RoleAnalyst:
		return true
	}
	return false
}
