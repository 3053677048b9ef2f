// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"tallybook/internal/calendar"
	"tallybook/internal/models"
	"tallybook/internal/money"
	"tallybook/internal/reports"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Configure(v)
	}
}

// Configure adds the custom tags and type functions to v.
func Configure(v *validator.Validate) {
	// Decimals validate as float64 so numeric tags like gte=0 apply to money.
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	_ = v.RegisterValidation("money", validateMoney)
	_ = v.RegisterValidation("iso_date", validateISODate)
	_ = v.RegisterValidation("category_kind", validateCategoryKind)
	_ = v.RegisterValidation("payment_method", validatePaymentMethod)
	_ = v.RegisterValidation("report_period", validateReportPeriod)
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return money.Float(d)
	}
	return nil
}

// validateMoney rejects amounts with more than two fractional digits.
func validateMoney(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.String:
		_, err := money.Parse(fl.Field().String())
		return err == nil
	case reflect.Float32, reflect.Float64:
		d := decimal.NewFromFloat(fl.Field().Float())
		return d.Equal(d.Round(money.Scale))
	}
	return false
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := calendar.Parse(fl.Field().String())
	return err == nil
}

func validateCategoryKind(fl validator.FieldLevel) bool {
	return models.CategoryKind(fl.Field().String()).Valid()
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	return models.PaymentMethod(fl.Field().String()).Valid()
}

func validateReportPeriod(fl validator.FieldLevel) bool {
	return reports.ValidPeriod(int(fl.Field().Int()))
}
