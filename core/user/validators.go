package user

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/CovEducation/Website-sub000/core"
)

var (
	phoneForSMSTag  = "phone_for_sms"
	phoneForSMSText = "a phone number is required to be notified by sms"

	e164Tag  = "e164"
	e164Text = "{0} must be an international phone number, e.g. +15555550123"
)

// InitValidators registers the account validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(accountStructValidation, NewMentor{}, NewParent{})
	core.RegisterCustomTranslation(validate, translator, phoneForSMSTag, phoneForSMSText)
	core.RegisterCustomTranslation(validate, translator, e164Tag, e164Text, true)
}

// accountStructValidation requires a phone number when the contact preference is sms.
func accountStructValidation(sl validator.StructLevel) {
	var phone string
	var pref core.Channel
	switch acc := sl.Current().Interface().(type) {
	case NewMentor:
		phone, pref = acc.Phone, acc.ContactPreference
	case NewParent:
		phone, pref = acc.Phone, acc.ContactPreference
	default:
		return
	}
	if pref == core.ChannelSMS && phone == "" {
		sl.ReportError(phone, "phone", "Phone", phoneForSMSTag, "")
	}
}
