package domain

// FieldKey names a request field captured from the conversation.
type FieldKey string

const (
	FieldSpecificQuestions            FieldKey = "specificQuestions"
	FieldSubjectLine                  FieldKey = "subjectLine"
	FieldTimePeriodStart              FieldKey = "timeperiodStart"
	FieldTimePeriodEnd                FieldKey = "timeperiodEnd"
	FieldPIOOffice                    FieldKey = "pioOffice"
	FieldPIOAddress                   FieldKey = "pioAddress"
	FieldApplicantName                FieldKey = "applicantName"
	FieldFatherHusbandName            FieldKey = "fatherHusbandName"
	FieldCompleteAddress              FieldKey = "completeAddress"
	FieldPermanentAddress             FieldKey = "permanentAddress"
	FieldDeliveryMethod               FieldKey = "deliveryMethod"
	FieldPostType                     FieldKey = "postType"
	FieldDeliveryAddress              FieldKey = "deliveryAddress"
	FieldAgreeToPayFees               FieldKey = "agreeToPayFees"
	FieldBPLCategory                  FieldKey = "bplCategory"
	FieldApplicationFeeDeposited      FieldKey = "applicationFeeDeposited"
	FieldInformationProvidedBefore    FieldKey = "informationProvidedBefore"
	FieldInformationPubliclyAvailable FieldKey = "informationPubliclyAvailable"
	FieldPlaceOfFiling                FieldKey = "placeOfFiling"
	FieldComplaintType                FieldKey = "complaintType"
	FieldLocation                     FieldKey = "location"
	FieldDepartment                   FieldKey = "department"
	FieldState                        FieldKey = "state"
)

// ExtractedInfo holds the request fields captured so far.
// Values are strings, booleans or string lists. Keys are never removed.
type ExtractedInfo map[FieldKey]any

// Has reports whether key holds a non-empty value.
func (e ExtractedInfo) Has(key FieldKey) bool {
	v, ok := e[key]
	if !ok || v == nil {
		return false
	}
	switch val := v.(type) {
	case string:
		return val != ""
	case []string:
		return len(val) > 0
	case []any:
		return len(val) > 0
	}
	return true
}

// String returns the string value of key, or "".
func (e ExtractedInfo) String(key FieldKey) string {
	if s, ok := e[key].(string); ok {
		return s
	}
	return ""
}

// Bool returns the boolean value of key and whether it was set.
func (e ExtractedInfo) Bool(key FieldKey) (bool, bool) {
	b, ok := e[key].(bool)
	return b, ok
}

// Strings returns the list value of key. Lists decoded from JSON arrive as []any.
func (e ExtractedInfo) Strings(key FieldKey) []string {
	switch val := e[key].(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Clone returns a shallow copy with list values copied.
func (e ExtractedInfo) Clone() ExtractedInfo {
	out := make(ExtractedInfo, len(e))
	for k, v := range e {
		if list, ok := v.([]string); ok {
			v = append([]string(nil), list...)
		}
		out[k] = v
	}
	return out
}
