package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/theIndrajeet/AskSarkar/internal/domain"
)

func fieldsToInfo(fields []Field) domain.ExtractedInfo {
	info := domain.ExtractedInfo{}
	for _, f := range fields {
		info[f.Key] = f.Value
	}
	return info
}

func TestExtractSpecificQuestions(t *testing.T) {
	info := fieldsToInfo(ExtractSpecificQuestions(
		"Please provide copies of all complaints received about road repairs. How many potholes were fixed?"))

	assert.Equal(t, []string{
		"provide copies of all complaints received about road repairs",
		"How many potholes were fixed",
	}, info.Strings(domain.FieldSpecificQuestions))

	assert.Empty(t, ExtractSpecificQuestions("what?"), "short phrases are ignored")
	assert.Empty(t, ExtractSpecificQuestions("potholes everywhere"))
}

func TestExtractSubjectLine(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"explicit subject", "Subject: Road repair records for MG Road", "Road repair records for MG Road"},
		{"information about", "I want information about water supply in Ward 5.", "water supply in Ward 5"},
		{"too short", "subject: abc", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := fieldsToInfo(ExtractSubjectLine(tt.text))
			assert.Equal(t, tt.want, info.String(domain.FieldSubjectLine))
		})
	}
}

func TestExtractTimePeriod(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		start, end string
	}{
		{"month year", "from January 2024 to December 2024", "January 2024", "December 2024"},
		{"dates", "between 01/04/2023 to 31/03/2024", "01/04/2023", "31/03/2024"},
		{"years", "2020 to 2023", "2020", "2023"},
		{"none", "last year", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := fieldsToInfo(ExtractTimePeriod(tt.text))
			assert.Equal(t, tt.start, info.String(domain.FieldTimePeriodStart))
			assert.Equal(t, tt.end, info.String(domain.FieldTimePeriodEnd))
		})
	}
}

func TestExtractPIOOfficeFirstMatchWins(t *testing.T) {
	info := fieldsToInfo(ExtractPIOOffice("Send it to the Municipal Corporation and the police"))
	assert.Equal(t, "municipal corporation", info.String(domain.FieldPIOOffice))

	info = fieldsToInfo(ExtractPIOOffice("PWD office"))
	assert.Equal(t, "pwd", info.String(domain.FieldPIOOffice))

	assert.Empty(t, ExtractPIOOffice("the ward office"))
}

func TestExtractPersonalInfo(t *testing.T) {
	t.Run("name with father", func(t *testing.T) {
		fields := ExtractPersonalInfo("My name is Ravi, father Suresh Kumar")
		info := fieldsToInfo(fields)
		assert.Equal(t, "Ravi", info.String(domain.FieldApplicantName))
		assert.Equal(t, "Suresh Kumar", info.String(domain.FieldFatherHusbandName))
		for _, f := range fields {
			assert.False(t, f.OnlyIfUnset)
		}
	})

	t.Run("name with husband", func(t *testing.T) {
		info := fieldsToInfo(ExtractPersonalInfo("Sita Devi, husband Ram Prasad"))
		assert.Equal(t, "Sita Devi", info.String(domain.FieldApplicantName))
		assert.Equal(t, "Ram Prasad", info.String(domain.FieldFatherHusbandName))
		assert.Equal(t, "Sita Devi, husband Ram Prasad", info.String(domain.FieldCompleteAddress))
	})

	t.Run("fallback name only if unset", func(t *testing.T) {
		fields := ExtractPersonalInfo("My name is Anil")
		if assert.Len(t, fields, 1) {
			assert.Equal(t, domain.FieldApplicantName, fields[0].Key)
			assert.Equal(t, "Anil", fields[0].Value)
			assert.True(t, fields[0].OnlyIfUnset)
		}
	})

	t.Run("i am", func(t *testing.T) {
		info := fieldsToInfo(ExtractPersonalInfo("I am Priya from Pune"))
		assert.Equal(t, "Priya", info.String(domain.FieldApplicantName))
	})

	t.Run("address candidate", func(t *testing.T) {
		info := fieldsToInfo(ExtractPersonalInfo("  12 MG Road, Andheri East, Mumbai  "))
		assert.Equal(t, "12 MG Road, Andheri East, Mumbai", info.String(domain.FieldCompleteAddress))
	})
}

func TestExtractDeliveryPreferences(t *testing.T) {
	info := fieldsToInfo(ExtractDeliveryPreferences("Send by speed post"))
	assert.Equal(t, "post", info.String(domain.FieldDeliveryMethod))
	assert.Equal(t, "speed", info.String(domain.FieldPostType))

	info = fieldsToInfo(ExtractDeliveryPreferences("I will collect it personally"))
	assert.Equal(t, "in_person", info.String(domain.FieldDeliveryMethod))
	assert.False(t, info.Has(domain.FieldPostType))

	info = fieldsToInfo(ExtractDeliveryPreferences("registered is fine"))
	assert.False(t, info.Has(domain.FieldDeliveryMethod))
	assert.Equal(t, "registered", info.String(domain.FieldPostType))
}

// The fee and declaration rules are keyword co-occurrence heuristics. These
// cases pin their current polarity, including the known misfires.
func TestExtractFeesAndBPL(t *testing.T) {
	tests := []struct {
		text      string
		key       domain.FieldKey
		want, set bool
	}{
		{"yes I will pay the fees", domain.FieldAgreeToPayFees, true, true},
		{"I agree to pay", domain.FieldAgreeToPayFees, true, true},
		{"no fees please", domain.FieldAgreeToPayFees, false, true},
		{"no, I don't want fees waived", domain.FieldAgreeToPayFees, false, true},
		{"fees are fine", domain.FieldAgreeToPayFees, false, false},
		{"I am BPL", domain.FieldBPLCategory, true, true},
		{"no, I am not below poverty line", domain.FieldBPLCategory, true, true},
		{"no poverty card", domain.FieldBPLCategory, false, true},
		{"yes to fees, no BPL", domain.FieldBPLCategory, true, true},
		{"fee paid online", domain.FieldApplicationFeeDeposited, true, true},
		{"will pay later", domain.FieldApplicationFeeDeposited, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := fieldsToInfo(ExtractFeesAndBPL(tt.text)).Bool(tt.key)
			assert.Equal(t, tt.set, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractDeclarations(t *testing.T) {
	tests := []struct {
		text      string
		key       domain.FieldKey
		want, set bool
	}{
		{"it was not provided before", domain.FieldInformationProvidedBefore, true, true},
		{"No, never before", domain.FieldInformationProvidedBefore, false, true},
		{"it is already available online", domain.FieldInformationPubliclyAvailable, true, true},
		{"no, it is not available", domain.FieldInformationPubliclyAvailable, false, true},
		{"not sure", domain.FieldInformationPubliclyAvailable, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := fieldsToInfo(ExtractDeclarations(tt.text)).Bool(tt.key)
			assert.Equal(t, tt.set, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractPlaceOfFiling(t *testing.T) {
	assert.Equal(t, "Pune", fieldsToInfo(ExtractPlaceOfFiling("I am filing from Pune")).String(domain.FieldPlaceOfFiling))
	assert.Equal(t, "Nagpur", fieldsToInfo(ExtractPlaceOfFiling("Nagpur district")).String(domain.FieldPlaceOfFiling))
	assert.Empty(t, ExtractPlaceOfFiling("ok"))
}

func TestExtractComplaintTypeAndLocation(t *testing.T) {
	info := fieldsToInfo(ExtractComplaintType("Pothole on my street"))
	assert.Equal(t, "road", info.String(domain.FieldComplaintType))

	info = fieldsToInfo(ExtractComplaintType("no water problem in Kothrud"))
	assert.Equal(t, "water", info.String(domain.FieldComplaintType))

	info = fieldsToInfo(ExtractLocation("no water problem in Kothrud"))
	assert.Equal(t, "Kothrud", info.String(domain.FieldLocation))
}

func TestDetectMixedLanguage(t *testing.T) {
	assert.True(t, DetectMixedLanguage("मेरा नाम"))
	assert.True(t, DetectMixedLanguage("kya haal"))
	assert.False(t, DetectMixedLanguage("Hello there"))
}
