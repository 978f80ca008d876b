// Package document renders the final RTI application and the routing
// guesses that accompany it.
package document

import (
	"bytes"
	"strings"
	"text/template"
	"time"

	"github.com/theIndrajeet/AskSarkar/internal/conversation"
	"github.com/theIndrajeet/AskSarkar/internal/domain"
)

// DateLayout matches the Indian day/month/year convention.
const DateLayout = "2/1/2006"

const rtiTemplate = `APPLICATION UNDER RIGHT TO INFORMATION ACT, 2005
(FORM-A)

To,
Public Information Officer
{{or .PIOOffice "[Department Name]"}}
{{or .PIOAddress "[Department Address]"}}

Date: {{.Date}}
Place: {{or .Place "[Place of Filing]"}}

Subject: {{or .Subject "Information Request"}}

Respected Sir/Madam,

1. APPLICANT DETAILS:
Name: {{or .Name "To be filled"}}
Father's/Husband's Name: {{or .Relative "To be filled"}}
Address: {{or .Address "To be filled"}}

2. INFORMATION SOUGHT:
Subject Matter: {{or .Subject "Information Request"}}
Time Period: {{or .PeriodStart "[Start Date]"}} to {{or .PeriodEnd "[End Date]"}}

Specific details of information required:
{{- if .Questions}}
{{- range $i, $q := .Questions}}
{{inc $i}}. {{$q}}
{{- end}}
{{- else}}
Please provide the requested information.
{{- end}}

3. MODE OF DELIVERY:
Information to be delivered: {{if .ByPost}}By Post{{else}}In Person{{end}}
{{- if .ByPost}}
Post Type: {{.PostType}}
{{- end}}
Delivery Address: {{or .DeliveryAddress "To be filled"}}

4. FEE DETAILS:
Application fee of Rs. 10/-
{{if .AgreeToPay}}I agree to pay the required fees beyond the initial application fee.{{else}}I will pay only the initial application fee.{{end}}
{{if .BPL}}I belong to Below Poverty Line (BPL) category.{{else}}I do not belong to BPL category.{{end}}
{{if .FeeDeposited}}Payment Details: Fee deposited as per rules{{else}}Fee to be deposited separately.{{end}}

5. DECLARATIONS:
- Information not provided before: {{yesNo .NotProvidedBefore}}
- Information not publicly available: {{yesNo .NotPublic}}

I request you to provide the above information within the stipulated time frame as per the RTI Act 2005.

Thank you.

Yours faithfully,
{{or .Name "[Your Name]"}}
(Signature)`

var rti = template.Must(template.New("rti").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"yesNo": func(b bool) string {
		if b {
			return "Yes"
		}
		return "No"
	},
}).Parse(rtiTemplate))

type rtiData struct {
	PIOOffice         string
	PIOAddress        string
	Date              string
	Place             string
	Subject           string
	Name              string
	Relative          string
	Address           string
	PeriodStart       string
	PeriodEnd         string
	Questions         []string
	ByPost            bool
	PostType          string
	DeliveryAddress   string
	AgreeToPay        bool
	BPL               bool
	FeeDeposited      bool
	NotProvidedBefore bool
	NotPublic         bool
}

// RenderRTI renders the Form-A application from the captured fields.
// Missing fields are rendered as placeholders.
func RenderRTI(info domain.ExtractedInfo, now time.Time) string {
	agree, _ := info.Bool(domain.FieldAgreeToPayFees)
	bpl, _ := info.Bool(domain.FieldBPLCategory)
	deposited, _ := info.Bool(domain.FieldApplicationFeeDeposited)
	providedBefore, providedSet := info.Bool(domain.FieldInformationProvidedBefore)
	public, publicSet := info.Bool(domain.FieldInformationPubliclyAvailable)

	data := rtiData{
		PIOOffice:         info.String(domain.FieldPIOOffice),
		PIOAddress:        info.String(domain.FieldPIOAddress),
		Date:              now.Format(DateLayout),
		Place:             info.String(domain.FieldPlaceOfFiling),
		Subject:           info.String(domain.FieldSubjectLine),
		Name:              info.String(domain.FieldApplicantName),
		Relative:          info.String(domain.FieldFatherHusbandName),
		Address:           conversation.ApplicantAddress(info),
		PeriodStart:       info.String(domain.FieldTimePeriodStart),
		PeriodEnd:         info.String(domain.FieldTimePeriodEnd),
		Questions:         info.Strings(domain.FieldSpecificQuestions),
		ByPost:            info.String(domain.FieldDeliveryMethod) == string(domain.DeliveryPost),
		PostType:          postTypeLabel(domain.PostType(info.String(domain.FieldPostType))),
		DeliveryAddress:   conversation.DeliveryAddress(info),
		AgreeToPay:        agree,
		BPL:               bpl,
		FeeDeposited:      deposited,
		NotProvidedBefore: providedSet && !providedBefore,
		NotPublic:         publicSet && !public,
	}

	var buf bytes.Buffer
	// The template is fixed and its data is plain strings; execution cannot fail.
	_ = rti.Execute(&buf, data)
	return buf.String()
}

func postTypeLabel(t domain.PostType) string {
	switch t {
	case domain.PostSpeed:
		return "Speed Post"
	case domain.PostRegistered:
		return "Registered Post"
	}
	return "Ordinary Post"
}

var departments = map[string]string{
	"road":        "municipality",
	"water":       "municipality",
	"electricity": "electricity",
	"power":       "electricity",
	"garbage":     "municipality",
	"documents":   "revenue",
	"pension":     "revenue",
	"health":      "health",
	"education":   "education",
	"police":      "police",
}

// GuessDepartment maps a complaint type to a department key.
func GuessDepartment(complaintType string) string {
	if dept, ok := departments[strings.ToLower(complaintType)]; ok {
		return dept
	}
	return "municipality"
}

// DefaultState is used when no known city is mentioned.
const DefaultState = "MH"

var stateCities = []struct {
	code   string
	cities []string
}{
	{"MH", []string{"mumbai", "pune", "nashik"}},
	{"DL", []string{"delhi", "gurgaon", "noida"}},
	{"KA", []string{"bangalore", "mysore"}},
	{"TN", []string{"chennai", "coimbatore"}},
	{"BR", []string{"patna", "bihar", "gaya", "muzaffarpur"}},
	{"UP", []string{"lucknow", "kanpur", "agra", "varanasi"}},
}

var stateNames = map[string]string{
	"MH": "Maharashtra",
	"DL": "Delhi",
	"KA": "Karnataka",
	"TN": "Tamil Nadu",
	"BR": "Bihar",
	"UP": "Uttar Pradesh",
}

// GuessState maps a free-text location to a state code.
func GuessState(location string) string {
	lower := strings.ToLower(location)
	if lower == "" {
		return DefaultState
	}
	for _, s := range stateCities {
		for _, city := range s.cities {
			if strings.Contains(lower, city) {
				return s.code
			}
		}
	}
	return DefaultState
}

// StateName returns the display name for a state code.
func StateName(code string) string {
	if name, ok := stateNames[strings.ToUpper(code)]; ok {
		return name
	}
	return stateNames[DefaultState]
}
