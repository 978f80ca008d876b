package conversation

import (
	"testing"

	"github.com/theIndrajeet/AskSarkar/internal/domain"
)

func completeInfo() domain.ExtractedInfo {
	return domain.ExtractedInfo{
		domain.FieldSpecificQuestions:            []string{"How many complaints were received"},
		domain.FieldSubjectLine:                  "Road maintenance records",
		domain.FieldTimePeriodStart:              "January 2024",
		domain.FieldTimePeriodEnd:                "December 2024",
		domain.FieldPIOOffice:                    "municipal corporation",
		domain.FieldApplicantName:                "Ravi",
		domain.FieldCompleteAddress:              "12 MG Road, Pune",
		domain.FieldDeliveryMethod:               "post",
		domain.FieldAgreeToPayFees:               true,
		domain.FieldBPLCategory:                  false,
		domain.FieldInformationProvidedBefore:    false,
		domain.FieldInformationPubliclyAvailable: false,
		domain.FieldPlaceOfFiling:                "Pune",
	}
}

func TestInferStageChecklist(t *testing.T) {
	drop := func(keys ...domain.FieldKey) domain.ExtractedInfo {
		info := completeInfo()
		for _, k := range keys {
			delete(info, k)
		}
		return info
	}

	tests := []struct {
		name  string
		info  domain.ExtractedInfo
		turns int
		want  domain.Stage
	}{
		{"no turns", domain.ExtractedInfo{}, 0, domain.StageInitial},
		{"first turn", domain.ExtractedInfo{}, 1, domain.StageFrameQuestions},
		{"no questions", drop(domain.FieldSpecificQuestions), 3, domain.StageFrameQuestions},
		{"no subject", drop(domain.FieldSubjectLine), 3, domain.StageDefineScope},
		{"no period", drop(domain.FieldTimePeriodStart), 3, domain.StageDefineScope},
		{"no address", drop(domain.FieldCompleteAddress), 3, domain.StageGatherDetails},
		{"no delivery", drop(domain.FieldDeliveryMethod), 3, domain.StageDeliveryMethod},
		{"no bpl answer", drop(domain.FieldBPLCategory), 3, domain.StageFeesBPL},
		{"no declaration", drop(domain.FieldInformationPubliclyAvailable), 3, domain.StageDeclarations},
		{"no place", drop(domain.FieldPlaceOfFiling), 3, domain.StageFinalize},
		{"complete", completeInfo(), 3, domain.StageRTIReady},
		// Fees answered before identity still sits at the identity step.
		{"out of order", drop(domain.FieldApplicantName, domain.FieldPIOOffice), 3, domain.StageGatherDetails},
		{"only place", domain.ExtractedInfo{domain.FieldPlaceOfFiling: "Pune"}, 3, domain.StageFrameQuestions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferStage(tt.info, tt.turns); got != tt.want {
				t.Fatalf("InferStage() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestInferStageAcceptsDecodedLists(t *testing.T) {
	info := completeInfo()
	info[domain.FieldSpecificQuestions] = []any{"How many complaints were received"}
	if got := InferStage(info, 1); got != domain.StageRTIReady {
		t.Fatalf("InferStage() = %s, want rti_ready", got)
	}
}

func TestDeliveryAddressDefaultsToApplicant(t *testing.T) {
	info := domain.ExtractedInfo{domain.FieldPermanentAddress: "1 Main St"}
	if got := DeliveryAddress(info); got != "1 Main St" {
		t.Fatalf("DeliveryAddress() = %q", got)
	}
	info[domain.FieldDeliveryAddress] = "2 Side St"
	if got := DeliveryAddress(info); got != "2 Side St" {
		t.Fatalf("DeliveryAddress() = %q", got)
	}
}

func TestMissingFields(t *testing.T) {
	info := completeInfo()
	delete(info, domain.FieldApplicantName)
	got := MissingFields(info, domain.StageGatherDetails)
	if len(got) != 1 || got[0] != domain.FieldApplicantName {
		t.Fatalf("MissingFields() = %v", got)
	}
}
