package conversation

import "github.com/theIndrajeet/AskSarkar/internal/domain"

type stageRequirement struct {
	stage     domain.Stage
	satisfied func(info domain.ExtractedInfo) bool
}

// stageChecklist lists each stage with the fields that complete it.
// A session sits at the first stage whose requirement is unmet.
var stageChecklist = []stageRequirement{
	{domain.StageFrameQuestions, func(info domain.ExtractedInfo) bool {
		return info.Has(domain.FieldSpecificQuestions)
	}},
	{domain.StageDefineScope, func(info domain.ExtractedInfo) bool {
		return info.Has(domain.FieldSubjectLine) && info.Has(domain.FieldTimePeriodStart)
	}},
	{domain.StageGatherDetails, func(info domain.ExtractedInfo) bool {
		return info.Has(domain.FieldPIOOffice) && info.Has(domain.FieldApplicantName) && ApplicantAddress(info) != ""
	}},
	{domain.StageDeliveryMethod, func(info domain.ExtractedInfo) bool {
		return info.Has(domain.FieldDeliveryMethod) && DeliveryAddress(info) != ""
	}},
	{domain.StageFeesBPL, func(info domain.ExtractedInfo) bool {
		_, fees := info.Bool(domain.FieldAgreeToPayFees)
		_, bpl := info.Bool(domain.FieldBPLCategory)
		return fees && bpl
	}},
	{domain.StageDeclarations, func(info domain.ExtractedInfo) bool {
		_, before := info.Bool(domain.FieldInformationProvidedBefore)
		_, public := info.Bool(domain.FieldInformationPubliclyAvailable)
		return before && public
	}},
	{domain.StageFinalize, func(info domain.ExtractedInfo) bool {
		return info.Has(domain.FieldPlaceOfFiling)
	}},
}

// InferStage returns the earliest stage whose fields are still missing.
// Fields answered out of order never move a session past an unmet stage.
func InferStage(info domain.ExtractedInfo, userTurns int) domain.Stage {
	if userTurns == 0 {
		return domain.StageInitial
	}
	for _, req := range stageChecklist {
		if !req.satisfied(info) {
			return req.stage
		}
	}
	return domain.StageRTIReady
}

// MissingFields lists the keys still needed to leave stage.
func MissingFields(info domain.ExtractedInfo, stage domain.Stage) []domain.FieldKey {
	var keys []domain.FieldKey
	need := func(ok bool, key domain.FieldKey) {
		if !ok {
			keys = append(keys, key)
		}
	}
	isSet := func(key domain.FieldKey) bool {
		_, ok := info.Bool(key)
		return ok
	}
	switch stage {
	case domain.StageInitial, domain.StageFrameQuestions:
		need(info.Has(domain.FieldSpecificQuestions), domain.FieldSpecificQuestions)
	case domain.StageDefineScope:
		need(info.Has(domain.FieldSubjectLine), domain.FieldSubjectLine)
		need(info.Has(domain.FieldTimePeriodStart), domain.FieldTimePeriodStart)
	case domain.StageGatherDetails:
		need(info.Has(domain.FieldPIOOffice), domain.FieldPIOOffice)
		need(info.Has(domain.FieldApplicantName), domain.FieldApplicantName)
		need(ApplicantAddress(info) != "", domain.FieldPermanentAddress)
	case domain.StageDeliveryMethod:
		need(info.Has(domain.FieldDeliveryMethod), domain.FieldDeliveryMethod)
		need(DeliveryAddress(info) != "", domain.FieldDeliveryAddress)
	case domain.StageFeesBPL:
		need(isSet(domain.FieldAgreeToPayFees), domain.FieldAgreeToPayFees)
		need(isSet(domain.FieldBPLCategory), domain.FieldBPLCategory)
	case domain.StageDeclarations:
		need(isSet(domain.FieldInformationProvidedBefore), domain.FieldInformationProvidedBefore)
		need(isSet(domain.FieldInformationPubliclyAvailable), domain.FieldInformationPubliclyAvailable)
	case domain.StageFinalize:
		need(info.Has(domain.FieldPlaceOfFiling), domain.FieldPlaceOfFiling)
	}
	return keys
}

// ApplicantAddress returns the permanent address, falling back to the
// address captured from free text.
func ApplicantAddress(info domain.ExtractedInfo) string {
	if addr := info.String(domain.FieldPermanentAddress); addr != "" {
		return addr
	}
	return info.String(domain.FieldCompleteAddress)
}

// DeliveryAddress returns the delivery address, defaulting to the applicant's.
func DeliveryAddress(info domain.ExtractedInfo) string {
	if addr := info.String(domain.FieldDeliveryAddress); addr != "" {
		return addr
	}
	return ApplicantAddress(info)
}
