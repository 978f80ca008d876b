package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/theIndrajeet/AskSarkar/internal/domain"
)

// historyWindow is the number of earlier messages quoted in the prompt.
const historyWindow = 6

// systemPrompt instructs the model on the request-building checklist and
// the reply format.
const systemPrompt = `You are Sarkar Assistant, a professional RTI expert. Help the user build a strategic Right to Information application that gets results. Prefer quality over speed.

Work through these stages in order:
1. FRAME_QUESTIONS: turn the user's problem into specific requests for records and documents, numbered, clear and focused.
2. DEFINE_SCOPE: a one-line subject and a time period with start and end dates.
3. GATHER_DETAILS: the Public Information Officer's office, the applicant's full name, father's or husband's name and permanent address.
4. DELIVERY_METHOD: by post or in person, the post type (ordinary, registered, speed) and the delivery address.
5. FEES_BPL: agreement to pay fees beyond the Rs. 10 application fee, Below Poverty Line status, whether the fee is deposited.
6. DECLARATIONS: whether this office provided the information before and whether it is publicly available.
7. FINALIZE: the city or town of filing. Then produce the complete application.

Reply with a single JSON object:
{
  "stage": "frame_questions|define_scope|gather_details|delivery_method|fees_bpl|declarations|finalize|rti_ready",
  "message": "guidance, at most 3 sentences",
  "nextQuestion": "the next question to ask",
  "extractedInfo": {"specificQuestions": [], "subjectLine": "", "timeperiodStart": "", "timeperiodEnd": "", "pioOffice": "", "applicantName": "", "fatherHusbandName": "", "permanentAddress": "", "deliveryMethod": "post|in_person", "postType": "ordinary|registered|speed", "deliveryAddress": "", "agreeToPayFees": true, "bplCategory": false, "applicationFeeDeposited": false, "informationProvidedBefore": false, "informationPubliclyAvailable": false, "placeOfFiling": ""},
  "suggestedDepartment": "department key",
  "suggestedState": "state code",
  "professionalRTI": "the complete application once every stage is done",
  "isComplete": false
}

Example: the user says "Potholes in my street for months". Do not just record the complaint. Ask which records they want, for example copies of all complaints about road maintenance in their area for a period, or the budget allocated and spent on road repairs.`

// knownFieldOrder fixes the order fields are listed in the prompt.
var knownFieldOrder = []domain.FieldKey{
	domain.FieldSpecificQuestions,
	domain.FieldSubjectLine,
	domain.FieldTimePeriodStart,
	domain.FieldTimePeriodEnd,
	domain.FieldPIOOffice,
	domain.FieldApplicantName,
	domain.FieldFatherHusbandName,
	domain.FieldPermanentAddress,
	domain.FieldCompleteAddress,
	domain.FieldDeliveryMethod,
	domain.FieldPostType,
	domain.FieldDeliveryAddress,
	domain.FieldAgreeToPayFees,
	domain.FieldBPLCategory,
	domain.FieldApplicationFeeDeposited,
	domain.FieldInformationProvidedBefore,
	domain.FieldInformationPubliclyAvailable,
	domain.FieldPlaceOfFiling,
	domain.FieldComplaintType,
	domain.FieldLocation,
}

// buildPrompt composes the per-turn prompt from the snapshot and the latest message.
func buildPrompt(snapshot domain.Snapshot, message string) string {
	var b strings.Builder

	if name := snapshot.UserProfile.Name; name != "" {
		fmt.Fprintf(&b, "USER CONTEXT: User's name is %s. ", name)
	}
	if snapshot.UserProfile.PreferredLanguage == domain.LanguageHinglish {
		b.WriteString("User prefers Hinglish (Hindi-English mix). ")
	}

	info := snapshot.Session.ExtractedInfo
	if len(info) > 0 {
		b.WriteString("\nALREADY KNOWN INFORMATION (don't ask again):\n")
		for _, key := range knownFieldOrder {
			if value, ok := formatField(info, key); ok {
				fmt.Fprintf(&b, "- %s: %s\n", key, value)
			}
		}
	}

	// The latest message is already in the transcript.
	history := snapshot.Session.Messages
	if n := len(history); n > 0 && history[n-1].Role == domain.RoleUser && history[n-1].Text == message {
		history = history[:n-1]
	}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	if len(history) > 0 {
		b.WriteString("\nCONVERSATION HISTORY:\n")
		for _, msg := range history {
			speaker := "User"
			if msg.Role == domain.RoleAssistant {
				speaker = "Assistant"
			}
			fmt.Fprintf(&b, "%s: %s\n", speaker, msg.Text)
		}
	}

	fmt.Fprintf(&b, "\nUser's latest message: %q\n\n", message)
	b.WriteString("Remember: Don't repeat questions about information you already have. Build on what the user has told you. Be contextual and caring.")
	return b.String()
}

func formatField(info domain.ExtractedInfo, key domain.FieldKey) (string, bool) {
	if b, ok := info.Bool(key); ok {
		if b {
			return "yes", true
		}
		return "no", true
	}
	if list := info.Strings(key); len(list) > 0 {
		return strings.Join(list, "; "), true
	}
	if s := info.String(key); s != "" {
		return s, true
	}
	return "", false
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// parseReply extracts the JSON reply object from generated text. Text
// without a decodable object becomes a plain message.
func parseReply(text string) domain.GenerationReply {
	if match := jsonObjectPattern.FindString(text); match != "" {
		var reply domain.GenerationReply
		if err := json.Unmarshal([]byte(match), &reply); err == nil {
			reply.Structured = true
			if !reply.Stage.Valid() {
				reply.Stage = ""
			}
			return reply
		}
	}
	return domain.GenerationReply{
		Message:      strings.TrimSpace(text),
		NextQuestion: "Could you tell me more details about your issue?",
	}
}
