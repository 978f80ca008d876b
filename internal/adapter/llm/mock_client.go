package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/theIndrajeet/AskSarkar/internal/conversation"
	"github.com/theIndrajeet/AskSarkar/internal/document"
	"github.com/theIndrajeet/AskSarkar/internal/domain"
)

type mockReply struct {
	message  string
	question string
}

var mockReplies = map[domain.Stage]mockReply{
	domain.StageFrameQuestions: {
		"Let's formulate the specific information you need. Instead of just describing problems, let's ask for specific records.",
		"What specific documents or information do you want? For example: 'Provide copies of all complaints received about [issue] from [date] to [date]' or 'Provide budget allocation and expenditure details for [service]'?",
	},
	domain.StageDefineScope: {
		"Perfect questions! Now let's define the scope of your request.",
		"Please provide: 1) A one-line subject for this request 2) Time period with start and end dates (e.g., 'January 2024 to December 2024')",
	},
	domain.StageGatherDetails: {
		"Excellent subject and timeframe! Now I need the key details.",
		"Please provide: 1) Which department/PIO should we send this to? 2) Your full name and father's/husband's name 3) Your complete permanent address",
	},
	domain.StageDeliveryMethod: {
		"Great! Now let's specify how you want to receive the information.",
		"How would you like to receive this information: 1) By post or in person? 2) If by post, which type: ordinary, registered, or speed post? 3) Delivery address",
	},
	domain.StageFeesBPL: {
		"Perfect! Now for the financial aspects.",
		"Please confirm: 1) Do you agree to pay required fees beyond ₹10 application fee? 2) Do you belong to Below Poverty Line (BPL) category? 3) Have you deposited the initial application fee?",
	},
	domain.StageDeclarations: {
		"Almost done! Two final declarations required.",
		"Please confirm: 1) Have you been provided this information before by this office? 2) Is this information already available publicly from this authority?",
	},
	domain.StageFinalize: {
		"Perfect! Last step.",
		"From which city/town are you filing this RTI?",
	},
}

const (
	mockGreeting         = "Hi! I'm your RTI expert. I'll help you craft a strategic RTI that gets results."
	mockGreetingQuestion = "What issue are you facing? I'll help you frame powerful questions that demand specific records and documents."
	mockReadyMessage     = "Your strategic RTI application is ready! This professional approach will get better results."
)

// MockClient answers offline from the captured fields. It never consumes quota.
type MockClient struct {
	now func() time.Time
}

// NewMockClient creates a new mock generator.
func NewMockClient() *MockClient {
	return &MockClient{now: time.Now}
}

// Name implements Generator.
func (m *MockClient) Name() string {
	return "mock"
}

// Remote implements Generator.
func (m *MockClient) Remote() bool {
	return false
}

// Generate implements Generator by walking the stage checklist.
func (m *MockClient) Generate(ctx context.Context, req *GenerationRequest) (*Generation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reply := m.reply(req)
	text, err := json.Marshal(reply)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mock reply: %w", err)
	}
	return &Generation{
		Text:         string(text),
		Model:        "mock",
		PromptTokens: len(req.Prompt) / 4,
		OutputTokens: len(text) / 4,
	}, nil
}

func (m *MockClient) reply(req *GenerationRequest) domain.GenerationReply {
	info := req.Info
	if info == nil {
		info = domain.ExtractedInfo{}
	}

	if req.PriorMessages == 0 {
		return domain.GenerationReply{
			Stage:         domain.StageFrameQuestions,
			Message:       mockGreeting,
			NextQuestion:  mockGreetingQuestion,
			ExtractedInfo: info,
		}
	}

	stage := conversation.InferStage(info, 1)
	if stage == domain.StageRTIReady {
		return domain.GenerationReply{
			Stage:               domain.StageRTIReady,
			Message:             mockReadyMessage,
			ExtractedInfo:       info,
			SuggestedDepartment: document.GuessDepartment(info.String(domain.FieldComplaintType)),
			SuggestedState:      document.GuessState(info.String(domain.FieldLocation)),
			ProfessionalRTI:     document.RenderRTI(info, m.now()),
			IsComplete:          true,
		}
	}

	r := mockReplies[stage]
	return domain.GenerationReply{
		Stage:         stage,
		Message:       r.message,
		NextQuestion:  r.question,
		ExtractedInfo: info,
	}
}
