package domain

// GenerationReply is the structured answer expected from the generation service.
type GenerationReply struct {
	Stage               Stage         `json:"stage"`
	Message             string        `json:"message"`
	NextQuestion        string        `json:"nextQuestion,omitempty"`
	ExtractedInfo       ExtractedInfo `json:"extractedInfo,omitempty"`
	SuggestedDepartment string        `json:"suggestedDepartment,omitempty"`
	SuggestedState      string        `json:"suggestedState,omitempty"`
	ProfessionalRTI     string        `json:"professionalRTI,omitempty"`
	SuggestedQuery      string        `json:"suggestedQuery,omitempty"`
	IsComplete          bool          `json:"isComplete"`
	// Structured is false when the reply text carried no JSON object.
	Structured bool `json:"-"`
}

// Document returns the finalized request text, if any.
func (r *GenerationReply) Document() string {
	if r.ProfessionalRTI != "" {
		return r.ProfessionalRTI
	}
	return r.SuggestedQuery
}
