package conversation

import (
	"context"
	"fmt"

	"github.com/theIndrajeet/AskSarkar/internal/domain"
)

var relatedSuggestions = map[string][]string{
	"road": {
		"Ask about budget allocated for road maintenance",
		"Request timeline for pending repairs",
		"Get list of all complaints from your area",
	},
	"water": {
		"Ask about water quality test reports",
		"Request pipeline maintenance schedule",
		"Get details of water connection applications",
	},
	"electricity": {
		"Ask about power cut schedules",
		"Request meter reading complaints",
		"Get details of pending connections",
	},
}

// FollowUpSuggestions proposes further questions from the complaint type,
// the mentioned location and a past successful request.
func (c *Context) FollowUpSuggestions(ctx context.Context) []string {
	info := c.ExtractedInfo()
	suggestions := []string{}

	if complaint := info.String(domain.FieldComplaintType); complaint != "" {
		suggestions = append(suggestions, relatedSuggestions[complaint]...)
	}
	if location := info.String(domain.FieldLocation); location != "" {
		suggestions = append(suggestions, fmt.Sprintf("What other issues are common in %s?", location))
	}
	if q := c.memory.pickSuccessfulQuery(ctx); q != "" {
		suggestions = append(suggestions, q)
	}
	return suggestions
}
