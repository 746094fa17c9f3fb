package oracle

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/otherjamesbrown/minutes-cli/pkg/directory"
)

// ownerPrompt builds the owner resolution prompt: the directory listing
// plus the unresolved items, with the exact answer shape spelled out.
func ownerPrompt(people []directory.Person, items []UnresolvedOwner) (string, error) {
	var listing strings.Builder
	for _, p := range people {
		fmt.Fprintf(&listing, "- %s (%s) - %s\n", p.Name, p.Role, p.Email)
	}

	itemsJSON, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`Given this people directory and action items, match each action to the correct person.

People Directory:
%s
Unresolved Actions:
%s

For each action, determine the best matching person from the directory. Consider:
- Name variations (e.g., "Emily" matching "Emily Carter")
- Role inference (e.g., "backend work" pointing at a Backend Engineer)
- Context from evidence quotes

Respond ONLY with valid JSON:
{
  "matches": [
    {
      "item_id": "action_1",
      "matched_name": "Full Name from directory",
      "confidence": 0.95,
      "reasoning": "Brief explanation"
    }
  ]
}`, listing.String(), string(itemsJSON)), nil
}

// deadlinePrompt builds the deadline resolution prompt anchored at the
// reference date.
func deadlinePrompt(referenceDate time.Time, items []UnresolvedDeadline) (string, error) {
	itemsJSON, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`Today is %s (%s).

Convert these deadline phrases to ISO dates (YYYY-MM-DD):

%s

Rules:
- "next [day]" means the upcoming occurrence of that day
- "by [day]" usually means the next occurrence
- "in X weeks" means X*7 days from today
- "end of week" typically means Friday
- Be consistent and logical

Respond ONLY with valid JSON:
{
  "deadlines": [
    {
      "item_id": "action_1",
      "resolved_date": "2026-01-17",
      "reasoning": "Brief explanation"
    }
  ]
}`, referenceDate.Format("2006-01-02"), referenceDate.Weekday(), string(itemsJSON)), nil
}

// reviewPrompt builds the second-opinion prompt over the resolved item set.
func reviewPrompt(items []ReviewItem) (string, error) {
	itemsJSON, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`Review these action items for potential issues:

%s

Identify:
1. Ambiguous or unclear action descriptions
2. Actions that might be missing critical information
3. Potential conflicts or dependencies between actions
4. Actions that seem unrealistic given the deadline

Respond ONLY with valid JSON:
{
  "issues": [
    {
      "item_id": "action_1",
      "severity": "high|medium|low",
      "issue": "Description of the issue",
      "recommendation": "What should be done"
    }
  ]
}`, string(itemsJSON)), nil
}
