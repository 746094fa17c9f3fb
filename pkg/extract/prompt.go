package extract

import "fmt"

func extractionPrompt(transcript string) string {
	return fmt.Sprintf(`Analyze this meeting transcript and extract structured information.

TRANSCRIPT:
%s

Extract:
1. Action items: tasks someone committed to, with the owner's name as spoken
   and the deadline phrase exactly as spoken (do not convert it to a date).
2. Decisions: important choices the group made, with who made them.
3. Risks and open questions: concerns raised or questions left unanswered.

For every record include "evidence": direct quotes from the transcript
supporting it.

Answer with JSON in exactly this shape:
{
  "action_items": [
    {"description": "...", "owner_name": "...", "deadline_text": "...", "evidence": ["..."]}
  ],
  "decisions": [
    {"description": "...", "made_by": "...", "evidence": ["..."], "timestamp": ""}
  ],
  "risks": [
    {"description": "...", "category": "risk", "mentioned_by": "...", "evidence": ["..."], "timestamp": ""}
  ]
}

Use "open_question" as the category for unanswered questions. Leave
owner_name and deadline_text empty when the transcript names none. Output
only the JSON.`, transcript)
}
