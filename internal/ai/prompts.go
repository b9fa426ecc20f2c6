package ai

import (
	"fmt"
	"strings"
)

func parsePrompt(transcript string, departmentList []string) string {
	return fmt.Sprintf(`You convert a citizen's spoken complaint into a structured grievance.
Known departments: %s.
Respond with only a JSON object: {"department": "...", "description": "..."}.
Pick the department from the known list when possible. Rewrite the complaint
as a clear one-paragraph description in the first person.
If the transcript is not a complaint at all, respond with {"error": "reason"}.

Transcript:
%s`, strings.Join(departmentList, ", "), transcript)
}

func spamPrompt(text string) string {
	return fmt.Sprintf(`Is the following complaint text spam, gibberish, or an advertisement
rather than a genuine civic grievance? Answer with only YES or NO.

%s`, text)
}

// SolutionPrompt asks for a suggested resolution an admin may attach.
func SolutionPrompt(organization, description string) string {
	return fmt.Sprintf(`You assist the %s of a city government. Draft a short, actionable
resolution plan (3-5 steps) for the following citizen grievance:

%s`, organization, description)
}

// AnswerPrompt asks a question about one grievance. Attachment content is
// opaque and never parsed; only the filenames are given as context.
func AnswerPrompt(description string, documentNames []string, question string) string {
	docs := "none"
	if len(documentNames) > 0 {
		docs = strings.Join(documentNames, ", ")
	}
	return fmt.Sprintf(`A citizen filed this grievance:

%s

Attached documents: %s.

Answer the following question about the grievance, briefly and factually:
%s`, description, docs, question)
}
