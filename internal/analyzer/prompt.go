package analyzer

import (
	"fmt"
	"strings"

	"github.com/BerylCAtieno/file-renamer-api/internal/models"
)

// DefaultPolicy is the naming convention given to the model unless a policy file
// replaces it.
var DefaultPolicy = []string{
	"Use lowercase kebab-case",
	"Include relevant components: doctype, entities, topic, date (if found)",
	"Keep under 120 characters",
	"Use YYYY-MM-DD format for dates unless user specifies otherwise",
}

const captionInstruction = `Describe this image in detail. Include: the type of document or image, any visible dates written exactly as they appear, any visible text, names and entities, and the main subject or topic.`

func systemPrompt() string {
	doctypes := make([]string, len(models.DocTypes))
	for i, d := range models.DocTypes {
		doctypes[i] = fmt.Sprintf("%q", d)
	}

	return fmt.Sprintf(`You are a filename generator. Analyze the provided content and metadata to create an accurate, descriptive filename.

Output STRICT JSON only matching this schema:
{
  "proposed_filename": string (no extension, at least %d characters),
  "confidence": number 0..1,
  "doctype": one of [%s],
  "date_iso": "YYYY-MM-DD" or null,
  "primary_entity": string or null,
  "secondary_entity": string or null,
  "topic": string or null,
  "rationale": string (<= 2 sentences, at most %d characters)
}

Hard constraints:
- The filename uses lowercase kebab-case with no slashes, spaces or other path-unsafe characters.
- The filename is at most 120 characters.
- Only set date_iso when a date appears in the content or the metadata hints. Never guess a date and never use placeholder years. Dates written in the content take priority over metadata hints.

If user provides specific instructions, follow them exactly - they override default policies.`,
		models.MinProposedFilename, strings.Join(doctypes, ","), models.MaxRationaleLength)
}

func userPrompt(in ProposeInput, snippet string, policy []string) string {
	var b strings.Builder

	if in.Instructions != "" {
		fmt.Fprintf(&b, "User Instructions:\n%s\n\n", in.Instructions)
		b.WriteString("Note: Put the complete filename in \"proposed_filename\" field, following the user instructions above.\n\n")
	}

	fmt.Fprintf(&b, "Original filename: %q\n", in.OriginalName)
	fmt.Fprintf(&b, "MIME: %s\n\n", in.MimeType)
	fmt.Fprintf(&b, "Content/Description:\n\"\"\"\n%s\n\"\"\"\n\n", snippet)

	hints := "none"
	if len(in.DateCandidates) > 0 {
		hints = strings.Join(in.DateCandidates, ", ")
	}
	fmt.Fprintf(&b, "Metadata date candidates: %s\n\n", hints)

	b.WriteString("Naming convention:\n")
	for _, rule := range policy {
		fmt.Fprintf(&b, "- %s\n", rule)
	}
	b.WriteString("\nReturn JSON only.")

	return b.String()
}
