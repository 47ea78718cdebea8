package filename

import (
	"strings"
	"unicode/utf8"

	"github.com/BerylCAtieno/file-renamer-api/internal/models"
)

// overrideMinLength is the proposed_filename length, in characters, above which the
// model's own name is trusted as-is. Custom formats requested in user instructions
// arrive this way.
const overrideMinLength = 5

// Build assembles an extension-free filename from a proposal.
func Build(p models.FilenameProposal) string {
	if utf8.RuneCountInString(p.ProposedFilename) > overrideMinLength {
		return Sanitize(p.ProposedFilename)
	}

	parts := make([]string, 0, 5)
	if p.DocType != "" && p.DocType != models.DocTypeOther {
		parts = append(parts, string(p.DocType))
	}
	for _, slot := range []*string{p.PrimaryEntity, p.SecondaryEntity, p.Topic} {
		if slot == nil {
			continue
		}
		if s := Sanitize(*slot); s != "" {
			parts = append(parts, s)
		}
	}
	if p.DateISO != nil && *p.DateISO != "" {
		parts = append(parts, *p.DateISO)
	}

	if combined := Sanitize(strings.Join(parts, "-")); combined != "" {
		return combined
	}
	return Sanitize(p.ProposedFilename)
}
