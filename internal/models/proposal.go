package models

type DocType string

const (
	DocTypeInvoice      DocType = "invoice"
	DocTypeReceipt      DocType = "receipt"
	DocTypeContract     DocType = "contract"
	DocTypeMeetingNotes DocType = "meeting-notes"
	DocTypeResume       DocType = "resume"
	DocTypePhoto        DocType = "photo"
	DocTypeScreenshot   DocType = "screenshot"
	DocTypeSlide        DocType = "slide"
	DocTypeReport       DocType = "report"
	DocTypePaper        DocType = "paper"
	DocTypeArticle      DocType = "article"
	DocTypeCode         DocType = "code"
	DocTypeAudioNotes   DocType = "audio-notes"
	DocTypeOther        DocType = "other"
)

// DocTypes is the closed enumeration, in prompt order.
var DocTypes = []DocType{
	DocTypeInvoice,
	DocTypeReceipt,
	DocTypeContract,
	DocTypeMeetingNotes,
	DocTypeResume,
	DocTypePhoto,
	DocTypeScreenshot,
	DocTypeSlide,
	DocTypeReport,
	DocTypePaper,
	DocTypeArticle,
	DocTypeCode,
	DocTypeAudioNotes,
	DocTypeOther,
}

func (d DocType) Valid() bool {
	for _, t := range DocTypes {
		if d == t {
			return true
		}
	}
	return false
}

const (
	MaxRationaleLength  = 280
	MinProposedFilename = 3
	FallbackConfidence  = 0.1
	FallbackRationale   = "Failed to generate proposal, using original name"
)

// FilenameProposal mirrors the structured output contract given to the model.
type FilenameProposal struct {
	ProposedFilename string  `json:"proposed_filename"`
	Confidence       float64 `json:"confidence"`
	DocType          DocType `json:"doctype"`
	DateISO          *string `json:"date_iso"`
	PrimaryEntity    *string `json:"primary_entity"`
	SecondaryEntity  *string `json:"secondary_entity"`
	Topic            *string `json:"topic"`
	Rationale        string  `json:"rationale"`
}
