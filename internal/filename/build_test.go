package filename

import (
	"testing"

	"github.com/BerylCAtieno/file-renamer-api/internal/models"
)

func strPtr(s string) *string { return &s }

func TestBuildOverride(t *testing.T) {
	p := models.FilenameProposal{
		ProposedFilename: "quarterly-budget-review",
		DocType:          models.DocTypeReport,
		PrimaryEntity:    strPtr("Acme"),
		DateISO:          strPtr("2024-01-01"),
	}

	if got, want := Build(p), Sanitize("quarterly-budget-review"); got != want {
		t.Errorf("Build = %q, want %q", got, want)
	}
}

func TestBuildOverrideSanitizes(t *testing.T) {
	p := models.FilenameProposal{ProposedFilename: "PROJ-7 Kickoff Deck"}
	if got := Build(p); got != "proj-7-kickoff-deck" {
		t.Errorf("Build = %q", got)
	}
}

func TestBuildShortNonASCIINameUsesSlots(t *testing.T) {
	tests := []struct {
		name     string
		proposed string
		want     string
	}{
		{"cjk", "会议记录", "invoice-acme-corp-2024-03-01"},
		{"accented", "réçu", "invoice-acme-corp-2024-03-01"},
		{"five characters", "été25", "invoice-acme-corp-2024-03-01"},
		{"six characters override", "réunion", "r-union"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := models.FilenameProposal{
				ProposedFilename: tt.proposed,
				DocType:          models.DocTypeInvoice,
				PrimaryEntity:    strPtr("Acme Corp"),
				DateISO:          strPtr("2024-03-01"),
			}
			if got := Build(p); got != tt.want {
				t.Errorf("Build(%q) = %q, want %q", tt.proposed, got, tt.want)
			}
		})
	}
}

func TestBuildFromSlots(t *testing.T) {
	tests := []struct {
		name string
		p    models.FilenameProposal
		want string
	}{
		{
			name: "doctype entity date",
			p: models.FilenameProposal{
				ProposedFilename: "x",
				DocType:          models.DocTypeInvoice,
				PrimaryEntity:    strPtr("Acme Corp"),
				DateISO:          strPtr("2024-03-01"),
			},
			want: "invoice-acme-corp-2024-03-01",
		},
		{
			name: "all slots in order",
			p: models.FilenameProposal{
				ProposedFilename: "abc",
				DocType:          models.DocTypeContract,
				PrimaryEntity:    strPtr("Globex"),
				SecondaryEntity:  strPtr("Initech"),
				Topic:            strPtr("Office Lease"),
				DateISO:          strPtr("2023-12-31"),
			},
			want: "contract-globex-initech-office-lease-2023-12-31",
		},
		{
			name: "other doctype omitted",
			p: models.FilenameProposal{
				ProposedFilename: "abc",
				DocType:          models.DocTypeOther,
				Topic:            strPtr("Misc"),
			},
			want: "misc",
		},
		{
			name: "empty slots skipped",
			p: models.FilenameProposal{
				ProposedFilename: "abc",
				DocType:          models.DocTypeReceipt,
				PrimaryEntity:    strPtr("!!!"),
				Topic:            strPtr("Lunch"),
			},
			want: "receipt-lunch",
		},
		{
			name: "falls back to proposed filename",
			p: models.FilenameProposal{
				ProposedFilename: "Scan",
				DocType:          models.DocTypeOther,
			},
			want: "scan",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Build(tt.p); got != tt.want {
				t.Errorf("Build = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildOverrideBoundary(t *testing.T) {
	// Exactly five characters is not long enough for the override path.
	p := models.FilenameProposal{
		ProposedFilename: "notes",
		DocType:          models.DocTypeMeetingNotes,
		Topic:            strPtr("standup"),
	}
	if got := Build(p); got != "meeting-notes-standup" {
		t.Errorf("Build = %q", got)
	}
}
