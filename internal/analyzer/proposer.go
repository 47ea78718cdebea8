package analyzer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/BerylCAtieno/file-renamer-api/internal/filename"
	"github.com/BerylCAtieno/file-renamer-api/internal/models"
	"github.com/BerylCAtieno/file-renamer-api/internal/utils"
)

// SnippetTokenBudget bounds the snippet placed in the prompt.
const SnippetTokenBudget = 500

var (
	proposalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fr_proposals_total",
			Help: "Filename proposals by outcome.",
		},
		[]string{"outcome"},
	)
	proposalDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fr_proposal_duration_seconds",
		Help:    "Time spent generating one proposal, including fallbacks.",
		Buckets: prometheus.DefBuckets,
	})
	datesRemovedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fr_uncorroborated_dates_total",
		Help: "Proposed dates dropped for lack of evidence in the content.",
	})
)

type ProposeInput struct {
	OriginalName   string
	MimeType       string
	Snippet        string
	DateCandidates []string
	Instructions   string
}

type ProposerConfig struct {
	// Timeout bounds each model call. Zero means no limit beyond ctx.
	Timeout time.Duration
	// Policy replaces DefaultPolicy when non-empty.
	Policy []string
	// DefaultInstructions apply when a request carries none.
	DefaultInstructions string
}

// Proposer asks the model for a filename proposal. It is stateless and makes a single
// attempt per call.
type Proposer struct {
	model  Model
	logger *utils.Logger
	cfg    ProposerConfig
}

func NewProposer(model Model, logger *utils.Logger, cfg ProposerConfig) *Proposer {
	if len(cfg.Policy) == 0 {
		cfg.Policy = DefaultPolicy
	}
	return &Proposer{model: model, logger: logger, cfg: cfg}
}

// Propose never fails: any model, parse or validation error yields
// FallbackProposal(in.OriginalName).
func (p *Proposer) Propose(ctx context.Context, in ProposeInput) models.FilenameProposal {
	start := time.Now()
	defer func() { proposalDuration.Observe(time.Since(start).Seconds()) }()

	if in.Instructions == "" {
		in.Instructions = p.cfg.DefaultInstructions
	}
	snippet := filename.TruncateToTokens(in.Snippet, SnippetTokenBudget)

	callCtx := ctx
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	raw, err := p.model.Generate(callCtx, systemPrompt(), userPrompt(in, snippet, p.cfg.Policy))
	if err != nil {
		outcome := "model_error"
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
		}
		return p.fallback(in, outcome, err)
	}
	if strings.TrimSpace(raw) == "" {
		return p.fallback(in, "empty_response", errors.New("empty model response"))
	}

	proposal, err := ParseProposal(raw)
	if err != nil {
		p.logger.Debug("Rejected model output", "filename", in.OriginalName, "raw", filename.TruncateRunes(raw, 500))
		return p.fallback(in, "invalid", err)
	}

	// The original name often carries camera or scanner timestamps; it is not content.
	evidence := strings.ReplaceAll(snippet, in.OriginalName, "") + "\n" + in.Instructions
	checked := CorroborateDate(proposal, evidence)
	if proposal.DateISO != nil && checked.DateISO == nil {
		datesRemovedTotal.Inc()
		p.logger.Info("Dropped uncorroborated date",
			"filename", in.OriginalName,
			"date_iso", *proposal.DateISO)
	}

	proposalsTotal.WithLabelValues("ok").Inc()
	return checked
}

func (p *Proposer) fallback(in ProposeInput, outcome string, err error) models.FilenameProposal {
	proposalsTotal.WithLabelValues(outcome).Inc()
	p.logger.Warn("Proposal failed, using fallback",
		"filename", in.OriginalName,
		"outcome", outcome,
		"error", err)
	return FallbackProposal(in.OriginalName)
}

// FallbackProposal is the fixed low-confidence proposal that keeps the original name.
func FallbackProposal(originalName string) models.FilenameProposal {
	return models.FilenameProposal{
		ProposedFilename: filename.StripExtension(originalName),
		Confidence:       models.FallbackConfidence,
		DocType:          models.DocTypeOther,
		Rationale:        models.FallbackRationale,
	}
}
