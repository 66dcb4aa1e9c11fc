// Package extraction turns résumé documents into raw text, cleaned text and a
// structured candidate profile.
package extraction

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/candidate"
	"github.com/spigell/resume-ranker/internal/textnorm"
	"github.com/spigell/resume-ranker/internal/vocab"
)

// Extractor decodes documents with an ordered chain of decoders and builds profiles.
type Extractor struct {
	decoders []TextDecoder
	vocab    *vocab.Matchers
	logger   *zap.Logger
}

// New creates an extractor. Decoders are tried in order until one returns text.
func New(matchers *vocab.Matchers, logger *zap.Logger, decoders ...TextDecoder) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if matchers == nil {
		matchers = vocab.Default().MustCompile()
	}
	if len(decoders) == 0 {
		decoders = []TextDecoder{PDFDecoder{}}
	}
	return &Extractor{decoders: decoders, vocab: matchers, logger: logger}
}

// Extract decodes data and builds the candidate document.
// It returns ErrEmptyDocument when no decoder finds text and an *ExtractionError
// when every decoder failed.
func (e *Extractor) Extract(ctx context.Context, data []byte) (*candidate.Document, error) {
	raw, err := e.decode(ctx, data)
	if err != nil {
		return nil, err
	}
	return e.FromText(raw)
}

func (e *Extractor) decode(ctx context.Context, data []byte) (string, error) {
	var lastErr error
	failed := 0

	for _, d := range e.decoders {
		text, err := d.Decode(ctx, data)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return "", err
			}
			e.logger.Debug("decoder failed", zap.String("decoder", d.Name()), zap.Error(err))
			lastErr = &ExtractionError{Reason: d.Name() + " decoder", Err: err}
			failed++
			continue
		}

		if strings.TrimSpace(text) != "" {
			e.logger.Debug("document decoded",
				zap.String("decoder", d.Name()),
				zap.Int("text_length", len(text)),
			)
			return text, nil
		}

		e.logger.Debug("decoder returned no text", zap.String("decoder", d.Name()))
	}

	if failed == len(e.decoders) && lastErr != nil {
		return "", lastErr
	}
	return "", ErrEmptyDocument
}

// FromText builds the candidate document from already decoded text.
func (e *Extractor) FromText(raw string) (*candidate.Document, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyDocument
	}

	cleaned := textnorm.Clean(raw)

	profile := candidate.Profile{
		Experience:     textnorm.ExtractYearsOfExperience(cleaned),
		Skills:         e.vocab.Skills.Find(cleaned),
		Education:      e.education(raw),
		ExperienceText: textnorm.Clean(textnorm.ExtractSection(raw, textnorm.SectionExperience)),
		ProjectsText:   textnorm.Clean(textnorm.ExtractSection(raw, textnorm.SectionProjects)),
	}
	profile.Name, _ = textnorm.ExtractName(raw)
	profile.Email, _ = textnorm.ExtractEmail(raw)
	profile.Phone, _ = textnorm.ExtractPhone(raw)

	return &candidate.Document{
		RawText:     raw,
		CleanedText: cleaned,
		Profile:     profile,
	}, nil
}

// education returns matched credentials uppercased and deduplicated in vocabulary order.
func (e *Extractor) education(raw string) []string {
	found := e.vocab.Education.Find(raw)
	seen := make(map[string]struct{}, len(found))
	out := make([]string, 0, len(found))
	for _, kw := range found {
		up := strings.ToUpper(kw)
		if _, ok := seen[up]; ok {
			continue
		}
		seen[up] = struct{}{}
		out = append(out, up)
	}
	return out
}
