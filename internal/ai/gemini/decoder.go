package gemini

import (
	"context"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/utils"
)

const (
	providerName        = "gemini"
	pdfMimeType         = "application/pdf"
	defaultMaxLogLength = 200
)

//go:embed prompt.md
var transcribePrompt string

type documentGenerator interface {
	GenerateFromDocument(ctx context.Context, prompt string, data []byte, mimeType string) (string, error)
	Model() string
}

// Decoder transcribes PDF documents with Gemini. It is used as a fallback
// for files without a usable text layer.
type Decoder struct {
	generator documentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewDecoder(generator documentGenerator, log *zap.Logger, maxLogLength int) *Decoder {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Decoder{
		generator: generator,
		logger:    logger.WithCommonFields(log, providerName, generator.Model()),
		maxLogLen: maxLogLength,
	}
}

func (d *Decoder) Name() string { return providerName }

func (d *Decoder) Decode(ctx context.Context, data []byte) (string, error) {
	d.logger.Debug("gemini transcribe request", zap.Int("document_size", len(data)))

	raw, err := d.generator.GenerateFromDocument(ctx, transcribePrompt, data, pdfMimeType)
	if err != nil {
		return "", err
	}

	text := stripFences(raw)

	d.logger.Debug("gemini transcribe response",
		zap.Int("response_length", utf8.RuneCountInString(text)),
		zap.String("response_preview", utils.TruncateForLog(text, d.maxLogLen)),
	)

	return text, nil
}

func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		if idx := strings.Index(raw, "\n"); idx != -1 {
			raw = raw[idx+1:]
		} else {
			raw = strings.TrimPrefix(raw, "```")
		}
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}
