package extract

import (
	"context"
	"fmt"
	"strings"

	genai "google.golang.org/genai"

	"github.com/andrewpaige1/mindmap-api/llm"
)

const ocrInstruction = "Transcribe all text visible in this image. " +
	"Return only the transcribed text with its original line breaks, no commentary."

// GeminiOCR recognizes text in images with a multimodal Gemini model.
type GeminiOCR struct {
	cli   *genai.Client
	model string
}

func NewGeminiOCR(cli *genai.Client, model string) *GeminiOCR {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiOCR{cli: cli, model: model}
}

func (o *GeminiOCR) Recognize(ctx context.Context, mimeType string, data []byte) (string, error) {
	resp, err := o.cli.Models.GenerateContent(ctx, o.model,
		[]*genai.Content{{
			Role: "user",
			Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
				{Text: ocrInstruction},
			},
		}},
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return strings.TrimSpace(llm.FirstText(resp)), nil
}
