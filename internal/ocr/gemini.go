package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ticketOCRPrompt asks the model for a verbatim transcription. Field
// extraction stays on our side so the pattern table remains the single
// source of truth for what a ticket must contain.
const ticketOCRPrompt = `You are reading a photo or screenshot of a rail ticket or a train delay notification. Transcribe every piece of text you can read, line by line, exactly as printed. Keep labels such as "Von:", "Nach:", "Datum:", train numbers and times on their own lines where the layout shows them that way. Return only the transcribed text, with no commentary and no markdown.`

// Gemini implements Recognizer using the Google Gemini vision API.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a Gemini-backed Recognizer.
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

// RecognizeText sends the normalized ticket image to Gemini and returns
// the transcription.
func (g *Gemini) RecognizeText(imageData []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pngData, _, err := normalizeImage(imageData, contentType)
	if err != nil {
		return "", err
	}

	// genai.ImageData takes the format suffix, not the MIME type;
	// normalizeImage guarantees PNG.
	parts := []genai.Part{
		genai.ImageData("png", pngData),
		genai.Text(ticketOCRPrompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", &ServiceError{Backend: "gemini", Err: err}
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &ServiceError{Backend: "gemini", Err: fmt.Errorf("empty response")}
	}

	var transcript strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			transcript.WriteString(string(text))
		}
	}

	text := strings.TrimSpace(transcript.String())
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text), nil
}

// Close closes the Gemini client.
func (g *Gemini) Close() error {
	return g.client.Close()
}
