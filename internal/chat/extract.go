package chat

import (
	"errors"

	"google.golang.org/genai"
)

// Extraction failures. The messages are surfaced to API clients verbatim.
var (
	ErrNoCandidates = errors.New("No candidates returned from Gemini.")
	ErrNoText       = errors.New("No text returned from Gemini.")
	ErrNoImage      = errors.New("No image data returned from Imagen.")
)

// FirstText returns the text of the first part of the first candidate.
// A nil response or an empty candidate list yields ErrNoCandidates; a first
// candidate with no parts, or a first part without text, yields ErrNoText.
func FirstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", ErrNoCandidates
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0] == nil {
		return "", ErrNoText
	}
	if content.Parts[0].Text == "" {
		return "", ErrNoText
	}
	return content.Parts[0].Text, nil
}

// FirstInlineImage returns the first part of the first candidate that
// carries inline image bytes. Text parts before it are skipped, since
// image models often prepend a caption. Any miss yields ErrNoImage.
func FirstInlineImage(resp *genai.GenerateContentResponse) (*genai.Blob, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil, ErrNoImage
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return nil, ErrNoImage
	}
	for _, part := range content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData, nil
		}
	}
	return nil, ErrNoImage
}

// FirstGeneratedImage returns the first image of an Imagen response.
func FirstGeneratedImage(resp *genai.GenerateImagesResponse) (*genai.Image, error) {
	if resp == nil {
		return nil, ErrNoImage
	}
	for _, generated := range resp.GeneratedImages {
		if generated != nil && generated.Image != nil && len(generated.Image.ImageBytes) > 0 {
			return generated.Image, nil
		}
	}
	return nil, ErrNoImage
}
