package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const roleUser = "user"

// Options configures the models a Client calls.
type Options struct {
	// TextModel serves generateText and describeImage.
	TextModel string
	// ImageModel serves generateImage on the content backend.
	ImageModel string
	// ImagenModel serves generateImage on the imagen backend.
	ImagenModel string
	// ImageBackend selects content (default) or imagen.
	ImageBackend ImageBackend
	// ImageModalities are the response modalities requested from ImageModel.
	// Defaults to ["IMAGE"].
	ImageModalities []string
}

func (o Options) withDefaults() Options {
	if o.TextModel == "" {
		o.TextModel = DefaultTextModel
	}
	if o.ImageModel == "" {
		o.ImageModel = DefaultImageModel
	}
	if o.ImagenModel == "" {
		o.ImagenModel = DefaultImagenModel
	}
	if o.ImageBackend == "" {
		o.ImageBackend = ImageBackendContent
	}
	if len(o.ImageModalities) == 0 {
		o.ImageModalities = []string{"IMAGE"}
	}
	return o
}

// Image is a generated image.
type Image struct {
	Data     []byte
	MIMEType string
}

// Client performs the three gateway operations against a genai.Client.
type Client struct {
	genai *genai.Client
	opts  Options
}

// NewClient wraps an existing genai client. Unset options take defaults.
func NewClient(client *genai.Client, opts Options) *Client {
	return &Client{genai: client, opts: opts.withDefaults()}
}

// Options returns the effective options, defaults applied.
func (c *Client) Options() Options {
	return c.opts
}

// GenerateText sends userQuery as the only user message with systemPrompt
// as the system instruction and returns the first candidate's text.
func (c *Client) GenerateText(ctx context.Context, systemPrompt, userQuery string) (string, error) {
	config := &genai.GenerateContentConfig{}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		}
	}
	contents := []*genai.Content{{
		Role:  roleUser,
		Parts: []*genai.Part{{Text: userQuery}},
	}}

	start := time.Now()
	resp, err := c.genai.Models.GenerateContent(ctx, c.opts.TextModel, contents, config)
	if err != nil {
		log.Debug().Err(err).Str("model", c.opts.TextModel).Dur("duration", time.Since(start)).Msg("GenerateText: provider call failed")
		return "", err
	}

	text, err := FirstText(resp)
	if err != nil {
		return "", err
	}
	log.Debug().
		Str("model", c.opts.TextModel).
		Int("response_length", len(text)).
		Dur("duration", time.Since(start)).
		Msg("GenerateText: complete")
	return text, nil
}

// GenerateImage generates one image for prompt using the configured backend.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	if c.opts.ImageBackend == ImageBackendImagen {
		return c.generateImagen(ctx, prompt)
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: c.opts.ImageModalities,
	}
	contents := []*genai.Content{{
		Role:  roleUser,
		Parts: []*genai.Part{{Text: prompt}},
	}}

	start := time.Now()
	resp, err := c.genai.Models.GenerateContent(ctx, c.opts.ImageModel, contents, config)
	if err != nil {
		log.Debug().Err(err).Str("model", c.opts.ImageModel).Dur("duration", time.Since(start)).Msg("GenerateImage: provider call failed")
		return nil, err
	}

	blob, err := FirstInlineImage(resp)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("model", c.opts.ImageModel).
		Int("output_bytes", len(blob.Data)).
		Str("output_mime", blob.MIMEType).
		Dur("duration", time.Since(start)).
		Msg("GenerateImage: complete")
	return &Image{Data: blob.Data, MIMEType: blob.MIMEType}, nil
}

func (c *Client) generateImagen(ctx context.Context, prompt string) (*Image, error) {
	start := time.Now()
	resp, err := c.genai.Models.GenerateImages(ctx, c.opts.ImagenModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/png",
	})
	if err != nil {
		log.Debug().Err(err).Str("model", c.opts.ImagenModel).Dur("duration", time.Since(start)).Msg("GenerateImage: Imagen call failed")
		return nil, err
	}

	img, err := FirstGeneratedImage(resp)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("model", c.opts.ImagenModel).
		Int("output_bytes", len(img.ImageBytes)).
		Dur("duration", time.Since(start)).
		Msg("GenerateImage: Imagen complete")
	return &Image{Data: img.ImageBytes, MIMEType: img.MIMEType}, nil
}

// DescribeImage sends a single user message made of the instruction text
// followed by the inline image, and returns the first candidate's text.
func (c *Client) DescribeImage(ctx context.Context, systemPrompt string, image []byte, mimeType string) (string, error) {
	contents := []*genai.Content{{
		Role: roleUser,
		Parts: []*genai.Part{
			{Text: systemPrompt},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
		},
	}}

	start := time.Now()
	resp, err := c.genai.Models.GenerateContent(ctx, c.opts.TextModel, contents, nil)
	if err != nil {
		log.Debug().Err(err).Str("model", c.opts.TextModel).Dur("duration", time.Since(start)).Msg("DescribeImage: provider call failed")
		return "", err
	}

	text, err := FirstText(resp)
	if err != nil {
		return "", err
	}
	log.Debug().
		Str("model", c.opts.TextModel).
		Int("image_bytes", len(image)).
		Int("response_length", len(text)).
		Dur("duration", time.Since(start)).
		Msg("DescribeImage: complete")
	return text, nil
}
