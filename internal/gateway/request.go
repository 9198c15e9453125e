package gateway

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Step selects which provider operation a request invokes.
type Step string

const (
	StepGenerateText  Step = "generateText"
	StepGenerateImage Step = "generateImage"
	StepDescribeImage Step = "describeImage"
)

// describeImageMIMEType is the MIME type attached to every describeImage
// upload; the frontend always sends PNG.
const describeImageMIMEType = "image/png"

// Request is a validated inbound request. Exactly one of the concrete types
// below implements it, selected by the step discriminator.
type Request interface {
	Step() Step
}

// GenerateTextRequest asks for text from a system prompt and a user query.
type GenerateTextRequest struct {
	SystemPrompt string `json:"systemPrompt"`
	UserQuery    string `json:"userQuery"`
}

// Step implements Request.
func (GenerateTextRequest) Step() Step { return StepGenerateText }

// GenerateImageRequest asks for one image from a prompt.
type GenerateImageRequest struct {
	Prompt string `json:"prompt"`
}

// Step implements Request.
func (GenerateImageRequest) Step() Step { return StepGenerateImage }

// DescribeImageRequest asks for a text description of an image.
// Image holds the decoded bytes of the base64Data field.
type DescribeImageRequest struct {
	SystemPrompt string `json:"systemPrompt"`
	Base64Data   string `json:"base64Data"`

	Image []byte `json:"-"`
}

// Step implements Request.
func (DescribeImageRequest) Step() Step { return StepDescribeImage }

type envelope struct {
	Step    Step            `json:"step"`
	Payload json.RawMessage `json:"payload"`
}

// DecodeRequest parses a {step, payload} body into the Request for its step.
// An unknown step is reported before the payload is looked at.
func DecodeRequest(body []byte) (Request, *Error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &Error{Kind: KindInvalidBody, Message: msgInvalidBody, Err: err}
	}

	switch env.Step {
	case StepGenerateText:
		var req GenerateTextRequest
		if err := decodePayload(env.Payload, &req); err != nil {
			return nil, err
		}
		if req.UserQuery == "" {
			return nil, invalidPayload("userQuery is required")
		}
		return req, nil

	case StepGenerateImage:
		var req GenerateImageRequest
		if err := decodePayload(env.Payload, &req); err != nil {
			return nil, err
		}
		if req.Prompt == "" {
			return nil, invalidPayload("prompt is required")
		}
		return req, nil

	case StepDescribeImage:
		var req DescribeImageRequest
		if err := decodePayload(env.Payload, &req); err != nil {
			return nil, err
		}
		if req.SystemPrompt == "" {
			return nil, invalidPayload("systemPrompt is required")
		}
		if req.Base64Data == "" {
			return nil, invalidPayload("base64Data is required")
		}
		data, ok := decodeBase64Image(req.Base64Data)
		if !ok {
			return nil, invalidPayload("base64Data is not valid base64")
		}
		req.Image = data
		return req, nil

	default:
		return nil, &Error{Kind: KindInvalidStep, Message: msgInvalidStep}
	}
}

func decodePayload(raw json.RawMessage, v any) *Error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &Error{Kind: KindInvalidPayload, Message: "Invalid payload: payload does not match step", Err: err}
	}
	return nil
}

// decodeBase64Image accepts plain or unpadded base64, optionally carrying a
// data URL prefix such as "data:image/png;base64,".
func decodeBase64Image(s string) ([]byte, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	if data, err := base64.StdEncoding.DecodeString(s); err == nil && len(data) > 0 {
		return data, true
	}
	if data, err := base64.RawStdEncoding.DecodeString(s); err == nil && len(data) > 0 {
		return data, true
	}
	return nil, false
}

// stepOf returns the step of a body that decoded far enough to carry one.
func stepOf(body []byte) Step {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.Step
}
