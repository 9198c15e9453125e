package chat

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"google.golang.org/genai"
)

// wireRequest captures the parts of a generateContent body the tests check.
type wireRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text       string `json:"text"`
			InlineData *struct {
				MIMEType string `json:"mimeType"`
				Data     string `json:"data"`
			} `json:"inlineData"`
		} `json:"parts"`
	} `json:"contents"`
	SystemInstruction *struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"systemInstruction"`
	GenerationConfig *struct {
		ResponseModalities []string `json:"responseModalities"`
	} `json:"generationConfig"`
}

type fakeServer struct {
	*httptest.Server

	mu       sync.Mutex
	paths    []string
	requests []wireRequest
}

func newFakeServer(t *testing.T, status int, body string) *fakeServer {
	t.Helper()
	fs := &fakeServer{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var req wireRequest
		_ = json.Unmarshal(raw, &req)

		fs.mu.Lock()
		fs.paths = append(fs.paths, r.URL.Path)
		fs.requests = append(fs.requests, req)
		fs.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) last(t *testing.T) (string, wireRequest) {
	t.Helper()
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if len(fs.requests) == 0 {
		t.Fatal("provider was not called")
	}
	return fs.paths[len(fs.paths)-1], fs.requests[len(fs.requests)-1]
}

func newTestClient(t *testing.T, baseURL string, opts Options) *Client {
	t.Helper()
	gc, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  "test-key",
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL + "/",
		},
	})
	if err != nil {
		t.Fatalf("failed to create genai client: %v", err)
	}
	return NewClient(gc, opts)
}

func TestGenerateText(t *testing.T) {
	srv := newFakeServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"hello"}]}}]}`)
	c := newTestClient(t, srv.URL, Options{})

	text, err := c.GenerateText(context.Background(), "S", "Q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hello" {
		t.Errorf("expected hello, got %q", text)
	}

	path, req := srv.last(t)
	if !strings.Contains(path, DefaultTextModel+":generateContent") {
		t.Errorf("expected text model in path, got %s", path)
	}
	if req.SystemInstruction == nil || len(req.SystemInstruction.Parts) != 1 || req.SystemInstruction.Parts[0].Text != "S" {
		t.Errorf("expected system instruction S, got %+v", req.SystemInstruction)
	}
	if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 1 || req.Contents[0].Parts[0].Text != "Q" {
		t.Errorf("expected single user message Q, got %+v", req.Contents)
	}
	if req.Contents[0].Role != "user" {
		t.Errorf("expected user role, got %q", req.Contents[0].Role)
	}
}

func TestGenerateImage_ReturnsInlineData(t *testing.T) {
	png := []byte("\x89PNG fake")
	srv := newFakeServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"caption"},{"inlineData":{"mimeType":"image/png","data":"`+
			base64.StdEncoding.EncodeToString(png)+`"}}]}}]}`)
	c := newTestClient(t, srv.URL, Options{ImageModel: "custom-image-model"})

	img, err := c.GenerateImage(context.Background(), "P")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(img.Data) != string(png) {
		t.Errorf("unexpected image bytes %q", img.Data)
	}
	if img.MIMEType != "image/png" {
		t.Errorf("unexpected mime %q", img.MIMEType)
	}

	path, req := srv.last(t)
	if !strings.Contains(path, "custom-image-model:generateContent") {
		t.Errorf("expected configured image model in path, got %s", path)
	}
	if req.GenerationConfig == nil || len(req.GenerationConfig.ResponseModalities) != 1 ||
		req.GenerationConfig.ResponseModalities[0] != "IMAGE" {
		t.Errorf("expected IMAGE modality, got %+v", req.GenerationConfig)
	}
	if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "P" {
		t.Errorf("expected prompt as sole user message, got %+v", req.Contents)
	}
}

func TestGenerateImage_NoImagePart(t *testing.T) {
	srv := newFakeServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"I cannot draw that"}]}}]}`)
	c := newTestClient(t, srv.URL, Options{})

	_, err := c.GenerateImage(context.Background(), "P")
	if !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
}

func TestDescribeImage_SendsTwoParts(t *testing.T) {
	srv := newFakeServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"a cat"}]}}]}`)
	c := newTestClient(t, srv.URL, Options{})

	imageBytes := []byte("png-bytes")
	text, err := c.DescribeImage(context.Background(), "Describe", imageBytes, "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "a cat" {
		t.Errorf("expected 'a cat', got %q", text)
	}

	_, req := srv.last(t)
	if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 2 {
		t.Fatalf("expected one message with two parts, got %+v", req.Contents)
	}
	parts := req.Contents[0].Parts
	if parts[0].Text != "Describe" {
		t.Errorf("expected text part first, got %+v", parts[0])
	}
	if parts[1].InlineData == nil || parts[1].InlineData.MIMEType != "image/png" {
		t.Fatalf("expected inline png second, got %+v", parts[1])
	}
	if parts[1].InlineData.Data != base64.StdEncoding.EncodeToString(imageBytes) {
		t.Errorf("unexpected inline data %q", parts[1].InlineData.Data)
	}
	if req.SystemInstruction != nil {
		t.Errorf("describeImage must not send a system instruction")
	}
}

func TestGenerateText_ProviderError(t *testing.T) {
	srv := newFakeServer(t, http.StatusTooManyRequests,
		`{"error":{"code":429,"message":"Quota exceeded","status":"RESOURCE_EXHAUSTED"}}`)
	c := newTestClient(t, srv.URL, Options{})

	_, err := c.GenerateText(context.Background(), "S", "Q")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Quota exceeded") {
		t.Errorf("expected provider message in error, got %v", err)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(nil, Options{})
	opts := c.Options()
	if opts.TextModel != DefaultTextModel || opts.ImageModel != DefaultImageModel || opts.ImagenModel != DefaultImagenModel {
		t.Errorf("unexpected model defaults %+v", opts)
	}
	if opts.ImageBackend != ImageBackendContent {
		t.Errorf("expected content backend, got %q", opts.ImageBackend)
	}
	if len(opts.ImageModalities) != 1 || opts.ImageModalities[0] != "IMAGE" {
		t.Errorf("expected IMAGE modality default, got %v", opts.ImageModalities)
	}
}

func TestGenerateImage_ImagenBackend(t *testing.T) {
	png := []byte("\x89PNG imagen")
	srv := newFakeServer(t, http.StatusOK,
		`{"predictions":[{"bytesBase64Encoded":"`+base64.StdEncoding.EncodeToString(png)+`","mimeType":"image/png"}]}`)
	c := newTestClient(t, srv.URL, Options{ImageBackend: ImageBackendImagen})

	img, err := c.GenerateImage(context.Background(), "a lighthouse at dusk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(img.Data) != string(png) {
		t.Errorf("unexpected image bytes %q", img.Data)
	}
	if img.MIMEType != "image/png" {
		t.Errorf("unexpected mime %q", img.MIMEType)
	}

	path, _ := srv.last(t)
	if !strings.Contains(path, DefaultImagenModel+":predict") {
		t.Errorf("expected Imagen predict path, got %s", path)
	}
}

func TestGenerateImage_ImagenNoPredictions(t *testing.T) {
	srv := newFakeServer(t, http.StatusOK, `{"predictions":[]}`)
	c := newTestClient(t, srv.URL, Options{ImageBackend: ImageBackendImagen, ImagenModel: "custom-imagen"})

	_, err := c.GenerateImage(context.Background(), "P")
	if !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
	path, _ := srv.last(t)
	if !strings.Contains(path, "custom-imagen:predict") {
		t.Errorf("expected configured Imagen model in path, got %s", path)
	}
}
