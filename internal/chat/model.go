package chat

// Model IDs
//
// | Model Name              | API Model ID             | Used For                         |
// |-------------------------|--------------------------|----------------------------------|
// | Gemini 2.5 Flash        | gemini-2.5-flash         | generateText, describeImage      |
// | Gemini 2.5 Pro          | gemini-2.5-pro           | higher-quality text (optional)   |
// | Gemini 2.5 Flash Image  | gemini-2.5-flash-image   | generateImage (content backend)  |
// | Imagen 3                | imagen-3.0-generate-002  | generateImage (imagen backend)   |
const (
	// ModelGemini25Flash is stable, balanced performance.
	ModelGemini25Flash = "gemini-2.5-flash"

	// ModelGemini25Pro is stable, for high-reasoning tasks.
	ModelGemini25Pro = "gemini-2.5-pro"

	// ModelGemini25FlashImage generates images through generateContent.
	ModelGemini25FlashImage = "gemini-2.5-flash-image"

	// ModelImagen3 is the dedicated Imagen text-to-image model.
	ModelImagen3 = "imagen-3.0-generate-002"
)

// DefaultRegion is the Vertex AI location used when none is configured.
const DefaultRegion = "us-central1"

// Defaults for Options.
const (
	DefaultTextModel   = ModelGemini25Flash
	DefaultImageModel  = ModelGemini25FlashImage
	DefaultImagenModel = ModelImagen3
)

// ImageBackend selects how generateImage reaches the provider.
type ImageBackend string

const (
	// ImageBackendContent calls generateContent on ImageModel with
	// ImageModalities as the requested response modalities.
	ImageBackendContent ImageBackend = "content"
	// ImageBackendImagen calls the Imagen predict endpoint on ImagenModel.
	ImageBackendImagen ImageBackend = "imagen"
)

// ParseImageBackend returns the backend named by s, defaulting to content.
func ParseImageBackend(s string) ImageBackend {
	if ImageBackend(s) == ImageBackendImagen {
		return ImageBackendImagen
	}
	return ImageBackendContent
}
