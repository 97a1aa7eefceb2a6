package gemini

import "os"

// DefaultImageModel is the Gemini model used for background editing.
// Can be overridden via the GEMINI_IMAGE_MODEL environment variable.
const DefaultImageModel = "gemini-3-pro-image-preview"

// ImageModelName returns the image model to use, resolved from:
//  1. GEMINI_IMAGE_MODEL environment variable (if set)
//  2. Default: gemini-3-pro-image-preview
func ImageModelName() string {
	if env := os.Getenv("GEMINI_IMAGE_MODEL"); env != "" {
		return env
	}
	return DefaultImageModel
}
