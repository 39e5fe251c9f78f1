package llm

import "context"

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// VisionGenerator generates text from a prompt plus an inline image,
// used for photo-based recipe capture.
type VisionGenerator interface {
	GenerateFromImage(ctx context.Context, prompt, mimeType string, image []byte) (string, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
