package ports

import "context"

//go:generate mockgen -destination=mocks/mock_textgen.go -package=mock_ports -source=textgen.go TextGenerator

// TextGenerator is a single-shot prompt-in/text-out model. No conversation
// state is kept between calls.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
