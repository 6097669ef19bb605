package render

import "context"

// Renderer turns a view model into one output format. Implementations must
// not hold on to the view model after returning.
type Renderer interface {
	Render(ctx context.Context, vm *ViewModel) ([]byte, error)
	ContentType() string
	Extension() string
}
