// Package markup is the buffered HTML builder behind the storefront's
// hand-written templ components.
package markup

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

type Builder struct {
	strings.Builder
}

// Raw appends trusted markup.
func (b *Builder) Raw(parts ...string) {
	for _, part := range parts {
		b.WriteString(part)
	}
}

// Text appends value HTML-escaped.
func (b *Builder) Text(value string) {
	b.WriteString(templ.EscapeString(value))
}

// Component buffers fn so a failed render writes nothing.
func Component(fn func(ctx context.Context, b *Builder) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b Builder
		if err := fn(ctx, &b); err != nil {
			return err
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}
