package orders

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestReasonOptions(t *testing.T) {
	t.Parallel()

	options := reasonOptions([]string{"Changed my mind", "Other reason"}, "Other reason")
	if len(options) != 2 {
		t.Fatalf("len(options) = %d, want 2", len(options))
	}
	if options[0].Selected || !options[1].Selected {
		t.Fatalf("unexpected selection: %+v", options)
	}
}

func TestMaskPaymentID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "short value", value: "pi_1", want: "pi_1"},
		{name: "long value", value: "pi_3abcdef1234", want: "••••1234"},
		{name: "multibyte tail", value: "pi_zahlung_äöüß", want: "••••äöüß"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := MaskPaymentID(tt.value); got != tt.want {
				t.Fatalf("MaskPaymentID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCancelForm(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := CancelForm(CancelFormProps{
		OrderRef: "doc-1",
		Reasons:  []string{"Changed my mind", "Other reason"},
		Selected: "Other reason",
		Notes:    "<script>",
		Error:    "please describe your reason",
	}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`action="/orders/doc-1/cancel"`,
		`<option value="Other reason" selected>`,
		"please describe your reason",
		"&lt;script&gt;",
		`maxlength="1000"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
