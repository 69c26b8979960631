package crypto

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestNewSealer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{name: "missing key", key: "", wantErr: ErrMissingKey},
		{name: "invalid key length", key: "short", wantErr: ErrInvalidKey},
		{name: "raw 32 byte key", key: strings.Repeat("k", 32)},
		{name: "base64 32 byte key", key: base64.StdEncoding.EncodeToString([]byte(strings.Repeat("z", 32)))},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sealer, err := NewSealer(tt.key)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if sealer == nil {
				t.Fatal("expected sealer instance")
			}
		})
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	t.Parallel()

	sealer, err := NewSealer(strings.Repeat("k", 32))
	if err != nil {
		t.Fatalf("failed to build sealer: %v", err)
	}

	first, err := sealer.Seal([]byte(`{"paymentId":"pay_1"}`), "handoff:abc")
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	second, err := sealer.Seal([]byte(`{"paymentId":"pay_1"}`), "handoff:abc")
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if first == second {
		t.Fatal("ciphertexts should differ due to random nonce")
	}

	plaintext, err := sealer.Open(first, "handoff:abc")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if string(plaintext) != `{"paymentId":"pay_1"}` {
		t.Fatalf("unexpected plaintext: got %q", plaintext)
	}
}

func TestOpenErrors(t *testing.T) {
	t.Parallel()

	sealerA, err := NewSealer(strings.Repeat("a", 32))
	if err != nil {
		t.Fatalf("failed to build sealer A: %v", err)
	}
	sealerB, err := NewSealer(strings.Repeat("b", 32))
	if err != nil {
		t.Fatalf("failed to build sealer B: %v", err)
	}
	sealed, err := sealerA.Seal([]byte("secret"), "label")
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}

	t.Run("invalid base64", func(t *testing.T) {
		t.Parallel()
		if _, err := sealerA.Open("%%%", "label"); err == nil {
			t.Fatal("expected base64 decode error")
		}
	})

	t.Run("ciphertext too short", func(t *testing.T) {
		t.Parallel()
		encoded := base64.RawURLEncoding.EncodeToString([]byte("tiny"))
		if _, err := sealerA.Open(encoded, "label"); !errors.Is(err, ErrCiphertextTooShort) {
			t.Fatalf("expected ErrCiphertextTooShort, got %v", err)
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()
		if _, err := sealerB.Open(sealed, "label"); err == nil {
			t.Fatal("expected decrypt error with wrong key")
		}
	})

	t.Run("wrong label", func(t *testing.T) {
		t.Parallel()
		if _, err := sealerA.Open(sealed, "other"); err == nil {
			t.Fatal("expected decrypt error with wrong label")
		}
	})
}
