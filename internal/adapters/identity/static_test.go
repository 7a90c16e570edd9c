package identity

import (
	"context"
	"testing"
)

func TestStaticVerifier(t *testing.T) {
	v := NewStaticVerifier(map[string]string{"secret-token": "alice"})

	t.Run("known token", func(t *testing.T) {
		user, err := v.Verify(context.Background(), "secret-token")
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if user != "alice" {
			t.Errorf("Verify() user = %v, want alice", user)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := v.Verify(context.Background(), "wrong")
		if err != ErrUnknownToken {
			t.Errorf("Verify() error = %v, want ErrUnknownToken", err)
		}
	})
}
