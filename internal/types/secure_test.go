package types

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestSecretStringRedaction(t *testing.T) {
	s := SecretString("0123456789abcdef0123456789abcdef")

	if got := fmt.Sprintf("%v", s); got != redactedPlaceholder {
		t.Errorf("fmt output = %q, want redacted", got)
	}

	data, err := json.Marshal(struct {
		Key SecretString `json:"key"`
	}{Key: s})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"key":"***REDACTED***"}` {
		t.Errorf("json = %s", data)
	}

	if s.Unmask() != "0123456789abcdef0123456789abcdef" {
		t.Error("Unmask should return the raw value")
	}
	if !s.IsSet() || SecretString("").IsSet() {
		t.Error("IsSet mismatch")
	}
}
