package security

import (
	"bytes"
	"encoding/base64"
	"testing"
)

func setTestKey(t *testing.T) {
	t.Helper()
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x42}, 32))
	t.Setenv("BROKER_CREDENTIALS_KEY", key)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	setTestKey(t)

	secret := "investor-password-123"

	encoded, err := EncryptString(secret)
	if err != nil {
		t.Fatalf("unexpected encrypt error: %v", err)
	}
	if encoded == secret {
		t.Fatal("ciphertext must not equal plaintext")
	}

	decoded, err := DecryptString(encoded)
	if err != nil {
		t.Fatalf("unexpected decrypt error: %v", err)
	}
	if decoded != secret {
		t.Fatalf("round trip mismatch: got %q", decoded)
	}
}

func TestEncryptStringUniqueNonce(t *testing.T) {
	setTestKey(t)

	first, err := EncryptString("same input")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := EncryptString("same input")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Fatal("two encryptions of the same input must differ")
	}
}

func TestDecryptStringRejectsGarbage(t *testing.T) {
	setTestKey(t)

	if _, err := DecryptString("not-base64!!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
	if _, err := DecryptString(base64.StdEncoding.EncodeToString([]byte("short"))); err == nil {
		t.Fatal("expected error for truncated ciphertext")
	}
}

func TestMissingKey(t *testing.T) {
	t.Setenv("BROKER_CREDENTIALS_KEY", "")

	if _, err := EncryptString("x"); err == nil {
		t.Fatal("expected error without a configured key")
	}
}

func TestInvalidKeyLength(t *testing.T) {
	t.Setenv("BROKER_CREDENTIALS_KEY", base64.StdEncoding.EncodeToString([]byte("too short")))

	if _, err := EncryptString("x"); err == nil {
		t.Fatal("expected error for a non-32-byte key")
	}
}
