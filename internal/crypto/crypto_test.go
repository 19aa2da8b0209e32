package crypto

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"
)

func testKey() []byte {
	return bytes.Repeat([]byte{0x42}, 32)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := testKey()

	for _, plaintext := range []string{"a", "refresh-token-value", strings.Repeat("x", 4096)} {
		sealed, err := EncryptString(plaintext, key)
		if err != nil {
			t.Fatalf("Failed to encrypt: %v", err)
		}

		opened, err := DecryptString(sealed, key)
		if err != nil {
			t.Fatalf("Failed to decrypt: %v", err)
		}

		if opened != plaintext {
			t.Errorf("Round trip mismatch: got %q, want %q", opened, plaintext)
		}
	}
}

func TestEncryptIsNotDeterministic(t *testing.T) {
	key := testKey()

	a, err := EncryptString("secret", key)
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}
	b, err := EncryptString("secret", key)
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}

	if a == b {
		t.Error("Expected distinct payloads for repeated encryption (random nonce)")
	}
}

func TestPayloadLayout(t *testing.T) {
	plaintext := "token"

	sealed, err := EncryptString(plaintext, testKey())
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}

	payload, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		t.Fatalf("Payload is not valid base64: %v", err)
	}

	// nonce (12) | tag (16) | ciphertext, ciphertext same length as plaintext
	want := nonceSize + tagSize + len(plaintext)
	if len(payload) != want {
		t.Errorf("Payload length = %d, want %d", len(payload), want)
	}
}

func TestDecryptWrongKey(t *testing.T) {
	sealed, err := EncryptString("secret", testKey())
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}

	otherKey := bytes.Repeat([]byte{0x43}, 32)
	if _, err := DecryptString(sealed, otherKey); err == nil {
		t.Error("Expected decryption with the wrong key to fail")
	}
}

func TestDecryptRejectsTamperedPayload(t *testing.T) {
	key := testKey()

	sealed, err := EncryptString("secret", key)
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}

	payload, _ := base64.StdEncoding.DecodeString(sealed)
	payload[len(payload)-1] ^= 0x01
	tampered := base64.StdEncoding.EncodeToString(payload)

	if _, err := DecryptString(tampered, key); err == nil {
		t.Error("Expected decryption of tampered payload to fail")
	}
}

func TestDecryptRejectsShortPayload(t *testing.T) {
	short := base64.StdEncoding.EncodeToString(make([]byte, nonceSize+tagSize))
	if _, err := DecryptString(short, testKey()); err == nil {
		t.Error("Expected short payload to be rejected")
	}
}

func TestRejectsBadKeySize(t *testing.T) {
	if _, err := EncryptString("secret", []byte("short")); err == nil {
		t.Error("Expected encryption with a short key to fail")
	}
	if _, err := DecryptString("payload", []byte("short")); err == nil {
		t.Error("Expected decryption with a short key to fail")
	}
}
