package codec

import (
	"errors"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := []byte("abcdefg")
	plaintext := "This is a secret message."

	encrypted, err := Encrypt(key, plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	decrypted, err := Decrypt(key, encrypted)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if decrypted != plaintext {
		t.Fatalf("got %q, want %q", decrypted, plaintext)
	}
}

func TestDecryptWrongKeyFails(t *testing.T) {
	encrypted, err := Encrypt([]byte("right-key"), "hello")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := Decrypt([]byte("wrong-key"), encrypted); !errors.Is(err, ErrAead) {
		t.Fatalf("got err %v, want ErrAead", err)
	}
}

func TestDecryptBadFormat(t *testing.T) {
	if _, err := Decrypt([]byte("k"), "no-colon-here"); !errors.Is(err, ErrBadFormat) {
		t.Fatalf("got err %v, want ErrBadFormat", err)
	}
	if _, err := Decrypt([]byte("k"), "a:b:c"); !errors.Is(err, ErrBadFormat) {
		t.Fatalf("got err %v, want ErrBadFormat", err)
	}
}

func TestDecryptBadBase64(t *testing.T) {
	if _, err := Decrypt([]byte("k"), "not-base64!!:also-not-base64!!"); !errors.Is(err, ErrBase64) {
		t.Fatalf("got err %v, want ErrBase64", err)
	}
}

func TestKeyLongerThan32BytesTruncates(t *testing.T) {
	long := make([]byte, 64)
	for i := range long {
		long[i] = byte(i)
	}
	short := long[:32]

	encrypted, err := Encrypt(long, "payload")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	decrypted, err := Decrypt(short, encrypted)
	if err != nil {
		t.Fatalf("Decrypt with truncated-equivalent key: %v", err)
	}
	if decrypted != "payload" {
		t.Fatalf("got %q", decrypted)
	}
}

func TestTamperedCiphertextFails(t *testing.T) {
	key := []byte("key")
	encrypted, err := Encrypt(key, "payload")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	// Swap two characters in the ciphertext half to corrupt it.
	idx := len(encrypted) - 1
	tampered := []byte(encrypted)
	tampered[idx], tampered[idx-1] = tampered[idx-1], tampered[idx]
	if _, err := Decrypt(key, string(tampered)); err == nil {
		t.Fatal("expected decryption to fail on tampered ciphertext")
	}
}
