package handler

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

const flashCookie = "storefront_flash"

// FlashStore keeps a one-shot status message in an HMAC-signed cookie
type FlashStore struct {
	key    []byte
	secure bool
}

// NewFlashStore creates a new FlashStore. An empty secret gets a random key,
// so messages only survive as long as the process.
func NewFlashStore(secret string, secure bool) (*FlashStore, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate flash key: %w", err)
		}
	}
	return &FlashStore{key: key, secure: secure}, nil
}

// Set stores msg for the next request
func (f *FlashStore) Set(w http.ResponseWriter, msg string) {
	payload := base64.RawURLEncoding.EncodeToString([]byte(msg))
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    payload + "." + f.sign(payload),
		Path:     "/",
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the pending message, if any, and clears it. Tampered or
// malformed cookies read as no message.
func (f *FlashStore) Pop(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
	})

	payload, sig, ok := strings.Cut(c.Value, ".")
	if !ok || !hmac.Equal([]byte(sig), []byte(f.sign(payload))) {
		return ""
	}

	msg, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return ""
	}
	return string(msg)
}

func (f *FlashStore) sign(payload string) string {
	mac := hmac.New(sha256.New, f.key)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
