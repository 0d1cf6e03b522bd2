package circle

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"

	"github.com/TEENet-io/escrow-go/common"
)

var ErrInvalidPublicKey = errors.New("invalid entity public key")

// entitySecretCiphertext encrypts the entity secret with Circle's entity
// public key. Circle rejects a ciphertext it has seen before, so every
// mutating request gets a fresh one.
func (c *Client) entitySecretCiphertext(ctx context.Context) (string, error) {
	secret, err := hex.DecodeString(common.Trim0xPrefix(c.cfg.EntitySecret))
	if err != nil || len(secret) != 32 {
		return "", common.NewConfigurationError("CIRCLE_ENTITY_SECRET")
	}

	pub, err := c.entityPublicKey(ctx)
	if err != nil {
		return "", err
	}

	ciphertext, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, secret, nil)
	if err != nil {
		return "", fmt.Errorf("encrypt entity secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (c *Client) entityPublicKey(ctx context.Context) (*rsa.PublicKey, error) {
	c.mu.Lock()
	pub := c.publicKey
	c.mu.Unlock()
	if pub != nil {
		return pub, nil
	}

	var data publicKeyData
	if err := c.call(ctx, http.MethodGet, publicKeyEndpoint, nil, &data); err != nil {
		return nil, fmt.Errorf("fetch entity public key: %w", err)
	}
	pub, err := parseRSAPublicKey(data.PublicKey)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.publicKey = pub
	c.mu.Unlock()
	return pub, nil
}

func parseRSAPublicKey(s string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(s))
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block", ErrInvalidPublicKey)
	}
	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA key", ErrInvalidPublicKey)
	}
	return rsaKey, nil
}
