// Package signature implements the PalmPay callback signature scheme:
// request params are sorted by key into "k=v&..." form, MD5-hashed to an
// upper-case hex digest, and the digest is RSA-PKCS1v15-SHA1 signed.
package signature

import (
	"crypto"
	"crypto/md5"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Params holds the flat key/value payload covered by the signature.
type Params map[string]any

// CanonicalString joins non-empty params as "k=v" pairs in sorted key
// order. Nil values and empty strings are excluded, matching PalmPay's
// signing rules.
func CanonicalString(params Params) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		v := params[k]
		if v == nil {
			continue
		}
		s := stringify(v)
		if s == "" {
			continue
		}
		pairs = append(pairs, k+"="+s)
	}
	return strings.Join(pairs, "&")
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case bool:
		if t {
			return "True"
		}
		return "False"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func md5Upper(s string) string {
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(fmt.Sprintf("%x", sum))
}

// Sign produces the base64 signature of params under the PEM private key.
func Sign(params Params, privateKeyPEM string) (string, error) {
	key, err := parsePrivateKey(privateKeyPEM)
	if err != nil {
		return "", err
	}

	digest := md5Upper(CanonicalString(params))
	hashed := sha1.Sum([]byte(digest))

	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA1, hashed[:])
	if err != nil {
		return "", fmt.Errorf("sign params: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Verify checks a base64 signature over params against the PEM public key.
func Verify(params Params, publicKeyPEM string, signatureB64 string) bool {
	key, err := parsePublicKey(publicKeyPEM)
	if err != nil {
		return false
	}

	sig, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return false
	}

	digest := md5Upper(CanonicalString(params))
	hashed := sha1.Sum([]byte(digest))

	return rsa.VerifyPKCS1v15(key, crypto.SHA1, hashed[:], sig) == nil
}

// VerifyCallback validates a raw PalmPay callback body: the "sign" field is
// removed from the payload and verified over the remaining params.
func VerifyCallback(rawBody []byte, publicKeyPEM string) bool {
	var payload map[string]any
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return false
	}

	rawSign, ok := payload["sign"].(string)
	if !ok || rawSign == "" {
		return false
	}
	delete(payload, "sign")

	sign := rawSign
	if strings.Contains(rawSign, "%") {
		if decoded, err := url.QueryUnescape(rawSign); err == nil {
			sign = decoded
		}
	}

	return Verify(payload, publicKeyPEM, sign)
}

func parsePrivateKey(pemStr string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, fmt.Errorf("invalid private key PEM")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("only RSA private keys are supported")
	}
	return key, nil
}

func parsePublicKey(pemStr string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(normalizePublicKey(pemStr)))
	if block == nil {
		return nil, fmt.Errorf("invalid public key PEM")
	}

	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("only RSA public keys are supported")
	}
	return key, nil
}

// normalizePublicKey accepts bare base64 key material as PalmPay's console
// exports it and wraps it into a standard PEM envelope.
func normalizePublicKey(key string) string {
	if strings.Contains(key, "-----BEGIN") {
		return key
	}
	compact := strings.Join(strings.Fields(key), "")
	var b strings.Builder
	b.WriteString("-----BEGIN PUBLIC KEY-----\n")
	for len(compact) > 64 {
		b.WriteString(compact[:64] + "\n")
		compact = compact[64:]
	}
	b.WriteString(compact + "\n-----END PUBLIC KEY-----")
	return b.String()
}
