// Package codec turns a StateRecord into a compact token that can travel in a
// URL fragment, and back.
//
// A token is the record's JSON, compressed with raw DEFLATE and encoded as
// unpadded base64url, so it only contains [A-Za-z0-9_-].
package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"

	"madlib-maker/shared/models"
)

// MaxDecodedBytes bounds the decompressed size of a token.
const MaxDecodedBytes = 1 << 20

var (
	ErrEncode = errors.New("failed to encode state")
	ErrDecode = errors.New("failed to decode state")
)

var tokenEncoding = base64.RawURLEncoding

// Encode serializes rec into a fragment-safe token.
func Encode(rec models.StateRecord) (token string, err error) {
	defer func() {
		if r := recover(); r != nil {
			token, err = "", fmt.Errorf("%w: %v", ErrEncode, r)
		}
	}()

	raw, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("%w: marshal: %v", ErrEncode, err)
	}

	var buf bytes.Buffer
	zw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", fmt.Errorf("%w: compressor: %v", ErrEncode, err)
	}
	if _, err := zw.Write(raw); err != nil {
		return "", fmt.Errorf("%w: compress: %v", ErrEncode, err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("%w: compress: %v", ErrEncode, err)
	}
	return tokenEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode is the inverse of Encode. Unknown fields are ignored and absent
// fields stay unset. Every failure is reported as ErrDecode.
func Decode(token string) (rec models.StateRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec, err = models.StateRecord{}, fmt.Errorf("%w: %v", ErrDecode, r)
		}
	}()

	compressed, err := tokenEncoding.DecodeString(normalizeToken(token))
	if err != nil {
		return models.StateRecord{}, fmt.Errorf("%w: base64: %v", ErrDecode, err)
	}
	if len(compressed) == 0 {
		return models.StateRecord{}, fmt.Errorf("%w: empty token", ErrDecode)
	}

	zr := flate.NewReader(bytes.NewReader(compressed))
	defer zr.Close()
	raw, err := io.ReadAll(io.LimitReader(zr, MaxDecodedBytes+1))
	if err != nil {
		return models.StateRecord{}, fmt.Errorf("%w: decompress: %v", ErrDecode, err)
	}
	if len(raw) > MaxDecodedBytes {
		return models.StateRecord{}, fmt.Errorf("%w: state exceeds %d bytes", ErrDecode, MaxDecodedBytes)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return models.StateRecord{}, fmt.Errorf("%w: state is not a JSON object", ErrDecode)
	}
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return models.StateRecord{}, fmt.Errorf("%w: json: %v", ErrDecode, err)
	}
	return rec, nil
}

// normalizeToken accepts tokens that went through standard base64 tooling:
// surrounding whitespace, '+' and '/' and '=' padding.
func normalizeToken(token string) string {
	token = strings.TrimSpace(token)
	token = strings.TrimRight(token, "=")
	return strings.NewReplacer("+", "-", "/", "_").Replace(token)
}
