package delivery

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/satellite/internal/codec"
	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/server/models"
	"github.com/zeebo/blake3"
)

// StreamingToken resumes the delivery of an encoding at chunk Index.
type StreamingToken struct {
	Collection  string
	FullPath    string
	AccessToken string
	Encoding    string
	Index       int
	Sha256      [32]byte
	// Layout fingerprints the chunk keys and lengths of the encoding, so a
	// recommit of the same bytes still invalidates the token.
	Layout [32]byte
	// Headers fingerprints the asset headers the stream started with.
	Headers [32]byte
}

type sealedToken struct {
	Payload []byte
	MAC     []byte
}

// tokenKeyDomain separates the token key from other uses of the secret.
const tokenKeyDomain = "satellite streaming token v1\x00"

// Sealer signs and verifies streaming tokens with a keyed BLAKE3 MAC.
type Sealer struct {
	key [32]byte
}

// NewSealer derives the MAC key from secret.
func NewSealer(secret []byte) *Sealer {
	return &Sealer{key: blake3.Sum256(append([]byte(tokenKeyDomain), secret...))}
}

func (s *Sealer) mac(payload []byte) []byte {
	h, err := blake3.NewKeyed(s.key[:])
	if err != nil {
		panic("delivery: keyed BLAKE3 initialization failed: " + err.Error())
	}
	_, _ = h.Write(payload)
	return h.Sum(nil)
}

// Seal encodes t as an opaque URL safe string.
func (s *Sealer) Seal(t StreamingToken) (string, error) {
	payload, err := codec.Marshal(t)
	if err != nil {
		return "", err
	}
	b, err := codec.Marshal(sealedToken{Payload: payload, MAC: s.mac(payload)})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Open verifies and decodes a sealed token.
func (s *Sealer) Open(raw string) (StreamingToken, error) {
	var t StreamingToken
	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return t, fmt.Errorf("malformed streaming token: %w", common.ErrInvalidInput)
	}
	var sealed sealedToken
	if err := codec.Unmarshal(b, &sealed); err != nil {
		return t, fmt.Errorf("malformed streaming token: %w", common.ErrInvalidInput)
	}
	if subtle.ConstantTimeCompare(sealed.MAC, s.mac(sealed.Payload)) != 1 {
		return t, fmt.Errorf("streaming token signature mismatch: %w", common.ErrInvalidInput)
	}
	if err := codec.Unmarshal(sealed.Payload, &t); err != nil {
		return t, fmt.Errorf("malformed streaming token: %w", common.ErrInvalidInput)
	}
	return t, nil
}

// HeadersFingerprint hashes headers independently of their order and of
// the case of their names.
func HeadersFingerprint(headers []models.HeaderField) [32]byte {
	lines := make([]string, 0, len(headers))
	for _, h := range headers {
		lines = append(lines, strings.ToLower(h.Name)+"\x00"+h.Value)
	}
	sort.Strings(lines)
	return blake3.Sum256([]byte(strings.Join(lines, "\n")))
}

// LayoutFingerprint hashes the chunk keys and lengths of enc in order.
func LayoutFingerprint(enc models.AssetEncoding) [32]byte {
	h := blake3.New()
	for i, key := range enc.ContentChunks {
		var n uint64
		if i < len(enc.ChunkLengths) {
			n = enc.ChunkLengths[i]
		}
		fmt.Fprintf(h, "%s\x00%d\n", key, n)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
