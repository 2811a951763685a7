package decode

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"strings"
)

// GenerateIdentifier derives a stable identifier from a short prefix
// and the fields that make the element unique. Each field is length
// prefixed before hashing, so ("ab", "c") and ("a", "bc") differ.
// The prefix must start with a letter or an underscore.
func GenerateIdentifier(prefix string, fields ...string) string {
	h := sha256.New()
	var lenbuf [binary.MaxVarintLen64]byte
	for _, f := range append([]string{prefix}, fields...) {
		n := binary.PutUvarint(lenbuf[:], uint64(len(f)))
		h.Write(lenbuf[:n])
		h.Write([]byte(f))
	}

	encoded := base64.RawStdEncoding.EncodeToString(h.Sum(nil))
	encoded = strings.NewReplacer("+", ".", "/", "_").Replace(encoded)
	return prefix + encoded
}
