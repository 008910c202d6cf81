package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// keyVersion is part of every artifact digest. Bump it when cached images
// of an unchanged source must be invalidated.
const keyVersion = "v1"

// artifactKey derives the key of one rendered image. Engine and format stay
// readable so entries can be inspected in Redis or MongoDB; the digest covers
// everything that changes the output bytes.
func artifactKey(sourceHash string, opts ArtifactKeyOpts) string {
	h := sha256.New()
	for _, part := range []string{keyVersion, opts.Engine, opts.Layout, opts.Format, sourceHash} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("artifact:%s:%s:%s", keyPart(opts.Engine), keyPart(opts.Format), hex.EncodeToString(h.Sum(nil)))
}

func keyPart(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Hash returns the hex SHA-256 digest of a DOT source.
func Hash(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}
