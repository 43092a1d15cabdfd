package config

import (
	"bytes"
	"crypto/sha256"
)

// Hash fingerprints the settings that affect lint results.
// Path is not part of it, so moving the file keeps cache entries valid.
func (c *Config) Hash() [32]byte {
	var buf bytes.Buffer
	if err := Encode(&buf, c); err != nil {
		// кодировщик падает только на неподдерживаемых типах
		panic(err)
	}
	return sha256.Sum256(buf.Bytes())
}
