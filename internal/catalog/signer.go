package catalog

import (
	"crypto/md5" //nolint:gosec // the catalog mandates md5 request signatures
	"encoding/hex"
	"net/url"
	"strconv"
	"time"
)

// Signer produces the per-request credentials the catalog requires.
type Signer struct {
	PublicKey  string
	PrivateKey string
}

// Sign returns the ts, apikey and hash query parameters for a request issued at now.
//
// hash is the hex md5 digest of ts + private key + public key.
func (s Signer) Sign(now time.Time) (url.Values, error) {
	if s.PublicKey == "" || s.PrivateKey == "" {
		return nil, ErrMissingCredentials
	}
	ts := strconv.FormatInt(now.UnixMilli(), 10)
	sum := md5.Sum([]byte(ts + s.PrivateKey + s.PublicKey)) //nolint:gosec // see import
	return url.Values{
		"ts":     {ts},
		"apikey": {s.PublicKey},
		"hash":   {hex.EncodeToString(sum[:])},
	}, nil
}
