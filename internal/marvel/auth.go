package marvel

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"time"
)

// Sign returns the request digest the upstream expects:
// hex(md5(ts + privateKey + publicKey)).
//
// The digest is bound to ts, so it must be recomputed for every call.
func Sign(ts, privateKey, publicKey string) string {
	sum := md5.Sum([]byte(ts + privateKey + publicKey))
	return hex.EncodeToString(sum[:])
}

// authParams builds the ts/apikey/hash triple for a call issued at now.
func authParams(now time.Time, publicKey, privateKey string) map[string]string {
	ts := strconv.FormatInt(now.Unix(), 10)
	return map[string]string{
		"ts":     ts,
		"apikey": publicKey,
		"hash":   Sign(ts, privateKey, publicKey),
	}
}
