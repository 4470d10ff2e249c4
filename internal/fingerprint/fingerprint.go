// Package fingerprint derives stable memoization keys from worker entry
// functions. Two references to the same function (or to closures created at
// the same source location) yield the same key, which is what lets the
// registry collapse repeated channel construction onto one live worker.
package fingerprint

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"reflect"
	"runtime"
	"unicode"

	"github.com/google/uuid"

	"github.com/DanielRustrum/WorkerBox/core"
)

// Key returns a memoization key for fn and whether the key is stable. An
// unresolvable function identity (nil fn, or a pointer the runtime cannot
// map to a symbol) degrades to a unique throwaway key with stable == false:
// the caller proceeds without memoization rather than aborting.
func Key(fn core.WorkerFunc) (key string, stable bool) {
	if fn == nil {
		return degenerate(), false
	}

	pc := reflect.ValueOf(fn).Pointer()
	f := runtime.FuncForPC(pc)
	if f == nil {
		return degenerate(), false
	}

	file, line := f.FileLine(pc)
	ident := fmt.Sprintf("%s@%s:%d", f.Name(), file, line)
	return encode(ident), true
}

// encode produces a printable key from the identity string. ASCII identities
// use plain base64; anything else falls back to a hex digest, which is
// stable for arbitrary symbol names.
func encode(ident string) string {
	for _, r := range ident {
		if r > unicode.MaxASCII {
			sum := sha256.Sum256([]byte(ident))
			return hex.EncodeToString(sum[:])
		}
	}
	return base64.StdEncoding.EncodeToString([]byte(ident))
}

func degenerate() string {
	return "degenerate-" + uuid.NewString()
}
