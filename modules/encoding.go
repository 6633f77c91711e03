package modules

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/kristofer/hookvm/internal/value"
)

// encodingModule widens original_source/core/encoding.c's
// base32/base58/base64/ascii85 codec pair down to the subset the
// standard library covers directly (base64, hex) plus two collaborators
// the original leaves to separate extensions: encoding/json for
// structured interchange, and x/crypto/chacha20poly1305 for the AEAD
// seal/open pair a scripting embedder typically wants next to plain
// codecs (SPEC_FULL.md's domain-stack wiring for this module).
func encodingModule() value.Value {
	return namespace([]entry{
		fn("base64_encode", 1, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			s, err := stringArg("encoding.base64_encode", args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			return str(base64.StdEncoding.EncodeToString([]byte(s))), value.StatusOK, nil
		}),
		fn("base64_decode", 1, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			s, err := stringArg("encoding.base64_decode", args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			out, derr := base64.StdEncoding.DecodeString(s)
			if derr != nil {
				return value.Nil, value.StatusError, value.Errf(value.ErrSerialization, "encoding.base64_decode: %v", derr)
			}
			return bytesVal(out), value.StatusOK, nil
		}),
		fn("hex_encode", 1, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			s, err := stringArg("encoding.hex_encode", args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			return str(hex.EncodeToString([]byte(s))), value.StatusOK, nil
		}),
		fn("hex_decode", 1, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			s, err := stringArg("encoding.hex_decode", args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			out, derr := hex.DecodeString(s)
			if derr != nil {
				return value.Nil, value.StatusError, value.Errf(value.ErrSerialization, "encoding.hex_decode: %v", derr)
			}
			return bytesVal(out), value.StatusOK, nil
		}),
		fn("json_encode", 1, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			if len(args) < 1 {
				return value.Nil, value.StatusError, arityError("encoding.json_encode", 1, len(args))
			}
			goVal, err := toJSON(args[0])
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			out, merr := json.Marshal(goVal)
			if merr != nil {
				return value.Nil, value.StatusError, value.Errf(value.ErrSerialization, "encoding.json_encode: %v", merr)
			}
			return str(string(out)), value.StatusOK, nil
		}),
		fn("json_decode", 1, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			s, err := stringArg("encoding.json_decode", args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			var goVal any
			if uerr := json.Unmarshal([]byte(s), &goVal); uerr != nil {
				return value.Nil, value.StatusError, value.Errf(value.ErrSerialization, "encoding.json_decode: %v", uerr)
			}
			return fromJSON(goVal), value.StatusOK, nil
		}),
		fn("seal", 2, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			key, err := stringArg("encoding.seal", args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			plaintext, err := stringArg("encoding.seal", args, 1)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			aead, aerr := chacha20poly1305.NewX([]byte(key))
			if aerr != nil {
				return value.Nil, value.StatusError, value.Errf(value.ErrType, "encoding.seal: %v", aerr)
			}
			nonce := make([]byte, chacha20poly1305.NonceSizeX)
			if _, rerr := rand.Read(nonce); rerr != nil {
				return value.Nil, value.StatusError, value.Errf(value.ErrSerialization, "encoding.seal: %v", rerr)
			}
			sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
			return bytesVal(sealed), value.StatusOK, nil
		}),
		fn("open", 2, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			key, err := stringArg("encoding.open", args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			sealed, err := stringArg("encoding.open", args, 1)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			aead, aerr := chacha20poly1305.NewX([]byte(key))
			if aerr != nil {
				return value.Nil, value.StatusError, value.Errf(value.ErrType, "encoding.open: %v", aerr)
			}
			raw := []byte(sealed)
			if len(raw) < chacha20poly1305.NonceSizeX {
				return value.Nil, value.StatusError, value.Errf(value.ErrSerialization, "encoding.open: sealed value too short")
			}
			nonce, ciphertext := raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:]
			plain, derr := aead.Open(nil, nonce, ciphertext, nil)
			if derr != nil {
				return value.Nil, value.StatusError, value.Errf(value.ErrSerialization, "encoding.open: %v", derr)
			}
			return bytesVal(plain), value.StatusOK, nil
		}),
	})
}

// toJSON converts a hookvm value to the plain Go shape encoding/json
// marshals, recursing through arrays; instances and structs fall
// outside json_encode's contract (mirroring the original's codecs,
// which only ever operate on strings/arrays of strings).
func toJSON(v value.Value) (any, error) {
	switch v.Type() {
	case value.TypeNil:
		return nil, nil
	case value.TypeBool:
		return v.AsBool(), nil
	case value.TypeNumber:
		return v.AsNumber(), nil
	case value.TypeString:
		return v.AsString().String(), nil
	case value.TypeArray:
		arr := v.AsArray()
		out := make([]any, arr.Len())
		for i, e := range arr.Elements() {
			goVal, err := toJSON(e)
			if err != nil {
				return nil, err
			}
			out[i] = goVal
		}
		return out, nil
	default:
		return nil, value.Errf(value.ErrType, "encoding.json_encode: value of type %s is not JSON-representable", v.TypeName())
	}
}

// fromJSON is toJSON's inverse, used by json_decode.
func fromJSON(goVal any) value.Value {
	switch t := goVal.(type) {
	case nil:
		return value.Nil
	case bool:
		return value.Bool(t)
	case float64:
		return value.Number(t)
	case string:
		return str(t)
	case []any:
		elems := make([]value.Value, len(t))
		for i, e := range t {
			elems[i] = fromJSON(e)
		}
		return value.FromArray(value.NewArray(elems))
	default:
		return value.Nil
	}
}
