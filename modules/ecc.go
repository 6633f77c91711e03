package modules

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/kristofer/hookvm/internal/value"
)

// ecdsaKeypair is the userdata payload ecc.generate_keypair hands back:
// a P-256 (secp256r1) private key, the curve spec.md's "ECC
// primitives" external-collaborator line leaves unspecified and
// SPEC_FULL.md pins to match the other modules' use of standard-library
// crypto primitives.
type ecdsaKeypair struct {
	priv *ecdsa.PrivateKey
}

// eccModule has no original_source collaborator to ground on (spec.md
// names "ECC primitives" only in its external-collaborators line); it
// implements the minimal keypair/sign/verify/derive surface a scripting
// embedder would need, entirely on crypto/ecdsa, crypto/elliptic and
// x/crypto/hkdf.
func eccModule() value.Value {
	return namespace([]entry{
		fn("generate_keypair", 0, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
			if err != nil {
				return value.Nil, value.StatusError, value.Errf(value.ErrType, "ecc.generate_keypair: %v", err)
			}
			kp := &ecdsaKeypair{priv: priv}
			return value.FromUserdata(value.NewUserdata("ecc.keypair", kp, nil)), value.StatusOK, nil
		}),
		fn("public_key", 1, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			kp, err := keypairArg(args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			return bytesVal(elliptic.MarshalCompressed(elliptic.P256(), kp.priv.PublicKey.X, kp.priv.PublicKey.Y)), value.StatusOK, nil
		}),
		fn("sign", 2, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			kp, err := keypairArg(args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			msg, err := stringArg("ecc.sign", args, 1)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			digest := sha256.Sum256([]byte(msg))
			sig, serr := ecdsa.SignASN1(rand.Reader, kp.priv, digest[:])
			if serr != nil {
				return value.Nil, value.StatusError, value.Errf(value.ErrType, "ecc.sign: %v", serr)
			}
			return bytesVal(sig), value.StatusOK, nil
		}),
		fn("verify", 3, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			pubBytes, err := stringArg("ecc.verify", args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			msg, err := stringArg("ecc.verify", args, 1)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			sig, err := stringArg("ecc.verify", args, 2)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			curve := elliptic.P256()
			x, y := elliptic.UnmarshalCompressed(curve, []byte(pubBytes))
			if x == nil {
				return value.Nil, value.StatusError, value.Errf(value.ErrType, "ecc.verify: invalid public key encoding")
			}
			pub := &ecdsa.PublicKey{Curve: curve, X: x, Y: y}
			digest := sha256.Sum256([]byte(msg))
			ok := ecdsa.VerifyASN1(pub, digest[:], []byte(sig))
			return value.Bool(ok), value.StatusOK, nil
		}),
		fn("derive_key", 2, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			kp, err := keypairArg(args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			peerPub, err := stringArg("ecc.derive_key", args, 1)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			curve := elliptic.P256()
			x, y := elliptic.UnmarshalCompressed(curve, []byte(peerPub))
			if x == nil {
				return value.Nil, value.StatusError, value.Errf(value.ErrType, "ecc.derive_key: invalid public key encoding")
			}
			sx, _ := curve.ScalarMult(x, y, kp.priv.D.Bytes())
			kdf := hkdf.New(sha256.New, sx.Bytes(), nil, []byte("hookvm ecc.derive_key"))
			out := make([]byte, 32)
			if _, rerr := io.ReadFull(kdf, out); rerr != nil {
				return value.Nil, value.StatusError, value.Errf(value.ErrType, "ecc.derive_key: %v", rerr)
			}
			return bytesVal(out), value.StatusOK, nil
		}),
	})
}

func keypairArg(args []value.Value, i int) (*ecdsaKeypair, error) {
	if i >= len(args) {
		return nil, arityError("ecc", i+1, len(args))
	}
	if args[i].Type() != value.TypeUserdata || args[i].AsUserdata().Tag() != "ecc.keypair" {
		return nil, argError("ecc", i, "a keypair handle", args[i])
	}
	return args[i].AsUserdata().Ptr().(*ecdsaKeypair), nil
}
