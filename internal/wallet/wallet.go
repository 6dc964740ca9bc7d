// Package wallet provides a local key-backed signer for headless use. The
// browser UI signs through an injected wallet instead; this exists for the
// CLI and for tests.
package wallet

import (
	"errors"
	"os"

	bin "github.com/gagliardetto/binary"
	solana "github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
)

func LoadPrivateKeyFromEnv() (solana.PrivateKey, error) {
	_ = godotenv.Load() // best-effort
	b58 := os.Getenv("SOLANA_PRIVATE_KEY_BASE58")
	if b58 == "" {
		return nil, errors.New("SOLANA_PRIVATE_KEY_BASE58 not set")
	}
	return solana.PrivateKeyFromBase58(b58)
}

// LocalSigner signs serialized transactions with an in-process private key.
type LocalSigner struct {
	key solana.PrivateKey
}

func NewLocalSigner(key solana.PrivateKey) *LocalSigner {
	return &LocalSigner{key: key}
}

func (l *LocalSigner) PublicKey() string {
	return l.key.PublicKey().String()
}

// SignTransaction decodes the serialized transaction, signs it and returns
// the serialized signed bytes.
func (l *LocalSigner) SignTransaction(raw []byte) ([]byte, error) {
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, err
	}
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(l.key.PublicKey()) {
			return &l.key
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tx.MarshalBinary()
}
