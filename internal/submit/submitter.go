// Package submit deserializes signed transactions, sends them to a Solana
// RPC node and waits for confirmation bounded by the transaction's last
// valid block height.
package submit

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	bin "github.com/gagliardetto/binary"
	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/SauceFoong/jup-swap-app/internal/apperrors"
)

const (
	maxSendRetries      = uint(3)
	defaultPollInterval = 2 * time.Second
)

// rpcClient is the slice of the solana-go RPC surface the submitter needs.
// *rpc.Client satisfies it.
type rpcClient interface {
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	GetBlockHeight(ctx context.Context, commitment rpc.CommitmentType) (uint64, error)
}

// Submitter submits signed transaction blobs and waits for confirmation.
type Submitter struct {
	client       rpcClient
	commit       rpc.CommitmentType
	pollInterval time.Duration
	log          zerolog.Logger
}

// New builds a submitter against the given RPC endpoint.
func New(rpcURL, commitment string, log zerolog.Logger) *Submitter {
	c := rpc.CommitmentConfirmed
	switch commitment {
	case "processed":
		c = rpc.CommitmentProcessed
	case "finalized":
		c = rpc.CommitmentFinalized
	}
	return &Submitter{
		client:       rpc.New(rpcURL),
		commit:       c,
		pollInterval: defaultPollInterval,
		log:          log,
	}
}

// Submit decodes a base64 signed transaction, sends it with preflight
// disabled, and blocks until it confirms or the validity bound passes.
// Returns the transaction signature on success.
func (s *Submitter) Submit(ctx context.Context, signedTxB64 string, lastValidBlockHeight uint64) (solana.Signature, error) {
	raw, err := base64.StdEncoding.DecodeString(signedTxB64)
	if err != nil {
		return solana.Signature{}, errors.Wrap(apperrors.ErrDeserialize, err.Error())
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return solana.Signature{}, errors.Wrap(apperrors.ErrDeserialize, err.Error())
	}

	retries := maxSendRetries
	sig, err := s.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       true,
		MaxRetries:          &retries,
		PreflightCommitment: s.commit,
	})
	if err != nil {
		return solana.Signature{}, errors.Wrap(err, "send transaction")
	}
	s.log.Info().Str("signature", sig.String()).Uint64("lastValidBlockHeight", lastValidBlockHeight).Msg("transaction sent")

	if err := s.waitConfirmation(ctx, sig, lastValidBlockHeight); err != nil {
		return solana.Signature{}, err
	}
	return sig, nil
}

func (s *Submitter) waitConfirmation(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		status, err := s.signatureStatus(ctx, sig)
		if err != nil {
			s.log.Warn().Err(err).Str("signature", sig.String()).Msg("status lookup failed")
		} else if status != nil {
			if status.Err != nil {
				return errors.Wrap(apperrors.ErrTransactionFailed, fmt.Sprintf("%v", status.Err))
			}
			if s.reached(status.ConfirmationStatus) {
				return nil
			}
		}

		height, err := s.client.GetBlockHeight(ctx, s.commit)
		if err != nil {
			s.log.Warn().Err(err).Msg("block height lookup failed")
		} else if height > lastValidBlockHeight {
			return errors.Wrapf(apperrors.ErrExpired, "height %d past %d", height, lastValidBlockHeight)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Submitter) signatureStatus(ctx context.Context, sig solana.Signature) (*rpc.SignatureStatusesResult, error) {
	out, err := s.client.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return nil, err
	}
	if out == nil || len(out.Value) == 0 {
		return nil, nil
	}
	return out.Value[0], nil
}

func (s *Submitter) reached(status rpc.ConfirmationStatusType) bool {
	switch s.commit {
	case rpc.CommitmentFinalized:
		return status == rpc.ConfirmationStatusFinalized
	case rpc.CommitmentProcessed:
		return status != ""
	default:
		return status == rpc.ConfirmationStatusConfirmed || status == rpc.ConfirmationStatusFinalized
	}
}
