package core

import (
	"errors"
	"fmt"

	"github.com/illarion/seedvault/internal/crypto"
	"github.com/illarion/seedvault/internal/storage"
)

// Kind classifies a Vault failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindEncryptionFailure
	KindDecryptionFailure
	KindStorageCorrupt
	KindNotFound
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindEncryptionFailure:
		return "encryption failure"
	case KindDecryptionFailure:
		return "decryption failure"
	case KindStorageCorrupt:
		return "storage corrupt"
	case KindNotFound:
		return "not found"
	case KindStorage:
		return "storage error"
	default:
		return "unknown error"
	}
}

var (
	ErrInvalidInput      = crypto.ErrInvalidInput
	ErrEncryptionFailure = crypto.ErrEncryptionFailure
	ErrDecryptionFailure = crypto.ErrDecryptionFailure
	ErrStorageCorrupt    = storage.ErrStorageCorrupt
	ErrRecordNotFound    = storage.ErrRecordNotFound
	ErrNothingPending    = errors.New("no encrypted mnemonic pending")
)

// Error is returned by every Vault operation that fails.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the Kind of err, looking through wrapping.
func KindOf(err error) Kind {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return classify(err)
}

func classify(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, crypto.ErrInvalidInput),
		errors.Is(err, storage.ErrInvalidRecord),
		errors.Is(err, ErrNothingPending):
		return KindInvalidInput
	case errors.Is(err, crypto.ErrEncryptionFailure):
		return KindEncryptionFailure
	case errors.Is(err, crypto.ErrDecryptionFailure):
		return KindDecryptionFailure
	case errors.Is(err, storage.ErrStorageCorrupt):
		return KindStorageCorrupt
	case errors.Is(err, storage.ErrRecordNotFound):
		return KindNotFound
	default:
		return KindStorage
	}
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: classify(err), Err: err}
}
