package vaultfs

import (
	"context"
	"path"
)

type cryptoCopy struct{ overlay[CopyFeature] }

// Copy picks one of four strategies. Inside one vault the delegate copies
// ciphertext as is. Every other route re-encrypts or decrypts, so any
// header left in status from an earlier file is dropped. Into the vault a
// new header for target is created up front and the byte-level copy
// encrypts with it.
func (o *cryptoCopy) Copy(ctx context.Context, source, target string, status *Status) error {
	route := o.route("copy", source, target)
	if route == sameVault {
		src, dst, err := o.encryptPair(source, target)
		if err != nil {
			return err
		}
		return o.delegate.Copy(ctx, src, dst, status)
	}

	status = status.orNew()
	status.resetHeader()
	if route == encrypting {
		status.Nonces = NewRandomNonceGenerator()
		if _, err := newEncryptedHeader(o.vault.cryptor, status); err != nil {
			return err
		}
		status.headerFor(path.Clean(target))
	}
	return o.plain().Copy(ctx, source, target, status)
}

func (o *cryptoCopy) IsRecursive(source, target string) bool {
	if o.vault.route(source, target) == sameVault {
		return o.delegate.IsRecursive(source, target)
	}
	return o.plain().IsRecursive(source, target)
}

func (o *cryptoCopy) IsSupported(source, target string) bool {
	if o.vault.route(source, target) == sameVault {
		return o.delegate.IsSupported(source, target)
	}
	return o.plain().IsSupported(source, target)
}

type cryptoMove struct{ overlay[MoveFeature] }

// Move renames within one vault. Moving across the vault boundary would
// need a re-encrypting copy and is reported as unsupported.
func (o *cryptoMove) Move(ctx context.Context, source, target string) error {
	switch o.route("move", source, target) {
	case sameVault:
		src, dst, err := o.encryptPair(source, target)
		if err != nil {
			return err
		}
		return o.delegate.Move(ctx, src, dst)
	case passthrough:
		return o.delegate.Move(ctx, source, target)
	default:
		return &UnsupportedError{Operation: "move", Source: source, Target: target}
	}
}

func (o *cryptoMove) IsSupported(source, target string) bool {
	switch o.vault.route(source, target) {
	case sameVault, passthrough:
		return o.delegate.IsSupported(source, target)
	default:
		return false
	}
}
