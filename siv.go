package vaultfs

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
)

const sivSize = aes.BlockSize

// SIVEngine implements AES-SIV (RFC 5297), a deterministic authenticated
// cipher. Equal plaintexts and associated data always produce equal
// ciphertexts, which is what stable encrypted names need.
type SIVEngine struct {
	mac    cipher.Block // S2V key
	ctr    cipher.Block // CTR key
	k1, k2 []byte       // CMAC subkeys of mac
}

// NewSIVEngine creates an AES-SIV engine from a 64-byte key.
func NewSIVEngine(key []byte) (*SIVEngine, error) {
	if len(key) != 2*KeySize {
		return nil, fmt.Errorf("AES-SIV requires a %d-byte key, got %d bytes", 2*KeySize, len(key))
	}

	mac, err := aes.NewCipher(key[:KeySize])
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	ctr, err := aes.NewCipher(key[KeySize:])
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	e := &SIVEngine{mac: mac, ctr: ctr}
	e.k1, e.k2 = cmacSubkeys(mac)
	return e, nil
}

// Encrypt returns SIV || CTR(plaintext).
func (e *SIVEngine) Encrypt(plaintext []byte, ad ...[]byte) ([]byte, error) {
	v := e.s2v(plaintext, ad...)

	out := make([]byte, sivSize+len(plaintext))
	copy(out, v)
	e.xorKeyStream(v, out[sivSize:], plaintext)
	return out, nil
}

// Decrypt opens ciphertext produced by Encrypt with the same ad.
func (e *SIVEngine) Decrypt(ciphertext []byte, ad ...[]byte) ([]byte, error) {
	if len(ciphertext) < sivSize {
		return nil, ErrAuthFailed
	}

	v := ciphertext[:sivSize]
	plaintext := make([]byte, len(ciphertext)-sivSize)
	e.xorKeyStream(v, plaintext, ciphertext[sivSize:])

	if subtle.ConstantTimeCompare(v, e.s2v(plaintext, ad...)) != 1 {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}

// NonceSize returns 0 since SIV doesn't use nonces
func (e *SIVEngine) NonceSize() int { return 0 }

// Overhead returns the SIV size (16 bytes)
func (e *SIVEngine) Overhead() int { return sivSize }

func (e *SIVEngine) s2v(plaintext []byte, ad ...[]byte) []byte {
	d := e.cmac(make([]byte, sivSize))
	for _, a := range ad {
		d = dbl(d)
		xorBytes(d, e.cmac(a))
	}

	var t []byte
	if len(plaintext) >= sivSize {
		t = append([]byte(nil), plaintext...)
		xorBytes(t[len(t)-sivSize:], d)
	} else {
		t = dbl(d)
		xorBytes(t, pad(plaintext))
	}
	return e.cmac(t)
}

func (e *SIVEngine) cmac(data []byte) []byte {
	n := (len(data) + sivSize - 1) / sivSize
	if n == 0 {
		n = 1
	}

	last := make([]byte, sivSize)
	if tail := data[sivSize*(n-1):]; len(tail) == sivSize {
		copy(last, tail)
		xorBytes(last, e.k1)
	} else {
		last = pad(tail)
		xorBytes(last, e.k2)
	}

	mac := make([]byte, sivSize)
	for i := 0; i < n-1; i++ {
		xorBytes(mac, data[i*sivSize:(i+1)*sivSize])
		e.mac.Encrypt(mac, mac)
	}
	xorBytes(mac, last)
	e.mac.Encrypt(mac, mac)
	return mac
}

func (e *SIVEngine) xorKeyStream(v, dst, src []byte) {
	// RFC 5297 section 2.5: clear the 31st and 63rd bits of the counter.
	iv := make([]byte, sivSize)
	copy(iv, v)
	iv[8] &= 0x7f
	iv[12] &= 0x7f
	cipher.NewCTR(e.ctr, iv).XORKeyStream(dst, src)
}

// dbl multiplies a block by x in GF(2^128).
func dbl(block []byte) []byte {
	hi := binary.BigEndian.Uint64(block[:8])
	lo := binary.BigEndian.Uint64(block[8:])

	out := make([]byte, sivSize)
	binary.BigEndian.PutUint64(out[:8], hi<<1|lo>>63)
	binary.BigEndian.PutUint64(out[8:], lo<<1)
	if hi>>63 != 0 {
		out[15] ^= 0x87
	}
	return out
}

// pad applies 10* padding to a partial block.
func pad(data []byte) []byte {
	out := make([]byte, sivSize)
	copy(out, data)
	out[len(data)] = 0x80
	return out
}

func xorBytes(dst, src []byte) {
	for i := 0; i < len(dst) && i < len(src); i++ {
		dst[i] ^= src[i]
	}
}

func cmacSubkeys(block cipher.Block) ([]byte, []byte) {
	l := make([]byte, sivSize)
	block.Encrypt(l, l)
	k1 := dbl(l)
	return k1, dbl(k1)
}
