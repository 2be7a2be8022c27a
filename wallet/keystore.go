// Package wallet is the wallet connector: a passphrase-encrypted keystore
// that holds the signing key and exposes connect and sign operations
// without handing the secret to the rest of the application.
package wallet

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

var (
	ErrNotInstalled  = errors.New("wallet keystore not installed")
	ErrLocked        = errors.New("wallet keystore not unlocked")
	ErrBadPassphrase = errors.New("wrong keystore passphrase")
	ErrExists        = errors.New("keystore already exists")
)

const keystoreVersion = 1

// scrypt cost parameters written into new keystores.
var (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

type keystoreFile struct {
	Version    int    `json:"version"`
	Address    string `json:"address"`
	N          int    `json:"n"`
	R          int    `json:"r"`
	P          int    `json:"p"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// Keystore is a keystore file plus its unlocked key, if any.
type Keystore struct {
	path string

	mu        sync.Mutex
	key       *keypair.Full
	connected bool
}

// Open returns a locked keystore for path. The file is not read until needed.
func Open(path string) *Keystore {
	return &Keystore{path: path}
}

// Path is the keystore file location.
func (k *Keystore) Path() string { return k.path }

// Installed reports whether the keystore file exists.
func (k *Keystore) Installed() bool {
	_, err := os.Stat(k.path)
	return err == nil
}

// Address reads the public address from the keystore without unlocking it.
func (k *Keystore) Address() (string, error) {
	f, err := k.read()
	if err != nil {
		return "", err
	}
	return f.Address, nil
}

// Unlock decrypts the signing key with passphrase.
func (k *Keystore) Unlock(passphrase string) error {
	f, err := k.read()
	if err != nil {
		return err
	}

	key, err := deriveKey(passphrase, f.Salt, f.N, f.R, f.P)
	if err != nil {
		return err
	}
	var nonce [24]byte
	copy(nonce[:], f.Nonce)

	seed, ok := secretbox.Open(nil, f.Ciphertext, &nonce, key)
	if !ok {
		return ErrBadPassphrase
	}
	kp, err := keypair.ParseFull(string(seed))
	if err != nil {
		return errors.Wrap(err, "decoding keystore seed")
	}
	if kp.Address() != f.Address {
		return errors.Errorf("keystore address mismatch: file says %s", f.Address)
	}

	k.mu.Lock()
	k.key = kp
	k.mu.Unlock()
	return nil
}

// Connect returns the account address once the keystore is unlocked.
func (k *Keystore) Connect(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !k.Installed() {
		return "", errors.Wrap(ErrNotInstalled, k.path)
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.key == nil {
		return "", ErrLocked
	}
	k.connected = true
	return k.key.Address(), nil
}

// Disconnect ends the session and forgets the unlocked key.
func (k *Keystore) Disconnect() {
	k.mu.Lock()
	k.connected = false
	k.key = nil
	k.mu.Unlock()
}

// Sign signs tx for the network identified by networkPassphrase.
func (k *Keystore) Sign(ctx context.Context, tx *txnbuild.Transaction, networkPassphrase string) (*txnbuild.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k.mu.Lock()
	key, connected := k.key, k.connected
	k.mu.Unlock()
	if key == nil || !connected {
		return nil, ErrLocked
	}

	signed, err := tx.Sign(networkPassphrase, key)
	if err != nil {
		return nil, errors.Wrap(err, "signing transaction")
	}
	return signed, nil
}

func (k *Keystore) read() (keystoreFile, error) {
	var f keystoreFile
	data, err := os.ReadFile(k.path)
	if os.IsNotExist(err) {
		return f, errors.Wrap(ErrNotInstalled, k.path)
	}
	if err != nil {
		return f, errors.Wrap(err, "reading keystore")
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return f, errors.Wrap(err, "parsing keystore")
	}
	if f.Version != keystoreVersion {
		return f, errors.Errorf("unsupported keystore version %d", f.Version)
	}
	return f, nil
}

// Create encrypts kp with passphrase and writes a new keystore to path.
// An existing keystore is never overwritten.
func Create(path, passphrase string, kp *keypair.Full) error {
	if _, err := os.Stat(path); err == nil {
		return errors.Wrap(ErrExists, path)
	}

	f := keystoreFile{
		Version: keystoreVersion,
		Address: kp.Address(),
		N:       scryptN,
		R:       scryptR,
		P:       scryptP,
		Salt:    make([]byte, 32),
		Nonce:   make([]byte, 24),
	}
	if _, err := io.ReadFull(rand.Reader, f.Salt); err != nil {
		return errors.Wrap(err, "generating salt")
	}
	if _, err := io.ReadFull(rand.Reader, f.Nonce); err != nil {
		return errors.Wrap(err, "generating nonce")
	}

	key, err := deriveKey(passphrase, f.Salt, f.N, f.R, f.P)
	if err != nil {
		return err
	}
	var nonce [24]byte
	copy(nonce[:], f.Nonce)
	f.Ciphertext = secretbox.Seal(nil, []byte(kp.Seed()), &nonce, key)

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding keystore")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, "creating keystore directory")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o600), "writing keystore")
}

func deriveKey(passphrase string, salt []byte, n, r, p int) (*[32]byte, error) {
	raw, err := scrypt.Key([]byte(passphrase), salt, n, r, p, 32)
	if err != nil {
		return nil, errors.Wrap(err, "deriving keystore key")
	}
	var key [32]byte
	copy(key[:], raw)
	return &key, nil
}
