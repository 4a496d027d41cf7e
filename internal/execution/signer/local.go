package signer

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	clierr "github.com/ggonzalez94/evm-agent/internal/errors"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

const (
	EnvPrivateKey           = "EVM_PRIVATE_KEY"
	EnvPrivateKeyLegacy     = "ETH_PRIVATE_KEY"
	EnvPrivateKeyFile       = "EVM_PRIVATE_KEY_FILE"
	EnvKeystorePath         = "EVM_KEYSTORE_PATH"
	EnvKeystorePassword     = "EVM_KEYSTORE_PASSWORD"
	EnvKeystorePasswordFile = "EVM_KEYSTORE_PASSWORD_FILE"
	EnvMnemonic             = "EVM_MNEMONIC"
	EnvMnemonicIndex        = "EVM_MNEMONIC_INDEX"

	KeySourceAuto     = "auto"
	KeySourceEnv      = "env"
	KeySourceFile     = "file"
	KeySourceKeystore = "keystore"
	KeySourceMnemonic = "mnemonic"

	defaultPrivateKeyRelativePath = "evm-agent/key.hex"
	defaultPrivateKeyHintPath     = "~/.config/" + defaultPrivateKeyRelativePath

	ethereumCoinType uint32 = 60
)

type LocalSigner struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

func (s *LocalSigner) Address() common.Address {
	return s.address
}

func (s *LocalSigner) SignTx(chainID *big.Int, tx *types.Transaction) (*types.Transaction, error) {
	if s == nil || s.privateKey == nil {
		return nil, errors.New("local signer is not initialized")
	}
	signer := types.LatestSignerForChainID(chainID)
	return types.SignTx(tx, signer, s.privateKey)
}

func NewLocalSignerFromEnv(source string) (*LocalSigner, error) {
	return NewLocalSignerFromInputs(source, "")
}

// NewLocalSignerFromInputs resolves the signing key from the environment,
// restricted to the requested source. A non-empty override always wins.
func NewLocalSignerFromInputs(source, privateKeyOverride string) (*LocalSigner, error) {
	source = strings.ToLower(strings.TrimSpace(source))
	if source == "" {
		source = KeySourceAuto
	}
	cfg := LocalSignerConfig{
		PrivateKeyHex:        firstEnv(EnvPrivateKey, EnvPrivateKeyLegacy),
		PrivateKeyFile:       strings.TrimSpace(os.Getenv(EnvPrivateKeyFile)),
		KeystorePath:         strings.TrimSpace(os.Getenv(EnvKeystorePath)),
		KeystorePassword:     strings.TrimSpace(os.Getenv(EnvKeystorePassword)),
		KeystorePasswordFile: strings.TrimSpace(os.Getenv(EnvKeystorePasswordFile)),
		Mnemonic:             strings.TrimSpace(os.Getenv(EnvMnemonic)),
	}
	if raw := strings.TrimSpace(os.Getenv(EnvMnemonicIndex)); raw != "" {
		idx, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, clierr.Wrap(clierr.CodeSigner, fmt.Sprintf("invalid %s", EnvMnemonicIndex), err)
		}
		cfg.MnemonicIndex = uint32(idx)
	}
	if cfg.PrivateKeyFile == "" {
		cfg.PrivateKeyFile = discoverDefaultPrivateKeyFile()
	}

	switch source {
	case KeySourceAuto:
	case KeySourceEnv:
		cfg = LocalSignerConfig{PrivateKeyHex: cfg.PrivateKeyHex}
	case KeySourceFile:
		cfg = LocalSignerConfig{PrivateKeyFile: cfg.PrivateKeyFile}
	case KeySourceKeystore:
		cfg = LocalSignerConfig{
			KeystorePath:         cfg.KeystorePath,
			KeystorePassword:     cfg.KeystorePassword,
			KeystorePasswordFile: cfg.KeystorePasswordFile,
		}
	case KeySourceMnemonic:
		cfg = LocalSignerConfig{Mnemonic: cfg.Mnemonic, MnemonicIndex: cfg.MnemonicIndex}
	default:
		return nil, clierr.New(clierr.CodeUsage, fmt.Sprintf("unsupported key source %q (expected %s|%s|%s|%s|%s)", source, KeySourceAuto, KeySourceEnv, KeySourceFile, KeySourceKeystore, KeySourceMnemonic))
	}
	if strings.TrimSpace(privateKeyOverride) != "" {
		cfg = LocalSignerConfig{PrivateKeyHex: strings.TrimSpace(privateKeyOverride)}
	}

	return NewLocalSigner(cfg)
}

type LocalSignerConfig struct {
	PrivateKeyHex        string
	PrivateKeyFile       string
	KeystorePath         string
	KeystorePassword     string
	KeystorePasswordFile string
	Mnemonic             string
	MnemonicIndex        uint32
}

func NewLocalSigner(cfg LocalSignerConfig) (*LocalSigner, error) {
	pk, err := loadPrivateKey(cfg)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeSigner, "load signing key", err)
	}
	pub, ok := pk.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, clierr.New(clierr.CodeSigner, "invalid ECDSA public key")
	}
	addr := crypto.PubkeyToAddress(*pub)
	return &LocalSigner{privateKey: pk, address: addr}, nil
}

func loadPrivateKey(cfg LocalSignerConfig) (*ecdsa.PrivateKey, error) {
	if strings.TrimSpace(cfg.PrivateKeyHex) != "" {
		return parseHexKey(cfg.PrivateKeyHex)
	}
	if strings.TrimSpace(cfg.PrivateKeyFile) != "" {
		buf, err := os.ReadFile(cfg.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read private key file: %w", err)
		}
		return parseHexKey(string(buf))
	}
	if strings.TrimSpace(cfg.KeystorePath) != "" {
		return decryptKeystore(cfg)
	}
	if strings.TrimSpace(cfg.Mnemonic) != "" {
		return deriveMnemonicKey(cfg.Mnemonic, cfg.MnemonicIndex)
	}
	return nil, fmt.Errorf("missing signing key: set %s (or %s), %s, %s or %s, or place a key at %s",
		EnvPrivateKey, EnvPrivateKeyLegacy, EnvPrivateKeyFile, EnvKeystorePath, EnvMnemonic, defaultPrivateKeyHintPath)
}

func decryptKeystore(cfg LocalSignerConfig) (*ecdsa.PrivateKey, error) {
	password := cfg.KeystorePassword
	if strings.TrimSpace(password) == "" && strings.TrimSpace(cfg.KeystorePasswordFile) != "" {
		buf, err := os.ReadFile(cfg.KeystorePasswordFile)
		if err != nil {
			return nil, fmt.Errorf("read keystore password file: %w", err)
		}
		password = strings.TrimSpace(string(buf))
	}
	if strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("keystore password is required")
	}
	buf, err := os.ReadFile(cfg.KeystorePath)
	if err != nil {
		return nil, fmt.Errorf("read keystore file: %w", err)
	}
	key, err := keystore.DecryptKey(buf, password)
	if err != nil {
		return nil, fmt.Errorf("decrypt keystore: %w", err)
	}
	return key.PrivateKey, nil
}

// deriveMnemonicKey walks m/44'/60'/0'/0/index from a BIP-39 phrase.
func deriveMnemonicKey(mnemonic string, index uint32) (*ecdsa.PrivateKey, error) {
	phrase := strings.Join(strings.Fields(mnemonic), " ")
	seed, err := bip39.NewSeedWithErrorChecking(phrase, "")
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %w", err)
	}
	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("master key: %w", err)
	}
	path := []uint32{
		bip32.FirstHardenedChild + 44,
		bip32.FirstHardenedChild + ethereumCoinType,
		bip32.FirstHardenedChild,
		0,
		index,
	}
	for _, child := range path {
		key, err = key.NewChildKey(child)
		if err != nil {
			return nil, fmt.Errorf("derive child %d: %w", child, err)
		}
	}
	return crypto.ToECDSA(common.LeftPadBytes(key.Key, 32))
}

func parseHexKey(raw string) (*ecdsa.PrivateKey, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "0x")
	if clean == "" {
		return nil, fmt.Errorf("empty private key")
	}
	pk, err := crypto.HexToECDSA(clean)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return pk, nil
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

func defaultPrivateKeyPath() string {
	base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil || strings.TrimSpace(home) == "" {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, defaultPrivateKeyRelativePath)
}

func discoverDefaultPrivateKeyFile() string {
	path := defaultPrivateKeyPath()
	if path == "" {
		return ""
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ""
	}
	return path
}
