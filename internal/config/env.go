package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// EnvInputs is the raw set of configuration inputs listed in §6, read
// from environment variables following the teacher's EnvDefaultFunc
// naming style (NOSANA_* instead of a Terraform schema).
type EnvInputs struct {
	Network         string
	PrivateKey      string
	DummyPrivateKey string
	Market          string
	NFT             string
	NFTCollection   string
	IPFSURL         string
	PinataJWT       string
	PollDelayMs     int
	StartJobLoop    bool
	SecretsEndpoint string
	RPCURL          string
}

// LoadEnv reads the §6 configuration inputs from the process environment,
// applying the same defaults the teacher's provider schema does for
// optional fields.
func LoadEnv() (*EnvInputs, error) {
	in := &EnvInputs{
		Network:         getEnvDefault("NOSANA_NETWORK", "mainnet"),
		PrivateKey:      os.Getenv("NOSANA_PRIVATE_KEY"),
		DummyPrivateKey: os.Getenv("NOSANA_DUMMY_PRIVATE_KEY"),
		Market:          os.Getenv("NOSANA_MARKET"),
		NFT:             os.Getenv("NOSANA_NFT"),
		NFTCollection:   os.Getenv("NOSANA_NFT_COLLECTION"),
		IPFSURL:         getEnvDefault("NOSANA_IPFS_URL", "https://nosana.mypinata.cloud/ipfs"),
		PinataJWT:       os.Getenv("NOSANA_PINATA_JWT"),
		SecretsEndpoint: os.Getenv("NOSANA_SECRETS_ENDPOINT"),
		RPCURL:          os.Getenv("NOSANA_RPC_URL"),
	}

	pollDelay, err := strconv.Atoi(getEnvDefault("NOSANA_POLL_DELAY_MS", "3000"))
	if err != nil {
		return nil, fmt.Errorf("config: parsing NOSANA_POLL_DELAY_MS: %w", err)
	}
	in.PollDelayMs = pollDelay

	startLoop, err := strconv.ParseBool(getEnvDefault("NOSANA_START_JOB_LOOP", "true"))
	if err != nil {
		return nil, fmt.Errorf("config: parsing NOSANA_START_JOB_LOOP: %w", err)
	}
	in.StartJobLoop = startLoop

	if in.PrivateKey == "" {
		return nil, fmt.Errorf("config: NOSANA_PRIVATE_KEY is required")
	}
	if in.Market == "" {
		return nil, fmt.Errorf("config: NOSANA_MARKET is required")
	}

	return in, nil
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Signer decodes the base58-encoded NOSANA_PRIVATE_KEY into a signing
// key, the same encoding the teacher's generateLocalWallet/loadLocalWallet
// round-trip through.
func (in *EnvInputs) Signer() (solana.PrivateKey, error) {
	raw, err := base58.Decode(in.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("config: decoding private key: %w", err)
	}
	return solana.PrivateKey(raw), nil
}

// MarketPubkey parses the base58 NOSANA_MARKET address.
func (in *EnvInputs) MarketPubkey() (solana.PublicKey, error) {
	return solana.PublicKeyFromBase58(in.Market)
}
