package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"gopkg.in/yaml.v3"

	"github.com/coldbell/ginko/sdk/internal/ginko"
)

type LogConfig struct {
	Level    string
	Format   string
	Output   string
	FilePath string
}

// OpenFIGIConfig configures the identifier resolver. APIKey is optional.
type OpenFIGIConfig struct {
	APIURL   string
	APIKey   string
	ExchCode string
	Timeout  time.Duration
}

// SwitchboardConfig configures the oracle feed tooling. A zero Queue falls
// back to the cluster's default queue.
type SwitchboardConfig struct {
	Queue         solana.PublicKey
	CrossbarURL   string
	SimulationURL string
	PriceTaskURL  string
}

// Config is the shared configuration of the command-line tools. Values come
// from the environment first, then from the flattened YAML runtime config.
type Config struct {
	RPCURL        string
	WSURL         string
	Commitment    rpc.CommitmentType
	KeypairPath   string
	ProgramID     solana.PublicKey
	NoncePrefix   string
	PaymentMint   solana.PublicKey
	Devnet        bool
	SkipPreflight bool
	MaxRetries    *uint
	TxTimeout     time.Duration

	ComputeUnitLimit              uint32
	ComputeUnitPriceMicroLamports uint64
	OpenFIGI                      OpenFIGIConfig
	Switchboard                   SwitchboardConfig
	Log                           LogConfig
}

const (
	defaultRPCURL = rpc.MainNetBeta_RPC
	defaultWSURL  = rpc.MainNetBeta_WS
)

func Load(serviceName string) (Config, error) {
	if err := ensureRuntimeConfigLoaded(); err != nil {
		return Config{}, err
	}

	keypairPath, err := expandHomePath(envOrDefault("GINKO_KEYPAIR_PATH", envOrDefault("SOLANA_KEYPAIR_PATH", "~/.config/solana/id.json")))
	if err != nil {
		return Config{}, fmt.Errorf("expand keypair path: %w", err)
	}

	commitment, err := envCommitment("GINKO_COMMITMENT", rpc.CommitmentConfirmed)
	if err != nil {
		return Config{}, err
	}

	programID, err := envPubkey("GINKO_PROGRAM_ID", ginko.ProgramID)
	if err != nil {
		return Config{}, err
	}

	paymentMint, err := envPubkey("GINKO_PAYMENT_MINT", solana.PublicKey{})
	if err != nil {
		return Config{}, err
	}

	devnet, err := envBool("GINKO_DEVNET", false)
	if err != nil {
		return Config{}, err
	}

	skipPreflight, err := envBool("GINKO_SKIP_PREFLIGHT", false)
	if err != nil {
		return Config{}, err
	}

	maxRetries, err := envOptionalUint("GINKO_TX_MAX_RETRIES")
	if err != nil {
		return Config{}, err
	}

	txTimeout, err := envDuration("GINKO_TX_TIMEOUT", 90*time.Second)
	if err != nil {
		return Config{}, err
	}

	cuLimit, err := envUint32("GINKO_COMPUTE_UNIT_LIMIT", 0)
	if err != nil {
		return Config{}, err
	}

	cuPrice, err := envUint64("GINKO_COMPUTE_UNIT_PRICE_MICRO_LAMPORTS", 0)
	if err != nil {
		return Config{}, err
	}

	figiTimeout, err := envDuration("OPENFIGI_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, err
	}

	sbQueue, err := envPubkey("SWITCHBOARD_QUEUE", solana.PublicKey{})
	if err != nil {
		return Config{}, err
	}

	rpcURL := envOrDefault("GINKO_RPC_URL", defaultRPCURL)
	if devnet && rpcURL == defaultRPCURL {
		rpcURL = rpc.DevNet_RPC
	}
	wsURL := envOrDefault("GINKO_WS_URL", defaultWSURL)
	if devnet && wsURL == defaultWSURL {
		wsURL = rpc.DevNet_WS
	}

	return Config{
		RPCURL:        rpcURL,
		WSURL:         wsURL,
		Commitment:    commitment,
		KeypairPath:   keypairPath,
		ProgramID:     programID,
		NoncePrefix:   envOrDefault("GINKO_NONCE_PREFIX", ginko.DefaultNoncePrefix),
		PaymentMint:   paymentMint,
		Devnet:        devnet,
		SkipPreflight: skipPreflight,
		MaxRetries:    maxRetries,
		TxTimeout:     txTimeout,

		ComputeUnitLimit:              cuLimit,
		ComputeUnitPriceMicroLamports: cuPrice,
		OpenFIGI: OpenFIGIConfig{
			APIURL:   envOrDefault("OPENFIGI_API_URL", ""),
			APIKey:   envOrDefault("OPENFIGI_API_KEY", ""),
			ExchCode: envOrDefault("OPENFIGI_EXCH_CODE", ""),
			Timeout:  figiTimeout,
		},
		Switchboard: SwitchboardConfig{
			Queue:         sbQueue,
			CrossbarURL:   envOrDefault("SWITCHBOARD_CROSSBAR_URL", ""),
			SimulationURL: envOrDefault("SWITCHBOARD_SIMULATION_URL", ""),
			PriceTaskURL:  envOrDefault("SWITCHBOARD_PRICE_TASK_URL", ""),
		},
		Log: buildLogConfig("GINKO", serviceName),
	}, nil
}

// LoadKeypair reads the signer keypair from the configured path.
func (c Config) LoadKeypair() (solana.PrivateKey, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(c.KeypairPath)
	if err != nil {
		return nil, fmt.Errorf("load keypair %q: %w", c.KeypairPath, err)
	}
	return key, nil
}

func buildLogConfig(prefix string, serviceName string) LogConfig {
	level := envOrDefault(prefix+"_LOG_LEVEL", envOrDefault("LOG_LEVEL", "info"))
	format := envOrDefault(prefix+"_LOG_FORMAT", envOrDefault("LOG_FORMAT", "text"))
	output := envOrDefault(prefix+"_LOG_OUTPUT", envOrDefault("LOG_OUTPUT", "console"))
	filePath := envOrDefault(prefix+"_LOG_FILE", envOrDefault("LOG_FILE", filepath.Join(".local", "log", serviceName+".log")))

	return LogConfig{
		Level:    level,
		Format:   format,
		Output:   output,
		FilePath: filePath,
	}
}

func envPubkey(key string, fallback solana.PublicKey) (solana.PublicKey, error) {
	raw := strings.TrimSpace(valueForKey(key))
	if raw == "" {
		return fallback, nil
	}
	pk, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return pk, nil
}

func envCommitment(key string, fallback rpc.CommitmentType) (rpc.CommitmentType, error) {
	raw := strings.TrimSpace(valueForKey(key))
	if raw == "" {
		return fallback, nil
	}
	switch strings.ToLower(raw) {
	case string(rpc.CommitmentProcessed):
		return rpc.CommitmentProcessed, nil
	case string(rpc.CommitmentConfirmed):
		return rpc.CommitmentConfirmed, nil
	case string(rpc.CommitmentFinalized):
		return rpc.CommitmentFinalized, nil
	default:
		return "", fmt.Errorf("invalid %s: %q (expected processed|confirmed|finalized)", key, raw)
	}
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(valueForKey(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be > 0", key)
	}
	return d, nil
}

func envUint32(key string, fallback uint32) (uint32, error) {
	raw := strings.TrimSpace(valueForKey(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return uint32(v), nil
}

func envUint64(key string, fallback uint64) (uint64, error) {
	raw := strings.TrimSpace(valueForKey(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func envOptionalUint(key string) (*uint, error) {
	raw := strings.TrimSpace(valueForKey(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	out := uint(v)
	return &out, nil
}

func envBool(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(valueForKey(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(valueForKey(key)); value != "" {
		return value
	}
	return fallback
}

func expandHomePath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if path == "~" {
			return homeDir, nil
		}
		return filepath.Join(homeDir, strings.TrimPrefix(path, "~/")), nil
	}
	return path, nil
}

var (
	runtimeConfigOnce   sync.Once
	runtimeConfigErr    error
	runtimeConfigValues map[string]string
)

// Environment variables always win; the YAML file fills the gaps. The file
// is chosen by CONFIG_FILE, else config/config-<CONFIG_PHASE>.yaml, and its
// nested keys flatten to SCREAMING_SNAKE_CASE.
func ensureRuntimeConfigLoaded() error {
	runtimeConfigOnce.Do(func() {
		runtimeConfigValues = make(map[string]string)

		phase := strings.TrimSpace(os.Getenv("CONFIG_PHASE"))
		if phase == "" {
			phase = "local"
		}

		configPath := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
		explicitPath := configPath != ""
		if configPath == "" {
			configPath = filepath.Join("config", "config-"+phase+".yaml")
		}

		body, err := os.ReadFile(configPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) && !explicitPath {
				return
			}
			runtimeConfigErr = fmt.Errorf("read config file %q: %w", configPath, err)
			return
		}

		raw := make(map[string]any)
		if err := yaml.Unmarshal(body, &raw); err != nil {
			runtimeConfigErr = fmt.Errorf("parse config file %q: %w", configPath, err)
			return
		}

		flattened, err := flattenConfig(raw)
		if err != nil {
			runtimeConfigErr = fmt.Errorf("flatten config file %q: %w", configPath, err)
			return
		}
		runtimeConfigValues = flattened
	})
	return runtimeConfigErr
}

func flattenConfig(raw map[string]any) (map[string]string, error) {
	out := make(map[string]string)
	for key, value := range raw {
		segment := normalizeKeySegment(key)
		if segment == "" {
			continue
		}
		if err := flattenConfigValue(segment, value, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func flattenConfigValue(prefix string, value any, out map[string]string) error {
	switch typed := value.(type) {
	case map[string]any:
		for key, child := range typed {
			segment := normalizeKeySegment(key)
			if segment == "" {
				continue
			}
			if err := flattenConfigValue(prefix+"_"+segment, child, out); err != nil {
				return err
			}
		}
		return nil
	case []any:
		parts := make([]string, 0, len(typed))
		for _, item := range typed {
			switch scalar := item.(type) {
			case string:
				if strings.TrimSpace(scalar) == "" {
					continue
				}
				parts = append(parts, strings.TrimSpace(scalar))
			case bool, int, int64, uint64, float64:
				parts = append(parts, fmt.Sprint(scalar))
			default:
				return fmt.Errorf("unsupported list item type %T under %q", item, prefix)
			}
		}
		out[prefix] = strings.Join(parts, ",")
		return nil
	case nil:
		return nil
	default:
		out[prefix] = fmt.Sprint(typed)
		return nil
	}
}

func normalizeKeySegment(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(raw))
	lastUnderscore := false

	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
			lastUnderscore = false
			continue
		}
		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}

	return strings.Trim(b.String(), "_")
}

func valueForKey(key string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}

	if err := ensureRuntimeConfigLoaded(); err != nil {
		return ""
	}
	return strings.TrimSpace(runtimeConfigValues[key])
}
