package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

type Configs struct {
	Env string

	ApiServer ServerConfigs
	Database  DatabaseConfigs
	Redis     RedisConfigs
	Auth      AuthConfigs
	Chain     ChainConfigs
	Claim     ClaimConfigs
	Discovery DiscoveryConfigs
}

type ServerConfigs struct {
	Host           string
	Port           string
	Cert           string
	Key            string
	AllowedOrigins []string
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type RedisConfigs struct {
	Addr string
}

type AuthConfigs struct {
	AccessTokenName string
	TokenSecret     string
	TokenExpiration time.Duration
}

// ChainConfigs describes the single EVM chain the service operates on. It is
// read from a TOML file so contract addresses stay out of the environment.
type ChainConfigs struct {
	Chain   string   `toml:"chain"`
	ChainID int64    `toml:"chain_id"`
	Rpcs    []string `toml:"rpcs"`

	// Contract addresses.
	FeeRouter       string `toml:"fee_router"`
	Distributor     string `toml:"distributor"`
	SettlementToken string `toml:"settlement_token"`
	Multicall       string `toml:"multicall"`

	UseEip1559 bool `toml:"use_eip_1559"`
	BlockTime  int  `toml:"block_time"`

	// SessionSecret derives the embedded session key. When empty, the
	// service falls back to node-managed accounts.
	SessionSecret string `toml:"-"`
}

type ClaimConfigs struct {
	ConfirmTimeout     time.Duration
	SettlePollInterval time.Duration
	SettleMaxAttempts  int
	CacheTTL           time.Duration
	LedgerKeyPrefix    string
}

type DiscoveryConfigs struct {
	URL      string
	PageSize int
	MaxPages int
}

func LoadChainConfigs(path string) (ChainConfigs, error) {
	var cfg ChainConfigs
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return ChainConfigs{}, err
	}

	return cfg, nil
}
