package entity

import (
	"github.com/launchfee/backend/pkg/enum"
)

type ClaimType string

var (
	ClaimTypeBatch  = enum.New(ClaimType("batch"))
	ClaimTypeSingle = enum.New(ClaimType("single"))
)

// ClaimTransaction is one confirmed claim, recorded after its receipt and
// transfer logs checked out.
type ClaimTransaction struct {
	Base

	WalletAddress string `gorm:"index"`
	Type          ClaimType
	TxHash        string `gorm:"unique"`

	// Token addresses and symbols of the claimed assets, index-aligned.
	Tokens  Array[string]
	Symbols Array[string]

	// Raw base-unit amounts as decimal strings, index-aligned with Tokens.
	Amounts Array[string]
}
