package port

import "whale_analyzer/internal/domain/entity"

// WalletProvider supplies watch-list wallets for batch analysis.
type WalletProvider interface {
	GetWallets() ([]entity.Wallet, error)
}
