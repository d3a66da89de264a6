package provider

import (
	"whale_analyzer/internal/app/port"
	"whale_analyzer/internal/domain/entity"
	"whale_analyzer/internal/infrastructure/walletloader"
)

type walletProviderImpl struct {
	walletFilePath string
	logger         port.Logger
}

// NewWalletProvider creates a WalletProvider backed by a watch-list file.
func NewWalletProvider(filePath string, logger port.Logger) port.WalletProvider {
	return &walletProviderImpl{walletFilePath: filePath, logger: logger}
}

// GetWallets loads wallet addresses from the configured file.
func (p *walletProviderImpl) GetWallets() ([]entity.Wallet, error) {
	p.logger.Debug("Loading wallets from file", "path", p.walletFilePath)
	wallets, skipped, err := walletloader.LoadWallets(p.walletFilePath)
	if err != nil {
		p.logger.Error("Failed to load wallets", "path", p.walletFilePath, "error", err)
		return nil, err
	}
	for _, s := range skipped {
		p.logger.Warn("Skipping invalid wallet address format", "path", p.walletFilePath, "line_number", s.Line, "content", s.Content)
	}
	p.logger.Info("Wallets loaded successfully", "count", len(wallets), "skipped", len(skipped), "path", p.walletFilePath)
	return wallets, nil
}
