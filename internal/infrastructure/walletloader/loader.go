package walletloader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"whale_analyzer/internal/domain/entity"
	"whale_analyzer/internal/pkg/utils"
)

// SkippedLine records a watch-list line that did not hold a valid address.
type SkippedLine struct {
	Line    int
	Content string
}

// LoadWallets reads a watch-list file. Each non-empty line that does not start
// with '#' holds an address optionally followed by a label, separated by a
// comma or whitespace. Duplicate addresses keep their first occurrence.
func LoadWallets(path string) ([]entity.Wallet, []SkippedLine, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open wallet file %s: %w", path, err)
	}
	defer file.Close()

	wallets, skipped, err := ParseWallets(file)
	if err != nil {
		return nil, nil, fmt.Errorf("error scanning wallet file %s: %w", path, err)
	}
	return wallets, skipped, nil
}

// ParseWallets parses watch-list content from r.
func ParseWallets(r io.Reader) ([]entity.Wallet, []SkippedLine, error) {
	var (
		wallets []entity.Wallet
		skipped []SkippedLine
		seen    = make(map[string]struct{})
	)

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		address, label := splitLine(line)
		if !utils.IsValidEVMAddress(address) {
			skipped = append(skipped, SkippedLine{Line: lineNum, Content: line})
			continue
		}
		key := strings.ToLower(address)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		wallets = append(wallets, entity.Wallet{Address: utils.ChecksumAddress(address), Label: label})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return wallets, skipped, nil
}

func splitLine(line string) (address, label string) {
	if i := strings.IndexAny(line, ", \t"); i >= 0 {
		return line[:i], strings.TrimSpace(strings.Trim(strings.TrimSpace(line[i:]), ","))
	}
	return line, ""
}
