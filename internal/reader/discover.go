// Package reader discovers raw export files and turns them into header-keyed
// rows, so downstream normalization never needs to know the source format.
package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/saldo-fin/saldo/internal/domain"
)

// Discovery maps each account to the raw files found for it. Accounts with
// no directory or no recognizable files are simply absent.
type Discovery map[string][]string

// Discover walks rawDir looking for one subdirectory per account ID and
// collects the export files inside, sorted by name. Layout:
//
//	{rawDir}/{account_id}/*.csv|*.ofx|*.qfx
func Discover(rawDir string, accounts []domain.Account) (Discovery, error) {
	if _, err := os.Stat(rawDir); err != nil {
		if os.IsNotExist(err) {
			return Discovery{}, nil
		}
		return nil, fmt.Errorf("failed to read raw directory %s: %w", rawDir, err)
	}

	found := Discovery{}
	for _, account := range accounts {
		dir := filepath.Join(rawDir, account.ID)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read account directory %s: %w", dir, err)
		}

		var files []string
		for _, entry := range entries {
			if entry.IsDir() || !isExportFile(entry.Name()) {
				continue
			}
			files = append(files, filepath.Join(dir, entry.Name()))
		}
		if len(files) == 0 {
			continue
		}
		sort.Strings(files)
		found[account.ID] = files
	}

	return found, nil
}

func isExportFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".ofx", ".qfx":
		return true
	}
	return false
}
