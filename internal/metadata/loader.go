// Package metadata loads the read-only lookup tables (accounts, presets,
// categories, category groups) and resolves import presets for accounts.
// Tables are loaded once per run and treated as immutable afterwards.
package metadata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/saldo-fin/saldo/internal/domain"
)

// Standard metadata file names inside the metadata directory.
const (
	AccountsFile       = "accounts.csv"
	PresetsFile        = "presets.csv"
	CategoriesFile     = "categories.csv"
	CategoryGroupsFile = "category_groups.csv"
)

// Catalog holds the run's reference data with index maps for lookup.
type Catalog struct {
	accounts   []domain.Account
	presets    map[string]domain.Preset
	categories []domain.Category
	groups     map[string]domain.CategoryGroup

	categoriesByName map[string]string // normalized name -> category ID
}

// Load reads all four metadata tables from dir.
func Load(dir string) (*Catalog, error) {
	c := &Catalog{
		presets:          make(map[string]domain.Preset),
		groups:           make(map[string]domain.CategoryGroup),
		categoriesByName: make(map[string]string),
	}

	if err := c.loadPresets(filepath.Join(dir, PresetsFile)); err != nil {
		return nil, err
	}
	if err := c.loadAccounts(filepath.Join(dir, AccountsFile)); err != nil {
		return nil, err
	}
	if err := c.loadGroups(filepath.Join(dir, CategoryGroupsFile)); err != nil {
		return nil, err
	}
	if err := c.loadCategories(filepath.Join(dir, CategoriesFile)); err != nil {
		return nil, err
	}

	return c, nil
}

// Accounts returns a defensive copy of the account list.
func (c *Catalog) Accounts() []domain.Account {
	return append([]domain.Account(nil), c.accounts...)
}

// Categories returns a defensive copy of the category list.
func (c *Catalog) Categories() []domain.Category {
	return append([]domain.Category(nil), c.categories...)
}

// ResolvePreset returns the parsing preset referenced by the account's
// default preset ID. Missing references are a configuration error.
func (c *Catalog) ResolvePreset(account domain.Account) (*domain.Preset, error) {
	p, ok := c.presets[account.PresetID]
	if !ok {
		return nil, fmt.Errorf("account %s references unknown preset %q: %w",
			account.ID, account.PresetID, domain.ErrConfiguration)
	}
	return &p, nil
}

// CategoryIDByName resolves a category by its normalized (lowercased,
// trimmed) name. Returns "" when no category carries the name.
func (c *Catalog) CategoryIDByName(name string) string {
	return c.categoriesByName[strings.ToLower(strings.TrimSpace(name))]
}

// readTable reads a delimited file with a header row and returns one map
// per data row, keyed by trimmed header name.
func readTable(path string) ([]domain.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("metadata file %s is empty: %w", path, domain.ErrConfiguration)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []domain.RawRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		row := make(domain.RawRow, len(header))
		for i, h := range header {
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func (c *Catalog) loadAccounts(path string) error {
	rows, err := readTable(path)
	if err != nil {
		return err
	}

	for i, row := range rows {
		acc, err := domain.NewAccount(
			row["account_id"],
			row["account_name"],
			row["bank"],
			row["default_import_preset_id"],
			row["currency"],
		)
		if err != nil {
			return fmt.Errorf("accounts row %d: %v: %w", i+2, err, domain.ErrConfiguration)
		}
		c.accounts = append(c.accounts, *acc)
	}

	return nil
}

func (c *Catalog) loadPresets(path string) error {
	rows, err := readTable(path)
	if err != nil {
		return err
	}

	for i, row := range rows {
		delim, err := parseDelimiter(row["delimiter"])
		if err != nil {
			return fmt.Errorf("presets row %d: %v: %w", i+2, err, domain.ErrConfiguration)
		}

		p, err := domain.NewPreset(
			row["id"],
			row["date_column"],
			row["amount_column"],
			row["description_column"],
			row["date_format"],
			delim,
		)
		if err != nil {
			return fmt.Errorf("presets row %d: %v: %w", i+2, err, domain.ErrConfiguration)
		}

		rule, err := parseTypeRule(row["type_rule"], row["type_column"])
		if err != nil {
			return fmt.Errorf("presets row %d: %v: %w", i+2, err, domain.ErrConfiguration)
		}
		p.TypeRule = rule

		if _, dup := c.presets[p.ID]; dup {
			return fmt.Errorf("presets row %d: duplicate preset ID %q: %w", i+2, p.ID, domain.ErrConfiguration)
		}
		c.presets[p.ID] = *p
	}

	return nil
}

func (c *Catalog) loadGroups(path string) error {
	rows, err := readTable(path)
	if err != nil {
		return err
	}

	for i, row := range rows {
		id, name := row["id"], row["name"]
		if id == "" || name == "" {
			return fmt.Errorf("category_groups row %d: id and name are required: %w", i+2, domain.ErrConfiguration)
		}
		c.groups[id] = domain.CategoryGroup{ID: id, Name: name}
	}

	return nil
}

func (c *Catalog) loadCategories(path string) error {
	rows, err := readTable(path)
	if err != nil {
		return err
	}

	for i, row := range rows {
		id, name := row["id"], row["name"]
		if id == "" || name == "" {
			return fmt.Errorf("categories row %d: id and name are required: %w", i+2, domain.ErrConfiguration)
		}
		c.categories = append(c.categories, domain.Category{
			ID:      id,
			Name:    name,
			GroupID: row["group_id"],
		})
		c.categoriesByName[strings.ToLower(name)] = id
	}

	return nil
}

// parseDelimiter maps the preset's delimiter cell to a rune. Accepts a
// single literal character or the words "tab" and "comma". Empty means
// comma.
func parseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", ",", "comma":
		return ',', nil
	case "tab", "\\t", "\t":
		return '\t', nil
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return runes[0], nil
}

// parseTypeRule maps the optional type_rule/type_column preset cells to a
// TypeRule. An empty rule cell means no inference.
func parseTypeRule(kind, column string) (*domain.TypeRule, error) {
	switch strings.ToLower(kind) {
	case "":
		return nil, nil
	case string(domain.TypeRuleSign):
		return &domain.TypeRule{Kind: domain.TypeRuleSign}, nil
	case string(domain.TypeRuleColumn):
		if column == "" {
			return nil, fmt.Errorf("type_rule %q requires type_column", kind)
		}
		return &domain.TypeRule{Kind: domain.TypeRuleColumn, Column: column}, nil
	default:
		return nil, fmt.Errorf("unknown type_rule %q", kind)
	}
}
