package metadata

import "fmt"

// ValidationResult collects referential-integrity problems found in the
// loaded catalog. Errors block a run; warnings do not.
type ValidationResult struct {
	Errors   []ValidationIssue
	Warnings []ValidationIssue
}

// ValidationIssue describes one problem on one metadata row.
type ValidationIssue struct {
	Entity  string // "account", "preset", "category"
	ID      string
	Field   string
	Message string
}

func (i ValidationIssue) String() string {
	return fmt.Sprintf("%s %s [%s]: %s", i.Entity, i.ID, i.Field, i.Message)
}

// Validate checks referential integrity across the catalog: every account
// must reference an existing preset, and every category should reference an
// existing group. Duplicate account IDs are errors; a category without a
// group is only a warning since grouping is presentation-level.
func (c *Catalog) Validate() *ValidationResult {
	result := &ValidationResult{}

	seenAccounts := make(map[string]bool)
	for _, acc := range c.accounts {
		if seenAccounts[acc.ID] {
			result.Errors = append(result.Errors, ValidationIssue{
				Entity: "account", ID: acc.ID, Field: "account_id",
				Message: "duplicate account ID",
			})
		}
		seenAccounts[acc.ID] = true

		if _, ok := c.presets[acc.PresetID]; !ok {
			result.Errors = append(result.Errors, ValidationIssue{
				Entity: "account", ID: acc.ID, Field: "default_import_preset_id",
				Message: fmt.Sprintf("references unknown preset %q", acc.PresetID),
			})
		}
	}

	seenCategories := make(map[string]bool)
	for _, cat := range c.categories {
		if seenCategories[cat.ID] {
			result.Errors = append(result.Errors, ValidationIssue{
				Entity: "category", ID: cat.ID, Field: "id",
				Message: "duplicate category ID",
			})
		}
		seenCategories[cat.ID] = true

		if cat.GroupID == "" {
			continue
		}
		if _, ok := c.groups[cat.GroupID]; !ok {
			result.Warnings = append(result.Warnings, ValidationIssue{
				Entity: "category", ID: cat.ID, Field: "group_id",
				Message: fmt.Sprintf("references unknown group %q", cat.GroupID),
			})
		}
	}

	return result
}
