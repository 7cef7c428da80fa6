package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saldo-fin/saldo/internal/domain"
)

func writeMetadataDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func validMetadata() map[string]string {
	return map[string]string{
		AccountsFile: "account_id,account_name,bank,default_import_preset_id,currency\n" +
			"16,Capital 7729,Capital,p-capital,USD\n" +
			"17,Sparkasse Giro,Sparkasse,p-sparkasse,EUR\n",
		PresetsFile: "id,date_column,amount_column,description_column,date_format,delimiter,type_rule,type_column\n" +
			"p-capital,Transaction Date,Amount,Description,01/02/2006,\",\",sign,\n" +
			"p-sparkasse,Buchungstag,Betrag,Verwendungszweck,02.01.2006,;,column,Umsatzart\n",
		CategoriesFile: "id,name,group_id\n" +
			"95,Groceries,41\n" +
			"96,Dining,48\n",
		CategoryGroupsFile: "id,name\n41,Housing\n48,Entertainment\n",
	}
}

func TestLoad(t *testing.T) {
	dir := writeMetadataDir(t, validMetadata())

	cat, err := Load(dir)
	require.NoError(t, err)

	accounts := cat.Accounts()
	require.Len(t, accounts, 2)
	assert.Equal(t, "Capital 7729", accounts[0].Name)
	assert.Equal(t, "EUR", accounts[1].Currency)

	p, err := cat.ResolvePreset(accounts[0])
	require.NoError(t, err)
	assert.Equal(t, "Transaction Date", p.DateColumn)
	assert.Equal(t, ',', int32(p.Delimiter))
	require.NotNil(t, p.TypeRule)
	assert.Equal(t, domain.TypeRuleSign, p.TypeRule.Kind)

	p, err = cat.ResolvePreset(accounts[1])
	require.NoError(t, err)
	assert.Equal(t, ';', int32(p.Delimiter))
	require.NotNil(t, p.TypeRule)
	assert.Equal(t, domain.TypeRuleColumn, p.TypeRule.Kind)
	assert.Equal(t, "Umsatzart", p.TypeRule.Column)
}

func TestResolvePreset_SameAccountSamePreset(t *testing.T) {
	dir := writeMetadataDir(t, validMetadata())
	cat, err := Load(dir)
	require.NoError(t, err)

	acc := cat.Accounts()[0]
	first, err := cat.ResolvePreset(acc)
	require.NoError(t, err)
	second, err := cat.ResolvePreset(acc)
	require.NoError(t, err)
	assert.Equal(t, first, second, "resolution must be stable within a run")
}

func TestResolvePreset_Unknown(t *testing.T) {
	dir := writeMetadataDir(t, validMetadata())
	cat, err := Load(dir)
	require.NoError(t, err)

	_, err = cat.ResolvePreset(domain.Account{ID: "99", Name: "x", PresetID: "nope"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

func TestLoad_BadPresetDelimiter(t *testing.T) {
	files := validMetadata()
	files[PresetsFile] = "id,date_column,amount_column,description_column,date_format,delimiter\n" +
		"p-capital,Date,Amount,Description,01/02/2006,;;\n"
	dir := writeMetadataDir(t, files)

	_, err := Load(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

func TestLoad_ColumnRuleWithoutColumn(t *testing.T) {
	files := validMetadata()
	files[PresetsFile] = "id,date_column,amount_column,description_column,date_format,delimiter,type_rule,type_column\n" +
		"p-capital,Date,Amount,Description,01/02/2006,\",\",column,\n"
	dir := writeMetadataDir(t, files)

	_, err := Load(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

func TestCategoryIDByName(t *testing.T) {
	dir := writeMetadataDir(t, validMetadata())
	cat, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "95", cat.CategoryIDByName("Groceries"))
	assert.Equal(t, "95", cat.CategoryIDByName("  groceries "))
	assert.Equal(t, "", cat.CategoryIDByName("Telecom"))
}

func TestValidate(t *testing.T) {
	files := validMetadata()
	// Second account points at a preset that does not exist; category 96
	// points at a group that does not exist.
	files[AccountsFile] = "account_id,account_name,bank,default_import_preset_id,currency\n" +
		"16,Capital 7729,Capital,p-capital,USD\n" +
		"17,Sparkasse Giro,Sparkasse,p-gone,EUR\n"
	files[CategoryGroupsFile] = "id,name\n41,Housing\n"
	dir := writeMetadataDir(t, files)

	cat, err := Load(dir)
	require.NoError(t, err)

	result := cat.Validate()
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "account", result.Errors[0].Entity)
	assert.Equal(t, "17", result.Errors[0].ID)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "category", result.Warnings[0].Entity)
	assert.Equal(t, "96", result.Warnings[0].ID)
}

func TestValidate_DuplicateAccount(t *testing.T) {
	files := validMetadata()
	files[AccountsFile] = "account_id,account_name,bank,default_import_preset_id,currency\n" +
		"16,Capital 7729,Capital,p-capital,USD\n" +
		"16,Capital 7729 again,Capital,p-capital,USD\n"
	dir := writeMetadataDir(t, files)

	cat, err := Load(dir)
	require.NoError(t, err)

	result := cat.Validate()
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "duplicate")
}
