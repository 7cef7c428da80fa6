// Package etl runs the ingestion pipeline: for every account with pending
// raw exports, resolve the preset, normalize the rows, and delta-merge the
// batch into the canonical store.
package etl

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/saldo-fin/saldo/internal/domain"
	"github.com/saldo-fin/saldo/internal/metadata"
	"github.com/saldo-fin/saldo/internal/normalize"
	"github.com/saldo-fin/saldo/internal/reader"
	"github.com/saldo-fin/saldo/internal/store"
)

// SkippedRow records one row that failed normalization.
type SkippedRow struct {
	AccountID string
	File      string
	Reason    normalize.FailureReason
	Column    string
	Value     string
}

// FailedAccount records an account whose ingestion was aborted entirely.
type FailedAccount struct {
	AccountID string
	Err       error
}

// FailedFile records a raw file that could not be read. The file is skipped;
// the account's other files still merge.
type FailedFile struct {
	AccountID string
	File      string
	Err       error
}

// AccountSummary reports one processed account.
type AccountSummary struct {
	AccountID string
	Files     int
	Ingested  int
	Skipped   int
}

// Report is the outcome of one ingestion run.
type Report struct {
	RunID          string
	StartedAt      time.Time
	Accounts       []AccountSummary
	Ingested       int
	Skipped        []SkippedRow
	FailedFiles    []FailedFile
	FailedAccounts []FailedAccount
	StoreSize      int
}

// Pipeline wires the ingestion stages together. Accounts are processed
// sequentially; each successful account is persisted before the next one
// starts, so a mid-run failure loses at most the failing account.
type Pipeline struct {
	catalog    *metadata.Catalog
	normalizer *normalize.Normalizer
	persister  store.Persister
	rawDir     string
	dryRun     bool
	log        zerolog.Logger
}

// New creates a pipeline over the given catalog, normalizer and persister.
func New(catalog *metadata.Catalog, normalizer *normalize.Normalizer, persister store.Persister, rawDir string, dryRun bool, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		catalog:    catalog,
		normalizer: normalizer,
		persister:  persister,
		rawDir:     rawDir,
		dryRun:     dryRun,
		log:        log,
	}
}

// Run executes one ingestion pass over every account with pending raw files.
// now stamps created_at and updated_at on every record normalized in this
// run. Account-level configuration errors are collected in the report and do
// not stop other accounts; persistence errors are fatal.
func (p *Pipeline) Run(now time.Time) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: now,
	}

	current, err := p.persister.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load canonical store: %w", err)
	}

	accounts := p.catalog.Accounts()
	found, err := reader.Discover(p.rawDir, accounts)
	if err != nil {
		return nil, err
	}
	p.log.Info().
		Str("run_id", report.RunID).
		Int("accounts", len(accounts)).
		Int("accounts_with_files", len(found)).
		Msg("starting ingestion run")

	for _, account := range accounts {
		files := found[account.ID]
		if len(files) == 0 {
			p.log.Debug().Str("account", account.ID).Msg("no raw files, skipping")
			continue
		}

		updated, summary, err := p.ingestAccount(current, account, files, now, report)
		if err != nil {
			if errors.Is(err, domain.ErrConfiguration) {
				p.log.Error().Err(err).Str("account", account.ID).Msg("account ingestion aborted")
				report.FailedAccounts = append(report.FailedAccounts, FailedAccount{
					AccountID: account.ID,
					Err:       err,
				})
				continue
			}
			return nil, err
		}

		current = updated
		report.Accounts = append(report.Accounts, summary)
		report.Ingested += summary.Ingested

		if !p.dryRun {
			if err := p.persister.Save(current); err != nil {
				return nil, fmt.Errorf("failed to persist store after account %s: %w", account.ID, err)
			}
		}
		p.log.Info().
			Str("account", account.ID).
			Int("files", summary.Files).
			Int("ingested", summary.Ingested).
			Int("skipped", summary.Skipped).
			Msg("account merged")
	}

	report.StoreSize = current.Len()
	return report, nil
}

// ingestAccount reads, normalizes and merges one account's files. Row-level
// failures land in the report; only configuration and merge errors propagate.
func (p *Pipeline) ingestAccount(current *store.Store, account domain.Account, files []string, now time.Time, report *Report) (*store.Store, AccountSummary, error) {
	summary := AccountSummary{AccountID: account.ID, Files: len(files)}

	preset, err := p.catalog.ResolvePreset(account)
	if err != nil {
		return nil, summary, err
	}

	var batch []domain.Record
	for _, file := range files {
		rows, err := reader.ReadFile(file, *preset)
		if err != nil {
			// A preset mismatch poisons every file for the account, so it
			// propagates. Anything else is one unreadable file: skip it and
			// keep going, the rest of the account's exports are still good.
			if errors.Is(err, domain.ErrConfiguration) {
				return nil, summary, err
			}
			p.log.Warn().Err(err).
				Str("account", account.ID).
				Str("file", file).
				Msg("unreadable raw file, skipping")
			report.FailedFiles = append(report.FailedFiles, FailedFile{
				AccountID: account.ID,
				File:      file,
				Err:       err,
			})
			continue
		}
		if len(rows) == 0 {
			p.log.Debug().Str("file", file).Msg("empty raw file, skipping")
			continue
		}

		for _, row := range rows {
			rec, rowErr := p.normalizer.Normalize(row, account, *preset, now)
			if rowErr != nil {
				summary.Skipped++
				report.Skipped = append(report.Skipped, SkippedRow{
					AccountID: account.ID,
					File:      file,
					Reason:    rowErr.Reason,
					Column:    rowErr.Column,
					Value:     rowErr.Value,
				})
				p.log.Debug().
					Str("account", account.ID).
					Str("file", file).
					Str("reason", string(rowErr.Reason)).
					Str("column", rowErr.Column).
					Msg("row skipped")
				continue
			}
			batch = append(batch, *rec)
		}
	}

	if len(batch) == 0 {
		// Every row failed or every file was empty. Nothing to merge, but
		// the account still counts as processed.
		return current, summary, nil
	}

	merged, err := store.Merge(current, account.ID, batch)
	if err != nil {
		return nil, summary, err
	}

	// Count what the store actually gained: rows sharing an ID collapse
	// last-write-wins inside the merger.
	unique := make(map[string]struct{}, len(batch))
	for _, rec := range batch {
		unique[rec.ID] = struct{}{}
	}
	summary.Ingested = len(unique)
	return merged, summary, nil
}
