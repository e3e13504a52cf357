package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tech-hunter-mainak/qilodb/internal/crypto"
	"github.com/tech-hunter-mainak/qilodb/internal/qerrors"
	"github.com/tech-hunter-mainak/qilodb/internal/schema"
)

// TableFileName returns the on-disk filename for a logical table name.
func TableFileName(tableName string) string {
	return tableName + ".bin"
}

// TablePath returns the full path to a table's encrypted file inside a
// database directory.
func TablePath(databaseDir, tableName string) string {
	return filepath.Join(databaseDir, TableFileName(tableName))
}

// TableContents is the decrypted plaintext table text parsed into its
// schema and raw data rows. Each row is the full tuple of cell values in
// schema column order (not yet split into primary key + remainder; that
// translation is the engine's job).
type TableContents struct {
	Schema *schema.Schema
	Rows   [][]string
}

// Load decrypts path under key and parses it into a Schema and its rows.
// Data rows whose field count doesn't match the schema are skipped
// silently, a best-effort recovery policy favoring availability over
// strictness when a table file is partially corrupted.
func Load(path string, key []byte) (*TableContents, error) {
	envelope, err := os.ReadFile(path)
	if err != nil {
		return nil, qerrors.Programf("could not read table file: %v", err)
	}
	plain, err := crypto.Decrypt(key, envelope)
	if err != nil {
		return nil, qerrors.Cryptof("could not decrypt table file: %v", err)
	}

	lines := strings.Split(string(plain), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, qerrors.Programf("table file is missing its schema row")
	}

	sch, err := schema.ParseHeaderLine(lines[0])
	if err != nil {
		return nil, err
	}

	width := len(sch.Columns)
	var rows [][]string
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != width {
			continue // malformed row: skipped silently
		}
		rows = append(rows, fields)
	}

	return &TableContents{Schema: sch, Rows: rows}, nil
}

// Save serializes sch and rows (full tuples in schema column order) back
// into the table's plaintext form, encrypts it under key, and writes it to
// path. The write is a temp-file-then-rename so a crash mid-write never
// corrupts the previous committed contents, trading the source's
// truncate-in-place for an atomic replace.
func Save(path string, key []byte, sch *schema.Schema, rows [][]string) error {
	var sb strings.Builder
	sb.WriteString(sch.String())
	for _, row := range rows {
		sb.WriteString("\n")
		sb.WriteString(strings.Join(row, ","))
	}

	envelope, err := crypto.Encrypt(key, []byte(sb.String()))
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*.bin")
	if err != nil {
		return qerrors.Programf("could not create temp file for commit: %v", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(envelope); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return qerrors.Programf("could not write table file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return qerrors.Programf("could not close temp file: %v", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return qerrors.Programf("could not commit table file: %v", err)
	}
	return nil
}

// CreateEmpty writes a brand-new table file containing only the schema
// header line, used by `make`.
func CreateEmpty(path string, key []byte, sch *schema.Schema) error {
	if _, err := os.Stat(path); err == nil {
		return qerrors.Invalidf("table already exists")
	}
	return Save(path, key, sch, nil)
}
