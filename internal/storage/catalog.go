// Package storage turns a database directory's on-disk artifacts (the
// encrypted table files and the table_metadata.txt catalog) into Go values
// and back. The catalog scan reads existing structure into a model before
// use, the filesystem-directory-scan equivalent of an information_schema
// query against a live database server.
package storage

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tech-hunter-mainak/qilodb/internal/qerrors"
)

// CatalogFileName is the per-database file listing each table's row count.
const CatalogFileName = "table_metadata.txt"

// CatalogEntry is one line of table_metadata.txt.
type CatalogEntry struct {
	TableName string
	RowCount  int
}

func catalogPath(databaseDir string) string {
	return filepath.Join(databaseDir, CatalogFileName)
}

// ReadCatalog reads every entry from a database's catalog file. A missing
// file is treated as an empty catalog (a freshly init'd database has none
// yet).
func ReadCatalog(databaseDir string) ([]CatalogEntry, error) {
	f, err := os.Open(catalogPath(databaseDir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, qerrors.Programf("could not read table catalog: %v", err)
	}
	defer f.Close()

	var entries []CatalogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		name, count, ok := parseCatalogLine(line)
		if !ok {
			continue
		}
		entries = append(entries, CatalogEntry{TableName: name, RowCount: count})
	}
	return entries, nil
}

// parseCatalogLine parses "<tableName> - <rowCount> rows". Only the first
// whitespace-delimited token (the table name) is load-bearing for
// identification, mirroring removeTableMetadataEntry's first-token-only
// tokenizing.
func parseCatalogLine(line string) (name string, count int, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return "", 0, false
	}
	name = fields[0]
	count, err := strconv.Atoi(fields[2])
	if err != nil {
		return "", 0, false
	}
	return name, count, true
}

func formatCatalogLine(e CatalogEntry) string {
	return e.TableName + " - " + strconv.Itoa(e.RowCount) + " rows"
}

// UpsertCatalogEntry rewrites table_metadata.txt so that tableName's entry
// reads "<tableName> - <rowCount> rows", preserving every other table's
// entry verbatim.
func UpsertCatalogEntry(databaseDir, tableName string, rowCount int) error {
	entries, err := ReadCatalog(databaseDir)
	if err != nil {
		return err
	}

	found := false
	for i := range entries {
		if entries[i].TableName == tableName {
			entries[i].RowCount = rowCount
			found = true
			break
		}
	}
	if !found {
		entries = append(entries, CatalogEntry{TableName: tableName, RowCount: rowCount})
	}
	return writeCatalog(databaseDir, entries)
}

// RemoveCatalogEntry deletes tableName's line from the catalog, used by
// `erase <table>`.
func RemoveCatalogEntry(databaseDir, tableName string) error {
	entries, err := ReadCatalog(databaseDir)
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.TableName != tableName {
			kept = append(kept, e)
		}
	}
	return writeCatalog(databaseDir, kept)
}

func writeCatalog(databaseDir string, entries []CatalogEntry) error {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(formatCatalogLine(e))
		sb.WriteString("\n")
	}
	if err := os.WriteFile(catalogPath(databaseDir), []byte(sb.String()), 0o600); err != nil {
		return qerrors.Programf("could not write table catalog: %v", err)
	}
	return nil
}

// ListTables lists the logical table names present in a database
// directory by scanning for "*.bin" files, independent of the catalog
// (used by the `list` verb in Database context).
func ListTables(databaseDir string) ([]string, error) {
	entries, err := os.ReadDir(databaseDir)
	if err != nil {
		return nil, qerrors.Programf("could not list database directory: %v", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Ext(e.Name()) == ".bin" {
			names = append(names, strings.TrimSuffix(e.Name(), ".bin"))
		}
	}
	return names, nil
}

// ListDatabases lists the database directories directly under root (used
// by `list` in Root context).
func ListDatabases(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, qerrors.Programf("could not list data root: %v", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
