package iocache

import (
	"fmt"
	"io"
	"slices"

	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

const statusTimeLayout = "2006-01-02 15:04:05"

// GetCacheStatus returns the status of the global blame cache.
func GetCacheStatus() (schema.CacheStatus, error) {
	store := Manager.GetBlameStore()
	if store == nil {
		return schema.CacheStatus{Backend: "disabled"}, nil
	}
	return store.GetStatus()
}

// GetAnalysisStatus returns the status of the global analysis store.
func GetAnalysisStatus() (schema.AnalysisStatus, error) {
	store := Manager.GetAnalysisStore()
	if store == nil {
		return schema.AnalysisStatus{Backend: "disabled"}, nil
	}
	return store.GetStatus()
}

// PrintCacheStatus prints cache status information.
func PrintCacheStatus(w io.Writer, status schema.CacheStatus) {
	_, _ = fmt.Fprintf(w, "Cache Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Entries: %d\n", status.TotalEntries)
	if status.TotalEntries > 0 {
		_, _ = fmt.Fprintf(w, "Last Entry: %s\n", status.LastEntryTime.Format(statusTimeLayout))
		_, _ = fmt.Fprintf(w, "Oldest Entry: %s\n", status.OldestEntryTime.Format(statusTimeLayout))
	}
	_, _ = fmt.Fprintf(w, "Table Size: %d bytes\n", status.TableSizeBytes)
}

// PrintAnalysisStatus prints analysis status information.
func PrintAnalysisStatus(w io.Writer, status schema.AnalysisStatus) {
	_, _ = fmt.Fprintf(w, "Analysis Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		_, _ = fmt.Fprintf(w, "Last Run ID: %d\n", status.LastRunID)
		_, _ = fmt.Fprintf(w, "Last Run: %s\n", status.LastRunTime.Format(statusTimeLayout))
		_, _ = fmt.Fprintf(w, "Oldest Run: %s\n", status.OldestRunTime.Format(statusTimeLayout))
		_, _ = fmt.Fprintf(w, "Total Contributors: %d\n", status.TotalContributors)
	}
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	slices.Sort(tables)
	for _, table := range tables {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
}

// DBFilePath returns the SQLite file used by a store, honoring an explicit connection string.
func DBFilePath(connStr, defaultPath string) string {
	if connStr != "" {
		return connStr
	}
	return defaultPath
}

// CacheDBFilePath returns the SQLite file of the blame cache.
func CacheDBFilePath(connStr string) string {
	return DBFilePath(connStr, contract.GetCacheDBFilePath())
}

// AnalysisDBFilePath returns the SQLite file of the analysis store.
func AnalysisDBFilePath(connStr string) string {
	return DBFilePath(connStr, contract.GetAnalysisDBFilePath())
}
