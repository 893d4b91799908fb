// Package main benchmarks the ccstats CLI against real repositories.
// Each repository is measured without the blame cache and then with the SQLite
// cache, where the first successful cached run counts as cold and the rest are
// averaged as warm. Results are written as CSV for documentation.
//
// Prerequisites:
// - ccstats binary installed and available in PATH
// - Each repository under the base directory carries a coverage report
//   produced by its own test suite (coverage.xml, cover.out or clover.xml)
//
// Usage: go run benchmark/main.go [repo-base-dir] [repo...]
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// coverageCandidates are probed in order inside every repository.
var coverageCandidates = []string{"coverage.xml", "cover.out", "coverage.out", "clover.xml"}

// BenchmarkResult holds the timings of one command on one repository.
type BenchmarkResult struct {
	Repository  string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RepoBase    string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	TestRepos   []string
}

// target is a repository ready to be benchmarked.
type target struct {
	name     string
	path     string
	coverage string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Printf("Usage: %s [repo-base-dir] [repo...]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		RepoBase:    os.Args[1],
		Timeout:     5 * time.Minute,
		Workers:     8,
		NoCacheRuns: 3,
		CacheRuns:   4,
		TestRepos:   []string{"cobra", "viper", "testify"},
	}
	if len(os.Args) > 2 {
		config.TestRepos = os.Args[2:]
	}

	targets, err := findTargets(config)
	if err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := make([]BenchmarkResult, 0, len(targets)*2)
	for _, t := range targets {
		fmt.Printf("Benchmarking %s (%s)\n", t.name, t.coverage)
		results = append(results,
			runBenchmarkSuite(config, t, "report"),
			runBenchmarkSuite(config, t, "check"),
		)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}
	printSummary(results)
}

// findTargets verifies that ccstats and every repository with a coverage report exist.
func findTargets(config BenchmarkConfig) ([]target, error) {
	if _, err := exec.LookPath("ccstats"); err != nil {
		return nil, errors.New("ccstats binary not found in PATH")
	}

	var targets []target
	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(filepath.Join(repoPath, ".git")); err != nil {
			return nil, fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
		report := ""
		for _, candidate := range coverageCandidates {
			if _, err := os.Stat(filepath.Join(repoPath, candidate)); err == nil {
				report = candidate
				break
			}
		}
		if report == "" {
			return nil, fmt.Errorf("repository %s has none of %s", repo, strings.Join(coverageCandidates, ", "))
		}
		targets = append(targets, target{name: repo, path: repoPath, coverage: report})
	}
	return targets, nil
}

// runBenchmarkSuite runs the no-cache and cached phases for one command.
func runBenchmarkSuite(config BenchmarkConfig, t target, command string) BenchmarkResult {
	cacheFile := filepath.Join(os.TempDir(), fmt.Sprintf("ccstats_bench_%s.db", t.name))
	_ = os.Remove(cacheFile)
	defer func() { _ = os.Remove(cacheFile) }()

	_, noCache := runBenchmark(config, t, command, "none", "", config.NoCacheRuns)
	cold, warm := runBenchmark(config, t, command, "sqlite", cacheFile, config.CacheRuns)

	result := BenchmarkResult{
		Repository:  t.name,
		Command:     command,
		NoCacheTime: average(noCache),
		ColdTime:    "TIMEOUT",
		WarmTime:    average(warm),
	}
	if cold > 0 {
		result.ColdTime = fmt.Sprintf("%.3fs", cold)
	}
	fmt.Printf("  %s: no-cache %s, cold %s, warm %s\n", command, result.NoCacheTime, result.ColdTime, result.WarmTime)
	return result
}

// runBenchmark executes ccstats numRuns times and returns the first successful
// time and the times of the successful runs after it.
func runBenchmark(config BenchmarkConfig, t target, command, cacheBackend, cacheFile string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		command,
		"--files", t.coverage,
		"--workers", fmt.Sprint(config.Workers),
		"--cache-backend", cacheBackend,
		"--color", "no",
	}
	if cacheFile != "" {
		args = append(args, "--cache-db-connect", cacheFile)
	}
	if command == "check" {
		// The gate itself is not under test.
		args = append(args, "--min-threshold", "0")
	}

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		cmd := exec.CommandContext(ctx, "ccstats", args...)
		cmd.Dir = t.path
		output, err := cmd.CombinedOutput()
		elapsed := time.Since(start).Seconds()
		cancel()
		if err == nil && isSuccess(output, command) {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks that the output carries the completion footer of command.
func isSuccess(output []byte, command string) bool {
	phrase := "Analyzed"
	if command == "check" {
		phrase = "Check completed in"
	}
	return strings.Contains(string(output), phrase)
}

func average(times []float64) string {
	if len(times) == 0 {
		return "TIMEOUT"
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return fmt.Sprintf("%.3fs", sum/float64(len(times)))
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("ccstats_benchmark_%s.csv", time.Now().Format("20060102_150405")))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"repo", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Repository, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range []string{"report", "check"} {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-12s: No-cache: %s, Cold: %s, Warm: %s\n", result.Repository, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
