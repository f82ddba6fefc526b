package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type stubReportSource struct {
	report string
	err    error
}

func (s stubReportSource) GetReport(ctx context.Context) (string, error) {
	return s.report, s.err
}

func TestGenerateReportWritesFile(t *testing.T) {
	dir := t.TempDir()
	origNow := nowFunc
	nowFunc = func() time.Time { return time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC) }
	defer func() { nowFunc = origNow }()

	src := stubReportSource{report: "# Bitcoin Market Report - August 29, 2026\n"}
	path, err := generateReport(context.Background(), src, dir)
	if err != nil {
		t.Fatalf("generateReport returned error: %v", err)
	}

	if filepath.Base(path) != "btc-report-2026-08-29.md" {
		t.Errorf("unexpected file name: %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(data), "Bitcoin Market Report") {
		t.Errorf("report content missing title: %q", string(data))
	}
}

func TestGenerateReportCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")

	src := stubReportSource{report: "report body"}
	if _, err := generateReport(context.Background(), src, dir); err != nil {
		t.Fatalf("generateReport returned error: %v", err)
	}

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("reports directory was not created: %v", err)
	}
}

func TestGenerateReportSourceError(t *testing.T) {
	src := stubReportSource{err: errors.New("providers down")}
	if _, err := generateReport(context.Background(), src, t.TempDir()); err == nil {
		t.Fatal("expected error from failing source")
	}
}

func TestGenerateReportWriteError(t *testing.T) {
	origWrite := writeFileFunc
	writeFileFunc = func(string, []byte, os.FileMode) error { return errors.New("disk full") }
	defer func() { writeFileFunc = origWrite }()

	src := stubReportSource{report: "report body"}
	if _, err := generateReport(context.Background(), src, t.TempDir()); err == nil {
		t.Fatal("expected write error")
	}
}
