package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/absfs/memfs"
	"github.com/sirupsen/logrus"

	"github.com/absfs/vaultfs"
)

func testEnv(t *testing.T) *env {
	t.Helper()
	fs, err := memfs.NewFS()
	if err != nil {
		t.Fatalf("memfs.NewFS failed: %v", err)
	}
	kp, err := vaultfs.NewRawKeyProvider(bytes.Repeat([]byte{7}, vaultfs.KeySize))
	if err != nil {
		t.Fatalf("NewRawKeyProvider failed: %v", err)
	}
	cfg := vaultfs.DefaultConfig()
	cfg.ChunkSize = 16
	if _, err := vaultfs.CreateVault(vaultfs.NewSession(fs), "/secrets", kp, cfg); err != nil {
		t.Fatalf("CreateVault failed: %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	e, err := newEnv(fs, []string{"/secrets"}, kp, logger)
	if err != nil {
		t.Fatalf("newEnv failed: %v", err)
	}
	return e
}

func writeLocal(t *testing.T, e *env, p, data string) {
	t.Helper()
	w, err := e.session.Write().Write(context.Background(), p, nil)
	if err != nil {
		t.Fatalf("Write(%s) failed: %v", p, err)
	}
	io.WriteString(w, data)
	if err := w.Close(); err != nil {
		t.Fatalf("Close(%s) failed: %v", p, err)
	}
}

func readThrough(t *testing.T, e *env, p string) string {
	t.Helper()
	rc, err := e.registry.Read(e.session).Read(context.Background(), p, nil)
	if err != nil {
		t.Fatalf("Read(%s) failed: %v", p, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll(%s) failed: %v", p, err)
	}
	return string(data)
}

func TestNewEnv_WrongKey(t *testing.T) {
	e := testEnv(t)
	kp, _ := vaultfs.NewRawKeyProvider(bytes.Repeat([]byte{8}, vaultfs.KeySize))
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	_, err := newEnv(e.session.FS(), []string{"/secrets"}, kp, logger)
	if !vaultfs.IsAuthenticationError(err) {
		t.Errorf("newEnv with wrong key = %v, want an authentication error", err)
	}
}

func TestEnv_CopyAndMove(t *testing.T) {
	e := testEnv(t)
	ctx := context.Background()
	writeLocal(t, e, "/notes/todo.txt", "buy milk and eggs")
	writeLocal(t, e, "/notes/sub/plan.txt", "world domination")

	if err := e.copyTree(ctx, "/notes", "/secrets/notes"); err != nil {
		t.Fatalf("copyTree failed: %v", err)
	}
	if got := readThrough(t, e, "/secrets/notes/sub/plan.txt"); got != "world domination" {
		t.Errorf("plan.txt = %q", got)
	}

	if err := e.move(ctx, "/secrets/notes/todo.txt", "/secrets/archive/todo.txt"); err != nil {
		t.Fatalf("move inside vault failed: %v", err)
	}
	if err := e.move(ctx, "/secrets/archive", "/restored"); err != nil {
		t.Fatalf("move out of vault failed: %v", err)
	}
	if got := readThrough(t, e, "/restored/todo.txt"); got != "buy milk and eggs" {
		t.Errorf("restored todo.txt = %q", got)
	}
	if _, err := e.registry.Attributes(e.session).Stat(ctx, "/secrets/archive"); err == nil {
		t.Error("source of a cross-boundary move still exists")
	}

	report, err := vaultfs.Verify(ctx, e.registry, e.session, "/secrets", vaultfs.ParallelConfig{})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	var out bytes.Buffer
	if n := printReport(&out, "/secrets", report); n != 0 {
		t.Errorf("printReport counted %d failures", n)
	}
	if !strings.Contains(out.String(), "1 checked, 0 failed") {
		t.Errorf("report = %q", out.String())
	}
}

func TestFindFilter(t *testing.T) {
	defer func(r, f bool) { findRegex, findFiles = r, f }(findRegex, findFiles)

	file := vaultfs.Entry{Name: "report-2024.pdf"}
	dir := vaultfs.Entry{Name: "report-archive", IsDir: true}

	tests := []struct {
		name    string
		args    []string
		regex   bool
		files   bool
		file    bool
		dir     bool
		wantErr bool
	}{
		{name: "no pattern", file: true, dir: true},
		{name: "glob", args: []string{"*.pdf"}, file: true},
		{name: "glob prefix", args: []string{"report-*"}, file: true, dir: true},
		{name: "files only", args: []string{"report-*"}, files: true, file: true},
		{name: "regex", args: []string{`-\d+\.`}, regex: true, file: true},
		{name: "bad glob", args: []string{"[a-"}, wantErr: true},
		{name: "bad regex", args: []string{"("}, regex: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findRegex, findFiles = tt.regex, tt.files
			f, err := findFilter(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("findFilter failed: %v", err)
			}
			if got := f.Accept(file); got != tt.file {
				t.Errorf("Accept(file) = %v, want %v", got, tt.file)
			}
			if got := f.Accept(dir); got != tt.dir {
				t.Errorf("Accept(dir) = %v, want %v", got, tt.dir)
			}
		})
	}
}

func TestPrintEntries(t *testing.T) {
	var out bytes.Buffer
	entries := []vaultfs.Entry{
		{Path: "/secrets/docs", Name: "docs", IsDir: true},
		{Path: "/secrets/a.txt", Name: "a.txt", Size: 5},
		{Path: "/secrets/cut.bin", Name: "cut.bin", Size: 124, Corrupt: true},
	}
	if err := printEntries(&out, entries, true); err != nil {
		t.Fatalf("printEntries failed: %v", err)
	}
	if !strings.Contains(out.String(), "/secrets/cut.bin (corrupt)") {
		t.Errorf("corrupt entry not marked: %q", out.String())
	}
	if !strings.Contains(out.String(), "/secrets/docs/") || !strings.Contains(out.String(), "/secrets/a.txt") {
		t.Errorf("output = %q", out.String())
	}
}
