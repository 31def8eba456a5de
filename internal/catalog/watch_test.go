package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWaitForFile_AlreadyReady(t *testing.T) {
	path := writeCatalog(t, t.TempDir(), `{}`)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := WaitForFile(ctx, path, MinCatalogSize); err != nil {
		t.Errorf("WaitForFile() = %v", err)
	}
}

func TestWaitForFile_WaitsForWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "AllPrintings.json")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- WaitForFile(ctx, path, MinCatalogSize)
	}()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-done:
		t.Fatalf("returned before file was large enough: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	body := "{}" + strings.Repeat(" ", int(MinCatalogSize))
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WaitForFile() = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("WaitForFile did not return after file was written")
	}
}

func TestWaitForFile_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := WaitForFile(ctx, filepath.Join(t.TempDir(), "AllPrintings.json"), MinCatalogSize)
	if err != context.DeadlineExceeded {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}
