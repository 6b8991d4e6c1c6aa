package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"

	"github.com/StefanUPB/tng-gtk-common/internal/domain/model"
	"github.com/StefanUPB/tng-gtk-common/internal/migrate"
)

const testProcessID = "9a6b3c44-2f51-4b9e-9b0c-2d3c5b8f1e7a"

func runAdmin(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	argv := append([]string{"tng-gtk-common-admin", "--env", filepath.Join(t.TempDir(), "absent.env")}, args...)
	err := newApp(&out).Run(context.Background(), argv)
	return out.String(), err
}

func TestScratchSweep_RemovesStaleFiles(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SCRATCH_BUCKET_URL", "file://"+dir)

	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "file://"+dir)
	require.NoError(t, err)
	require.NoError(t, bucket.WriteAll(ctx, "old/package.tgo", []byte("old"), nil))
	require.NoError(t, bucket.WriteAll(ctx, "new/package.tgo", []byte("new"), nil))
	require.NoError(t, bucket.Close())

	stale := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old", "package.tgo"), stale, stale))

	out, err := runAdmin(t, "scratch", "sweep", "--retention", "1h")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 1 materialized files")

	_, err = os.Stat(filepath.Join(dir, "old", "package.tgo"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "new", "package.tgo"))
	assert.NoError(t, err)
}

func TestStatusCommands_RequireSharedStore(t *testing.T) {
	t.Setenv("STATUS_STORE_BACKEND", "memory")

	_, err := runAdmin(t, "status", "get", "--id", testProcessID)
	assert.ErrorIs(t, err, errPersistentOnly)

	_, err = runAdmin(t, "status", "put", "--id", testProcessID, "--status", "running")
	assert.ErrorIs(t, err, errPersistentOnly)
}

func TestStatusCommands_RejectBadInput(t *testing.T) {
	t.Setenv("STATUS_STORE_BACKEND", "redis")

	_, err := runAdmin(t, "status", "get", "--id", "not-a-uuid")
	assert.ErrorContains(t, err, "not valid")

	// Lookups use the id as given, like GET /status.
	_, err = runAdmin(t, "status", "get", "--id", strings.ToUpper(testProcessID))
	assert.ErrorContains(t, err, "not valid")

	_, err = runAdmin(t, "status", "put", "--id", testProcessID, "--status", "exploded")
	assert.ErrorContains(t, err, "invalid ProcessStatus")
}

func TestBuildRecord(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	rec, err := buildRecord(testProcessID, "FAILED", "bad nsd", now)
	require.NoError(t, err)
	assert.Equal(t, model.ProcessStatusFailed, rec.Status)
	require.NotNil(t, rec.ErrorMessage)
	assert.Equal(t, "bad nsd", *rec.ErrorMessage)
	assert.True(t, rec.UpdatedAt.Equal(now))

	rec, err = buildRecord(testProcessID, "success", "ignored", now)
	require.NoError(t, err)
	assert.Nil(t, rec.ErrorMessage)

	_, err = buildRecord(testProcessID, "", "", now)
	assert.Error(t, err)
}

func TestPrintRecord(t *testing.T) {
	msg := "bad nsd"
	var out bytes.Buffer
	require.NoError(t, printRecord(&out, model.ProcessRecord{
		ProcessID:    testProcessID,
		Status:       model.ProcessStatusFailed,
		ErrorMessage: &msg,
	}))
	assert.Contains(t, out.String(), `"status": "failed"`)
	assert.Contains(t, out.String(), `"error_message": "bad nsd"`)
}

func TestStatusPrune_RequiresPostgres(t *testing.T) {
	t.Setenv("STATUS_STORE_BACKEND", "memory")

	_, err := runAdmin(t, "status", "prune")
	assert.ErrorIs(t, err, errPostgresOnly)
}

func TestPrintMigrations(t *testing.T) {
	applied := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var out bytes.Buffer
	require.NoError(t, printMigrations(&out, []migrate.Migration{
		{Version: "0001_process_records.sql", AppliedAt: &applied},
		{Version: "0002_next.sql"},
	}))

	assert.Contains(t, out.String(), "0001_process_records.sql  2026-01-02T03:04:05Z")
	assert.Contains(t, out.String(), "0002_next.sql")
	assert.Contains(t, out.String(), "pending")
}
