package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StefanUPB/tng-gtk-common/internal/domain/model"
	"github.com/StefanUPB/tng-gtk-common/internal/testutil"
)

func TestProcessRecordRepo_NotConfigured(t *testing.T) {
	var repo *ProcessRecordRepo
	ctx := context.Background()

	assert.ErrorIs(t, repo.Put(ctx, model.ProcessRecord{ProcessID: "p"}), ErrProcessStoreNotConfigured)
	_, err := repo.Get(ctx, "p")
	assert.ErrorIs(t, err, ErrProcessStoreNotConfigured)
	_, err = repo.DeleteOlderThan(ctx, time.Now())
	assert.ErrorIs(t, err, ErrProcessStoreNotConfigured)
	assert.ErrorIs(t, repo.Health(ctx), ErrProcessStoreNotConfigured)
}

func TestProcessRecordRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewProcessRecordRepo(db)
		ctx := context.Background()
		id := uuid.NewString()
		base := testutil.TestTime()

		require.NoError(t, repo.Health(ctx))

		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, got.IsAbsent())

		require.NoError(t, repo.Put(ctx, model.NewWaitingRecord(id, base)))

		msg := "descriptor validation failed"
		require.NoError(t, repo.Put(ctx, model.ProcessRecord{
			ProcessID:    id,
			Status:       model.ProcessStatusFailed,
			ErrorMessage: &msg,
			UpdatedAt:    base.Add(time.Minute),
		}))

		got, err = repo.Get(ctx, id)
		require.NoError(t, err)
		rec := got.MustGet()
		assert.Equal(t, model.ProcessStatusFailed, rec.Status)
		require.NotNil(t, rec.ErrorMessage)
		assert.Equal(t, msg, *rec.ErrorMessage)
		assert.True(t, rec.UpdatedAt.Equal(base.Add(time.Minute)))

		n, err := repo.DeleteOlderThan(ctx, base.Add(2*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}
