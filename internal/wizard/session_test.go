package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "lead-intake/internal/common/errors"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/intake"
)

func stores(t *testing.T) map[string]Store {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(client, time.Hour),
	}
}

func TestStores(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := &Session{ID: "s-1", State: New(), CreatedAt: time.Now().UTC()}

			require.NoError(t, store.Create(ctx, s))
			assert.Error(t, store.Create(ctx, s), "duplicate id")

			got, err := store.Get(ctx, "s-1")
			require.NoError(t, err)
			assert.Equal(t, intake.StepBusiness, got.State.Step)

			// Mutating a loaded session does not touch the store.
			got.State.Step = intake.StepWebsite
			again, err := store.Get(ctx, "s-1")
			require.NoError(t, err)
			assert.Equal(t, intake.StepBusiness, again.State.Step)

			got.State.Record = got.State.Record.Merge(business)
			require.NoError(t, store.Save(ctx, got))
			saved, err := store.Get(ctx, "s-1")
			require.NoError(t, err)
			assert.Equal(t, intake.StepWebsite, saved.State.Step)
			assert.Equal(t, business, *saved.State.Record.Business)

			_, err = store.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrSessionNotFound)
			assert.ErrorIs(t, store.Save(ctx, &Session{ID: "missing"}), ErrSessionNotFound)
		})
	}
}

func TestRedisStore_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, &Session{ID: "s-ttl", State: New()}))
	assert.Equal(t, time.Minute, mr.TTL(sessionKeyPrefix+"s-ttl"))

	mr.FastForward(2 * time.Minute)
	_, err := store.Get(ctx, "s-ttl")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessions_Flow(t *testing.T) {
	sub := &fakeSubmitter{}
	log := logger.NewTestLogger(t)
	sessions := NewSessions(NewMemoryStore(), NewController(sub, log), log)
	ctx := context.Background()

	s, err := sessions.Start(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 0, s.View().Progress)

	s, err = sessions.SubmitStep(ctx, s.ID, intake.StepBusiness, []byte(businessJSON))
	require.NoError(t, err)
	assert.Equal(t, "website", s.View().StepKey)

	_, err = sessions.SubmitStep(ctx, s.ID, intake.StepBusiness, []byte(businessJSON))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeStepMismatch))

	_, err = sessions.SubmitStep(ctx, s.ID, intake.StepWebsite, []byte(websiteJSON))
	require.NoError(t, err)
	s, err = sessions.SubmitStep(ctx, s.ID, intake.StepMarketing, []byte(marketingJSON))
	require.NoError(t, err)

	view := s.View()
	assert.True(t, view.Complete)
	assert.Equal(t, 100, view.Progress)

	loaded, err := sessions.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, loaded.State.Complete())
	assert.True(t, loaded.State.Record.Complete())
}

func TestSessions_FailedSubmissionIsSaved(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("read-only file system")}
	log := logger.NewTestLogger(t)
	sessions := NewSessions(NewMemoryStore(), NewController(sub, log), log)
	ctx := context.Background()

	s, err := sessions.Start(ctx)
	require.NoError(t, err)
	_, err = sessions.SubmitStep(ctx, s.ID, intake.StepBusiness, []byte(businessJSON))
	require.NoError(t, err)
	_, err = sessions.SubmitStep(ctx, s.ID, intake.StepWebsite, []byte(websiteJSON))
	require.NoError(t, err)

	_, err = sessions.SubmitStep(ctx, s.ID, intake.StepMarketing, []byte(marketingJSON))
	require.True(t, apperrors.IsCode(err, apperrors.ErrCodePersistenceFailed))

	loaded, err := sessions.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, intake.StepMarketing, loaded.State.Step)
	assert.Equal(t, apperrors.MsgSaveFailed, loaded.View().LastError)
}

func TestSessions_ConcurrentFinalSubmitPersistsOnce(t *testing.T) {
	sub := &fakeSubmitter{}
	log := logger.NewNoOpLogger()
	sessions := NewSessions(NewMemoryStore(), NewController(sub, log), log)
	ctx := context.Background()

	s, err := sessions.Start(ctx)
	require.NoError(t, err)
	_, err = sessions.SubmitStep(ctx, s.ID, intake.StepBusiness, []byte(businessJSON))
	require.NoError(t, err)
	_, err = sessions.SubmitStep(ctx, s.ID, intake.StepWebsite, []byte(websiteJSON))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = sessions.SubmitStep(ctx, s.ID, intake.StepMarketing, []byte(marketingJSON))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, sub.calls())
}

func TestSessions_SlowSubmitDoesNotBlockOtherSessions(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	slow := SubmitterFunc(func(context.Context, intake.Record) error {
		entered <- struct{}{}
		<-release
		return nil
	})
	log := logger.NewNoOpLogger()
	sessions := NewSessions(NewMemoryStore(), NewController(slow, log), log)
	ctx := context.Background()

	first, err := sessions.Start(ctx)
	require.NoError(t, err)
	_, err = sessions.SubmitStep(ctx, first.ID, intake.StepBusiness, []byte(businessJSON))
	require.NoError(t, err)
	_, err = sessions.SubmitStep(ctx, first.ID, intake.StepWebsite, []byte(websiteJSON))
	require.NoError(t, err)

	finished := make(chan error, 1)
	go func() {
		_, err := sessions.SubmitStep(ctx, first.ID, intake.StepMarketing, []byte(marketingJSON))
		finished <- err
	}()
	<-entered

	// Many ids, so a shared lock bucket would catch at least one of them.
	for i := 0; i < 200; i++ {
		other, err := sessions.Start(ctx)
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() {
			_, err := sessions.SubmitStep(ctx, other.ID, intake.StepBusiness, []byte(businessJSON))
			done <- err
		}()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatalf("session %s waited on another session's submit", other.ID)
		}
	}

	close(release)
	require.NoError(t, <-finished)

	sessions.mu.Lock()
	defer sessions.mu.Unlock()
	assert.Empty(t, sessions.locks, "locks are released once no request holds them")
}

func TestSessions_UnknownSession(t *testing.T) {
	log := logger.NewNoOpLogger()
	sessions := NewSessions(NewMemoryStore(), NewController(&fakeSubmitter{}, log), log)

	_, err := sessions.Get(context.Background(), "nope")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSessionNotFound))
	_, err = sessions.SubmitStep(context.Background(), "nope", intake.StepBusiness, []byte(businessJSON))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSessionNotFound))
}
