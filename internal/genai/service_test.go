package genai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskweave/taskweave/internal/config"
	"github.com/taskweave/taskweave/internal/usage"
)

type stubModel struct {
	reply string
	err   error
	calls int
}

func (m *stubModel) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

type stubLedger struct {
	status    usage.Status
	checkErr  error
	recordErr error
	recorded  []*uuid.UUID
}

func (l *stubLedger) Check(ctx context.Context, userID uuid.UUID) (usage.Status, error) {
	if l.checkErr != nil {
		return usage.Status{}, l.checkErr
	}
	return l.status, nil
}

func (l *stubLedger) Record(ctx context.Context, userID uuid.UUID, projectID *uuid.UUID) error {
	if l.recordErr != nil {
		return l.recordErr
	}
	l.recorded = append(l.recorded, projectID)
	if l.status.Remaining > 0 {
		l.status.Remaining--
	}
	return nil
}

type stubCreator struct {
	id    uuid.UUID
	err   error
	calls int
}

func (c *stubCreator) CreateFromGenerated(ctx context.Context, userID uuid.UUID, project *GeneratedProject) (uuid.UUID, error) {
	c.calls++
	if c.err != nil {
		return uuid.Nil, c.err
	}
	return c.id, nil
}

func newTestService(model *stubModel, ledger *stubLedger, creator *stubCreator) *Service {
	return NewService(NewInputValidator(testGenerationConfig()), ledger, model, creator, nil)
}

func TestService_Generate(t *testing.T) {
	projectID := uuid.New()
	model := &stubModel{reply: validReply}
	ledger := &stubLedger{status: usage.Status{Remaining: 10}}
	creator := &stubCreator{id: projectID}
	svc := newTestService(model, ledger, creator)

	result, err := svc.Generate(context.Background(), uuid.New(), validInput())
	require.NoError(t, err)

	assert.Equal(t, projectID, result.ProjectID)
	assert.Equal(t, "Habit Tracker", result.Project.Title)
	assert.Empty(t, result.Warning)
	// The usage on the result reflects the just-recorded attempt.
	assert.Equal(t, 9, result.Usage.Remaining)
	require.Len(t, ledger.recorded, 1)
	assert.Equal(t, projectID, *ledger.recorded[0])
}

func TestService_InvalidInputSkipsModelCall(t *testing.T) {
	model := &stubModel{reply: validReply}
	ledger := &stubLedger{status: usage.Status{Remaining: 10}}
	svc := newTestService(model, ledger, &stubCreator{id: uuid.New()})

	in := validInput()
	in.Description = "short"
	in.NumTasks = 25

	_, err := svc.Generate(context.Background(), uuid.New(), in)
	require.Error(t, err)

	ue := Classify(err)
	assert.Equal(t, KindValidation, ue.Kind)
	assert.Len(t, ue.Violations, 2)
	assert.Zero(t, model.calls, "model must not be invoked for invalid input")
	assert.Empty(t, ledger.recorded)
}

func TestService_QuotaReached(t *testing.T) {
	reset := time.Date(2026, 9, 5, 8, 0, 0, 0, time.UTC)
	model := &stubModel{reply: validReply}
	ledger := &stubLedger{status: usage.Status{HasReachedLimit: true, Remaining: 0, ResetTime: &reset}}
	svc := newTestService(model, ledger, &stubCreator{id: uuid.New()})

	_, err := svc.Generate(context.Background(), uuid.New(), validInput())
	require.Error(t, err)

	ue := Classify(err)
	assert.Equal(t, KindQuotaExceeded, ue.Kind)
	assert.Contains(t, ue.Message, "Sep 5")
	assert.Zero(t, model.calls, "model must not be invoked once the limit is reached")
}

// downStore always fails: the event store is unreachable, so every check
// degrades to the advisory cache.
type downStore struct{}

func (downStore) InsertEvent(ctx context.Context, ev *usage.GenerationEvent) error {
	return errors.New("connection refused")
}

func (downStore) ListEventsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]usage.GenerationEvent, error) {
	return nil, errors.New("connection refused")
}

func TestService_DegradedLimitSnapshotPermitsAttempt(t *testing.T) {
	// The cache holds a limit-reached snapshot but the store is down. The
	// cache is advisory only, so the attempt must still go through to the
	// model instead of being denied with quota_exceeded.
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	userID := uuid.New()
	cache := usage.NewCache(client, 10*time.Minute)
	require.NoError(t, cache.Put(ctx, userID, usage.Status{HasReachedLimit: true, Remaining: 0}))

	quotaCfg := config.QuotaConfig{WeeklyLimit: 10, Window: 7 * 24 * time.Hour, CacheTTL: 10 * time.Minute}
	ledger := usage.NewLedger(downStore{}, cache, quotaCfg)

	model := &stubModel{reply: validReply}
	creator := &stubCreator{id: uuid.New()}
	svc := NewService(NewInputValidator(testGenerationConfig()), ledger, model, creator, nil)

	result, err := svc.Generate(ctx, userID, validInput())
	require.NoError(t, err)
	assert.Equal(t, 1, model.calls)
	assert.Equal(t, 1, creator.calls)
	// The durable record failed along with the store, which downgrades to
	// a warning rather than failing the attempt.
	assert.NotEmpty(t, result.Warning)
}

func TestService_QuotaCheckFailure(t *testing.T) {
	model := &stubModel{reply: validReply}
	ledger := &stubLedger{checkErr: errors.New("store and cache both down")}
	svc := newTestService(model, ledger, &stubCreator{id: uuid.New()})

	_, err := svc.Generate(context.Background(), uuid.New(), validInput())
	require.Error(t, err)
	assert.Zero(t, model.calls)
}

func TestService_ModelErrorPropagates(t *testing.T) {
	model := &stubModel{err: newError(KindRateLimited, "status 429")}
	ledger := &stubLedger{status: usage.Status{Remaining: 10}}
	creator := &stubCreator{id: uuid.New()}
	svc := newTestService(model, ledger, creator)

	_, err := svc.Generate(context.Background(), uuid.New(), validInput())
	require.Error(t, err)

	assert.Equal(t, KindRateLimited, Classify(err).Kind)
	assert.Zero(t, creator.calls)
	assert.Empty(t, ledger.recorded, "failed attempts do not consume quota")
}

func TestService_UnparseableReply(t *testing.T) {
	model := &stubModel{reply: "I cannot help with that."}
	ledger := &stubLedger{status: usage.Status{Remaining: 10}}
	creator := &stubCreator{id: uuid.New()}
	svc := newTestService(model, ledger, creator)

	_, err := svc.Generate(context.Background(), uuid.New(), validInput())
	require.Error(t, err)

	assert.Equal(t, KindResponseFormat, Classify(err).Kind)
	assert.Zero(t, creator.calls)
	assert.Empty(t, ledger.recorded)
}

func TestService_PersistFailure(t *testing.T) {
	model := &stubModel{reply: validReply}
	ledger := &stubLedger{status: usage.Status{Remaining: 10}}
	creator := &stubCreator{err: errors.New("connection refused")}
	svc := newTestService(model, ledger, creator)

	_, err := svc.Generate(context.Background(), uuid.New(), validInput())
	require.Error(t, err)

	ue := Classify(err)
	assert.Equal(t, KindUnknown, ue.Kind)
	assert.NotContains(t, ue.Message, "connection refused")
	assert.Empty(t, ledger.recorded)
}

func TestService_RecordFailureDowngradesToWarning(t *testing.T) {
	model := &stubModel{reply: validReply}
	ledger := &stubLedger{
		status:    usage.Status{Remaining: 10},
		recordErr: errors.New("insert failed"),
	}
	svc := newTestService(model, ledger, &stubCreator{id: uuid.New()})

	result, err := svc.Generate(context.Background(), uuid.New(), validInput())
	require.NoError(t, err, "a failed usage record must not fail the attempt")

	assert.NotEmpty(t, result.Warning)
	assert.Contains(t, result.Warning, "usage tracking failed")
	assert.NotNil(t, result.Project)
}

func TestService_Usage(t *testing.T) {
	ledger := &stubLedger{status: usage.Status{Remaining: 3}}
	svc := newTestService(&stubModel{}, ledger, &stubCreator{})

	st, err := svc.Usage(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 3, st.Remaining)
}
