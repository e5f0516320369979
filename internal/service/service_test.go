package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"medstudy-be/internal/dto"
	"medstudy-be/internal/entity"
	"medstudy-be/internal/pkg/logger"
	"medstudy-be/internal/repository/contract"
	"medstudy-be/internal/repository/memory"
	"medstudy-be/internal/repository/repotest"
	"medstudy-be/internal/service"
	"medstudy-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

func (p *recordingPublisher) last(eventType string) events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.events) - 1; i >= 0; i-- {
		if p.events[i].EventType() == eventType {
			return p.events[i]
		}
	}
	return nil
}

type fixture struct {
	h         *repotest.Harness
	publisher *recordingPublisher
	notebooks service.INotebookService
	notes     service.IErrorNoteService
}

func newFixture(scheduler func(service.IEventPublisher) service.IReviewScheduler) *fixture {
	h := repotest.NewHarness(memory.NewBackend())
	pub := &recordingPublisher{}
	log := logger.NewNopLogger()
	return &fixture{
		h:         h,
		publisher: pub,
		notebooks: service.NewNotebookService(h.Notebooks, pub, log),
		notes:     service.NewErrorNoteService(h.Entries, scheduler(pub), pub, log),
	}
}

func schedulerOn(pub service.IEventPublisher) service.IReviewScheduler {
	return service.NewReviewScheduler(pub)
}

func schedulerOff(service.IEventPublisher) service.IReviewScheduler {
	return service.NewReviewScheduler(nil)
}

func (f *fixture) createNotebook(t *testing.T, owner uuid.UUID) *dto.NotebookResponse {
	t.Helper()
	nb, err := f.notebooks.Create(context.Background(), owner, &dto.CreateNotebookRequest{
		Title: "Cardiology",
		Tags:  []string{"cardio"},
	})
	require.NoError(t, err)
	return nb
}

func (f *fixture) createNote(t *testing.T, owner uuid.UUID, notebookId uuid.UUID) *dto.CreateErrorNoteResponse {
	t.Helper()
	res, err := f.notes.Create(context.Background(), owner, &dto.CreateErrorNoteRequest{
		NotebookId:    notebookId,
		QuestionId:    "q-1",
		Note:          "Confused S3 with S4",
		Explanation:   "S3 is early diastolic, S4 late diastolic",
		KeyPoints:     []string{"S3 volume overload", "S4 stiff ventricle"},
		Statement:     "Which heart sound...",
		CorrectAnswer: "B",
		Subject:       "Cardiology",
		Difficulty:    "hard",
	})
	require.NoError(t, err)
	return res
}

func TestCreateErrorNoteEnrollsForReview(t *testing.T) {
	f := newFixture(schedulerOn)
	owner := uuid.New()
	nb := f.createNotebook(t, owner)

	res := f.createNote(t, owner, nb.Id)

	assert.True(t, res.AddedToReview)
	assert.True(t, res.Entry.IsInReviewSystem)
	require.NotNil(t, res.Entry.ReviewItemId)
	assert.Equal(t, entity.DefaultConfidence, res.Entry.Confidence)
	assert.Equal(t, []string{events.NotebookCreated, events.ErrorNoteCreated, events.ErrorNoteEnrolled}, f.publisher.types())

	enrolled := f.publisher.last(events.ErrorNoteEnrolled)
	assert.Equal(t, *res.Entry.ReviewItemId, enrolled.Payload()["review_item_id"])
	assert.Equal(t, res.Entry.Id.String(), enrolled.Payload()["content_id"])

	shown, err := f.notebooks.Show(context.Background(), owner, nb.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, shown.EntryCount)
}

func TestCreateErrorNoteKeepsEntryWhenReviewUnavailable(t *testing.T) {
	f := newFixture(schedulerOff)
	owner := uuid.New()
	nb := f.createNotebook(t, owner)

	res := f.createNote(t, owner, nb.Id)
	assert.False(t, res.AddedToReview)
	assert.False(t, res.Entry.IsInReviewSystem)
	assert.Nil(t, res.Entry.ReviewItemId)

	stored, err := f.notes.Show(context.Background(), owner, res.Entry.Id)
	require.NoError(t, err)
	assert.False(t, stored.IsInReviewSystem)
}

func TestEventFailuresDoNotFailRequests(t *testing.T) {
	f := newFixture(schedulerOff)
	f.publisher.err = errors.New("nats down")
	owner := uuid.New()

	nb := f.createNotebook(t, owner)
	assert.NoError(t, f.notebooks.Delete(context.Background(), owner, nb.Id))
}

func TestCreateErrorNoteInForeignNotebook(t *testing.T) {
	f := newFixture(schedulerOn)
	nb := f.createNotebook(t, uuid.New())

	_, err := f.notes.Create(context.Background(), uuid.New(), &dto.CreateErrorNoteRequest{
		NotebookId:  nb.Id,
		Note:        "n",
		Explanation: "e",
	})
	assert.ErrorIs(t, err, contract.ErrForbidden)
}

func TestRecordReview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(schedulerOn)
	owner := uuid.New()
	nb := f.createNotebook(t, owner)
	note := f.createNote(t, owner, nb.Id)

	bad := 4
	_, err := f.notes.RecordReview(ctx, owner, note.Entry.Id, &dto.RecordReviewRequest{Grade: &bad})
	assert.True(t, contract.IsValidationError(err))

	good := 2
	ms := int64(4200)
	reviewed, err := f.notes.RecordReview(ctx, owner, note.Entry.Id, &dto.RecordReviewRequest{Grade: &good, ReviewTimeMs: &ms})
	require.NoError(t, err)
	require.NotNil(t, reviewed.LastReviewedAt)

	event := f.publisher.last(events.ErrorNoteReviewed)
	require.NotNil(t, event)
	assert.Equal(t, 2, event.Payload()["grade"])
	assert.Equal(t, int64(4200), event.Payload()["review_time_ms"])

	_, err = f.notes.RecordReview(ctx, uuid.New(), note.Entry.Id, &dto.RecordReviewRequest{Grade: &good})
	assert.ErrorIs(t, err, contract.ErrForbidden)

	_, err = f.notes.RecordReview(ctx, owner, uuid.New(), &dto.RecordReviewRequest{Grade: &good})
	assert.ErrorIs(t, err, contract.ErrNotFound)
}

func TestRecordReviewRequiresEnrollment(t *testing.T) {
	f := newFixture(schedulerOff)
	owner := uuid.New()
	nb := f.createNotebook(t, owner)
	note := f.createNote(t, owner, nb.Id)

	grade := 3
	_, err := f.notes.RecordReview(context.Background(), owner, note.Entry.Id, &dto.RecordReviewRequest{Grade: &grade})
	assert.True(t, contract.IsValidationError(err))
}

func TestPrepareForReview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(schedulerOn)
	owner := uuid.New()
	nb := f.createNotebook(t, owner)
	note := f.createNote(t, owner, nb.Id)

	prepared, err := f.notes.PrepareForReview(ctx, owner, note.Entry.Id)
	require.NoError(t, err)
	assert.Equal(t, "B", prepared.QuestionContext.CorrectAnswer)
	assert.Equal(t, []string{"S3 volume overload", "S4 stiff ventricle"}, prepared.UserContent.KeyPoints)
	assert.Contains(t, prepared.ReviewPrompt, `"Cardiology"`)
	assert.Contains(t, prepared.ReviewPrompt, "S3 volume overload, S4 stiff ventricle")

	public := true
	_, err = f.notebooks.Update(ctx, owner, &dto.UpdateNotebookRequest{Id: nb.Id, IsPublic: &public})
	require.NoError(t, err)

	stranger := uuid.New()
	shown, err := f.notes.Show(ctx, stranger, note.Entry.Id)
	require.NoError(t, err, "public entries are readable")
	assert.Equal(t, note.Entry.Id, shown.Id)

	_, err = f.notes.PrepareForReview(ctx, stranger, note.Entry.Id)
	assert.ErrorIs(t, err, contract.ErrForbidden)
}

func TestHandleReviewItemRemoved(t *testing.T) {
	ctx := context.Background()
	f := newFixture(schedulerOn)
	owner := uuid.New()
	nb := f.createNotebook(t, owner)
	note := f.createNote(t, owner, nb.Id)

	removed := events.New(events.ReviewItemRemoved, map[string]interface{}{
		"content_type": "ERROR_NOTEBOOK",
		"content_id":   note.Entry.Id.String(),
		"user_id":      owner.String(),
	})
	require.NoError(t, f.notes.HandleReviewItemRemoved(ctx, removed))

	shown, err := f.notes.Show(ctx, owner, note.Entry.Id)
	require.NoError(t, err)
	assert.False(t, shown.IsInReviewSystem)
	assert.Nil(t, shown.ReviewItemId)

	foreign := events.New(events.ReviewItemRemoved, map[string]interface{}{
		"content_type": "ERROR_NOTEBOOK",
		"content_id":   note.Entry.Id.String(),
		"user_id":      uuid.New().String(),
	})
	assert.NoError(t, f.notes.HandleReviewItemRemoved(ctx, foreign))

	flashcard := events.New(events.ReviewItemRemoved, map[string]interface{}{"content_type": "FLASHCARD"})
	assert.NoError(t, f.notes.HandleReviewItemRemoved(ctx, flashcard))
}

func TestListingsAndFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(schedulerOff)
	owner := uuid.New()
	nb := f.createNotebook(t, owner)
	for i := 0; i < 3; i++ {
		f.createNote(t, owner, nb.Id)
	}

	page, err := f.notes.GetByNotebook(ctx, owner, nb.Id, &dto.ListQuery{Limit: 2}, nil)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(3), page.Total)
	assert.True(t, page.HasMore)
	require.NotNil(t, page.NextCursor)

	next, err := f.notes.GetByNotebook(ctx, owner, nb.Id, &dto.ListQuery{Limit: 2, AfterId: page.NextCursor.String()}, nil)
	require.NoError(t, err)
	assert.Len(t, next.Items, 1)
	assert.False(t, next.HasMore)

	resolved, err := f.notes.GetAll(ctx, owner, nil, &dto.ErrorNoteFilterQuery{Resolved: "true"})
	require.NoError(t, err)
	assert.Empty(t, resolved.Items)

	_, err = f.notes.GetAll(ctx, owner, &dto.ListQuery{AfterId: "not-a-uuid"}, nil)
	assert.True(t, contract.IsValidationError(err))

	_, err = f.notes.GetByNotebook(ctx, owner, uuid.New(), nil, nil)
	assert.ErrorIs(t, err, contract.ErrNotFound)

	notebooks, err := f.notebooks.GetAll(ctx, owner, &dto.ListQuery{Search: "cardio"})
	require.NoError(t, err)
	assert.Len(t, notebooks.Items, 1)
}

func TestNotebookStatsAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(schedulerOff)
	owner := uuid.New()
	nb := f.createNotebook(t, owner)
	note := f.createNote(t, owner, nb.Id)

	_, err := f.notes.ToggleResolved(ctx, owner, note.Entry.Id)
	require.NoError(t, err)

	stats, err := f.notebooks.Stats(ctx, owner, nb.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalEntries)
	assert.Equal(t, 1, stats.ResolvedEntries)

	assert.ErrorIs(t, f.notebooks.Delete(ctx, uuid.New(), nb.Id), contract.ErrForbidden)
	require.NoError(t, f.notebooks.Delete(ctx, owner, nb.Id))
	assert.ErrorIs(t, f.notebooks.Delete(ctx, owner, nb.Id), contract.ErrNotFound)
	assert.Equal(t, events.NotebookDeleted, f.publisher.types()[len(f.publisher.types())-1])

	_, err = f.notes.Show(ctx, owner, note.Entry.Id)
	assert.ErrorIs(t, err, contract.ErrNotFound)
}

func TestRecountConsumerRepairsCounter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := repotest.NewHarness(memory.NewBackend())
	f, err := repotest.Seed(ctx, h, 4)
	require.NoError(t, err)
	require.NoError(t, h.Backend.SetEntryCount(ctx, f.Notebook.Id, 42, nil, entity.Now()))

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	consumer := service.NewConsumerService(pubSub, "recount", h.Notebooks, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	queue := service.NewPublisherService("recount", pubSub)
	require.NoError(t, queue.EnqueueRecount(ctx, f.Notebook.Id))

	require.Eventually(t, func() bool {
		nb, err := h.Notebooks.FindById(ctx, f.Notebook.Id)
		return err == nil && nb.EntryCount == 4 && nb.LastEntryAt != nil
	}, 2*time.Second, 10*time.Millisecond)
}
