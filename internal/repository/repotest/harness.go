// Package repotest holds the behavioural suite every storage backend must pass. Unit tests run
// it against the memory backend, integration tests against Postgres and MongoDB.
package repotest

import (
	"context"
	"fmt"
	"time"

	"medstudy-be/internal/entity"
	"medstudy-be/internal/pkg/logger"
	"medstudy-be/internal/repository/contract"
	"medstudy-be/internal/repository/counter"
	"medstudy-be/internal/repository/implementation"

	"github.com/google/uuid"
)

type Harness struct {
	Backend   contract.Backend
	Notebooks contract.NotebookRepository
	Entries   contract.EntryRepository
}

func NewHarness(b contract.Backend) *Harness {
	log := logger.NewNopLogger()
	counters := counter.NewMaintainer(b, log, counter.WithRetry(200, time.Millisecond))
	return &Harness{
		Backend:   b,
		Notebooks: implementation.NewNotebookRepository(b, counters, log),
		Entries:   implementation.NewEntryRepository(b, counters, nil, log),
	}
}

// NativeOff hides the compound query capability of a backend so every listing goes through the
// fallback scanner. Counter primitives are not forwarded.
func NativeOff(b contract.Backend) contract.Backend {
	return &nativeOffBackend{
		Backend:   b,
		notebooks: nativeOffCollection[*entity.Notebook]{b.Notebooks()},
		entries:   nativeOffCollection[*entity.Entry]{b.Entries()},
	}
}

type nativeOffBackend struct {
	contract.Backend
	notebooks nativeOffCollection[*entity.Notebook]
	entries   nativeOffCollection[*entity.Entry]
}

func (b *nativeOffBackend) Name() string { return b.Backend.Name() + "-scan" }

func (b *nativeOffBackend) Notebooks() contract.Collection[*entity.Notebook] { return b.notebooks }

func (b *nativeOffBackend) Entries() contract.Collection[*entity.Entry] { return b.entries }

type nativeOffCollection[T entity.Record] struct {
	contract.Collection[T]
}

func (c nativeOffCollection[T]) RunCompoundQuery(context.Context, contract.CompoundQuery) ([]T, error) {
	return nil, contract.CapabilityFailure("disabled for test", nil)
}

func (c nativeOffCollection[T]) CountMatching(context.Context, contract.CompoundQuery) (int64, error) {
	return 0, contract.CapabilityFailure("disabled for test", nil)
}

// NewCascadeBeforeInsertHarness returns a harness whose entry inserts are preceded by a cascade
// delete of the target notebook, as if a notebook delete landed between the existence check and
// the write. Counters go straight to b.
func NewCascadeBeforeInsertHarness(b contract.Backend) *Harness {
	log := logger.NewNopLogger()
	counters := counter.NewMaintainer(b, log, counter.WithRetry(200, time.Millisecond))
	racing := &cascadeBeforeInsertBackend{Backend: b}
	return &Harness{
		Backend:   racing,
		Notebooks: implementation.NewNotebookRepository(b, counters, log),
		Entries:   implementation.NewEntryRepository(racing, counters, nil, log),
	}
}

type cascadeBeforeInsertBackend struct {
	contract.Backend
}

func (b *cascadeBeforeInsertBackend) Entries() contract.Collection[*entity.Entry] {
	return cascadeBeforeInsertCollection{Collection: b.Backend.Entries(), backend: b.Backend}
}

type cascadeBeforeInsertCollection struct {
	contract.Collection[*entity.Entry]
	backend contract.Backend
}

func (c cascadeBeforeInsertCollection) Insert(ctx context.Context, e *entity.Entry) error {
	if err := c.backend.BatchDelete(ctx, e.NotebookId); err != nil {
		return err
	}
	return c.Collection.Insert(ctx, e)
}

// Fixture is a notebook with a deterministic spread of entries.
type Fixture struct {
	OwnerId  uuid.UUID
	Notebook *entity.Notebook
	Entries  []*entity.Entry
}

var (
	subjects     = []string{"Cardiology", "Nephrology", "Pharmacology", "anatomy", "Cardiology"}
	categories   = []string{"concept", "recall", "", "concept"}
	difficulties = []entity.Difficulty{entity.DifficultyEasy, entity.DifficultyMedium, entity.DifficultyHard, entity.DifficultyVeryHard}
	tagSets      = [][]string{{"renal"}, {"acid-base", "renal"}, nil, {"cardio"}, {"acid-base"}}
)

// Seed creates a notebook for a fresh owner with n entries. Entries 0, 3 and 6 mention
// "acidosis" in their note, every third entry is resolved.
func Seed(ctx context.Context, h *Harness, n int) (*Fixture, error) {
	owner := uuid.New()
	nb, err := h.Notebooks.Create(ctx, &entity.Notebook{
		OwnerId:     owner,
		Title:       "Renal physiology",
		Description: "Mistakes from block 3",
		Tags:        []string{"block-3"},
	})
	if err != nil {
		return nil, err
	}

	f := &Fixture{OwnerId: owner, Notebook: nb}
	for i := 0; i < n; i++ {
		note := fmt.Sprintf("Mixed up the compensation rule #%d", i)
		if i%3 == 0 && i < 9 {
			note = fmt.Sprintf("Missed the metabolic Acidosis anion gap #%d", i)
		}
		e, err := h.Entries.Create(ctx, owner, &entity.Entry{
			NotebookId:    nb.Id,
			QuestionId:    fmt.Sprintf("q-%03d", i),
			Note:          note,
			Explanation:   "Winter's formula predicts the expected pCO2",
			KeyPoints:     []string{"pCO2 = 1.5 x HCO3 + 8 +/- 2"},
			Tags:          tagSets[i%len(tagSets)],
			Category:      categories[i%len(categories)],
			Statement:     fmt.Sprintf("Question statement %d", i),
			CorrectAnswer: "C",
			Subject:       subjects[i%len(subjects)],
			Difficulty:    difficulties[i%len(difficulties)],
			Confidence:    i%5 + 1,
			IsResolved:    i%3 == 2,
		})
		if err != nil {
			return nil, err
		}
		f.Entries = append(f.Entries, e)
	}
	return f, nil
}
