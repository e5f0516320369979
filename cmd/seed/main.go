package main

import (
	"context"
	"log"
	"os"

	"medstudy-be/internal/bootstrap"
	"medstudy-be/internal/config"
	"medstudy-be/internal/entity"
	"medstudy-be/internal/pkg/logger"
	"medstudy-be/internal/repository/counter"
	"medstudy-be/internal/repository/implementation"

	"github.com/google/uuid"
)

type seedEntry struct {
	note        string
	explanation string
	keyPoints   []string
	category    string
	subject     string
	difficulty  entity.Difficulty
	resolved    bool
}

type seedNotebook struct {
	title       string
	description string
	tags        []string
	isPublic    bool
	entries     []seedEntry
}

var demoNotebooks = []seedNotebook{
	{
		title:       "Cardiology",
		description: "Heart sounds, murmurs and ECG traps",
		tags:        []string{"cardio", "internal-medicine"},
		isPublic:    true,
		entries: []seedEntry{
			{
				note:        "Picked S4 for a dilated ventricle",
				explanation: "S3 is volume overload in early diastole, S4 is a stiff ventricle in late diastole",
				keyPoints:   []string{"S3 volume overload", "S4 stiff ventricle"},
				category:    "physical-exam",
				subject:     "Cardiology",
				difficulty:  entity.DifficultyHard,
			},
			{
				note:        "Missed the delta wave",
				explanation: "Short PR with a slurred QRS upstroke means pre-excitation",
				keyPoints:   []string{"short PR", "delta wave", "avoid AV nodal blockers in AF"},
				category:    "ecg",
				subject:     "Cardiology",
				difficulty:  entity.DifficultyMedium,
				resolved:    true,
			},
		},
	},
	{
		title:       "Nephrology",
		description: "Acid-base and electrolytes",
		tags:        []string{"renal"},
		entries: []seedEntry{
			{
				note:        "Forgot Winter's formula",
				explanation: "Expected pCO2 = 1.5 x HCO3 + 8 +/- 2 in metabolic acidosis",
				keyPoints:   []string{"pCO2 = 1.5 x HCO3 + 8 +/- 2"},
				category:    "acid-base",
				subject:     "Nephrology",
				difficulty:  entity.DifficultyVeryHard,
			},
		},
	},
}

func main() {
	cfg := config.Load()
	sysLogger := logger.NewIsolatedLogger(cfg.App.LogFilePath)
	defer sysLogger.Sync()

	ownerStr := os.Getenv("SEED_OWNER_ID")
	if ownerStr == "" {
		log.Fatal("Error: SEED_OWNER_ID is not set")
	}
	ownerId, err := uuid.Parse(ownerStr)
	if err != nil {
		log.Fatalf("Error: SEED_OWNER_ID is not a uuid: %v", err)
	}

	ctx := context.Background()
	backend, closeBackend, err := bootstrap.OpenBackend(ctx, cfg, sysLogger)
	if err != nil {
		log.Fatal("Error: Failed to open storage backend:", err)
	}
	defer closeBackend()

	counters := counter.NewMaintainer(backend, sysLogger)
	notebooks := implementation.NewNotebookRepository(backend, counters, sysLogger)
	entries := implementation.NewEntryRepository(backend, counters, nil, sysLogger)

	existing, err := notebooks.FindByOwner(ctx, ownerId, entity.Filter{}, entity.DefaultPagination())
	if err != nil {
		log.Fatal("Error: Failed to list notebooks:", err)
	}
	if existing.Total > 0 {
		log.Printf("Owner %s already has %d notebooks, skipping...", ownerId, existing.Total)
		return
	}

	log.Println("Seeding demo notebooks...")
	for _, nb := range demoNotebooks {
		created, err := notebooks.Create(ctx, &entity.Notebook{
			OwnerId:     ownerId,
			Title:       nb.title,
			Description: nb.description,
			Tags:        nb.tags,
			IsPublic:    nb.isPublic,
		})
		if err != nil {
			log.Printf("Error creating notebook '%s': %v", nb.title, err)
			continue
		}

		for _, e := range nb.entries {
			if _, err := entries.Create(ctx, ownerId, &entity.Entry{
				NotebookId:  created.Id,
				Note:        e.note,
				Explanation: e.explanation,
				KeyPoints:   e.keyPoints,
				Category:    e.category,
				Subject:     e.subject,
				Difficulty:  e.difficulty,
				IsResolved:  e.resolved,
			}); err != nil {
				log.Printf("Error creating entry in '%s': %v", nb.title, err)
			}
		}
		log.Printf("Created notebook: %s (%d entries)", nb.title, len(nb.entries))
	}

	log.Println("Seeding completed!")
}
