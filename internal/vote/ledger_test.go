package vote

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/SlpAus/coffee-vote-backend/internal/platform/config"
	"github.com/SlpAus/coffee-vote-backend/internal/platform/database"
	"github.com/SlpAus/coffee-vote-backend/internal/variant"
)

type testStore struct {
	variants variant.Repository
	votes    Repository
}

func newSqliteStore(t *testing.T) testStore {
	t.Helper()
	db, err := database.OpenDB(config.StorageConfig{
		Driver: config.DriverSqlite,
		Sqlite: config.SqliteConfig{Path: filepath.Join(t.TempDir(), "coffee.db")},
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	variantRepo := variant.NewGormRepository(db)
	if err := variantRepo.Migrate(); err != nil {
		t.Fatalf("failed to migrate variants: %v", err)
	}
	voteRepo := NewGormRepository(db)
	if err := voteRepo.Migrate(); err != nil {
		t.Fatalf("failed to migrate votes: %v", err)
	}
	return testStore{variants: variantRepo, votes: voteRepo}
}

var backends = map[string]func(t *testing.T) testStore{
	"memory": func(*testing.T) testStore {
		return testStore{variants: variant.NewMemoryRepository(), votes: NewMemoryRepository()}
	},
	"sqlite": newSqliteStore,
}

// newTestLedger 创建账本并注册给定的品种
func newTestLedger(t *testing.T, newStore func(t *testing.T) testStore, variants ...string) (*Ledger, *variant.Registry) {
	t.Helper()
	store := newStore(t)
	registry := variant.NewRegistry(store.variants)
	if _, err := registry.Seed(context.Background(), variants); err != nil {
		t.Fatalf("failed to seed variants: %v", err)
	}
	return NewLedger(registry, store.votes), registry
}

func TestSubmitRejectsCaseInsensitiveDuplicate(t *testing.T) {
	for backend, newStore := range backends {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			ledger, _ := newTestLedger(t, newStore, "Espresso")

			if err := ledger.Submit(ctx, "Espresso", "Max", Upvote); err != nil {
				t.Fatalf("first Submit returned error: %v", err)
			}
			for _, name := range []string{"max", "MAX", "Max"} {
				if err := ledger.Submit(ctx, "Espresso", name, Downvote); !errors.Is(err, ErrDuplicateVote) {
					t.Errorf("Submit(%q): expected ErrDuplicateVote, got %v", name, err)
				}
			}

			aggregated, err := ledger.Aggregate(ctx)
			if err != nil {
				t.Fatalf("Aggregate returned error: %v", err)
			}
			if got := len(aggregated[0].Votes); got != 1 {
				t.Errorf("expected exactly one stored vote, got %d", got)
			}
		})
	}
}

func TestSubmitAcceptsDistinctNamesAndOtherVariants(t *testing.T) {
	for backend, newStore := range backends {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			ledger, _ := newTestLedger(t, newStore, "Espresso", "Latte")

			submissions := []struct {
				variant string
				name    string
				choice  Choice
			}{
				{"Espresso", "Max", Upvote},
				{"Espresso", "Maxi", Downvote},
				{"Latte", "max", Upvote},
			}
			for _, s := range submissions {
				if err := ledger.Submit(ctx, s.variant, s.name, s.choice); err != nil {
					t.Errorf("Submit(%s, %s) returned error: %v", s.variant, s.name, err)
				}
			}
		})
	}
}

func TestSubmitUnknownVariantCreatesNothing(t *testing.T) {
	for backend, newStore := range backends {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			ledger, _ := newTestLedger(t, newStore, "Espresso")

			if err := ledger.Submit(ctx, "Mocha", "Max", Upvote); !errors.Is(err, ErrVariantNotFound) {
				t.Fatalf("expected ErrVariantNotFound, got %v", err)
			}

			export, err := ledger.Export(ctx)
			if err != nil {
				t.Fatalf("Export returned error: %v", err)
			}
			if want := map[string]map[string]string{"Espresso": {}}; !reflect.DeepEqual(export, want) {
				t.Errorf("expected %v, got %v", want, export)
			}
		})
	}
}

func TestSubmitRejectsMalformedInput(t *testing.T) {
	ledger, _ := newTestLedger(t, backends["memory"], "Espresso")
	ctx := context.Background()

	if err := ledger.Submit(ctx, "Espresso", "Max", Choice(2)); !errors.Is(err, ErrInvalidChoice) {
		t.Errorf("expected ErrInvalidChoice, got %v", err)
	}
	if err := ledger.Submit(ctx, "Espresso", " ", Upvote); !errors.Is(err, ErrInvalidVoterName) {
		t.Errorf("expected ErrInvalidVoterName, got %v", err)
	}
	if !IsMalformed(ErrInvalidChoice) || IsMalformed(ErrDuplicateVote) {
		t.Error("IsMalformed classified errors incorrectly")
	}
}

func TestAggregateAndSummarize(t *testing.T) {
	for backend, newStore := range backends {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			ledger, registry := newTestLedger(t, newStore, "Espresso", "Latte")

			for _, v := range []struct {
				name   string
				choice Choice
			}{
				{"Max", Upvote},
				{"Ana", Upvote},
				{"Bo", Downvote},
			} {
				if err := ledger.Submit(ctx, "Espresso", v.name, v.choice); err != nil {
					t.Fatalf("Submit(%s) returned error: %v", v.name, err)
				}
			}
			if err := registry.Create(ctx, "Mocha"); err != nil {
				t.Fatalf("Create returned error: %v", err)
			}

			aggregated, err := ledger.Aggregate(ctx)
			if err != nil {
				t.Fatalf("Aggregate returned error: %v", err)
			}

			var order []string
			for _, vv := range aggregated {
				order = append(order, vv.Variant)
			}
			if want := []string{"Espresso", "Latte", "Mocha"}; !reflect.DeepEqual(order, want) {
				t.Fatalf("expected variants %v, got %v", want, order)
			}

			espresso := aggregated[0]
			if len(espresso.Votes) != 3 {
				t.Fatalf("expected 3 Espresso votes, got %d", len(espresso.Votes))
			}
			var names []string
			for _, v := range espresso.Votes {
				names = append(names, v.Name)
			}
			if want := []string{"Max", "Ana", "Bo"}; !reflect.DeepEqual(names, want) {
				t.Errorf("expected votes in insertion order %v, got %v", want, names)
			}
			if got := espresso.Summary(); got != "+2 / -1" {
				t.Errorf("expected '+2 / -1', got %q", got)
			}
			if got := aggregated[1].Summary(); got != "+0 / -0" {
				t.Errorf("expected '+0 / -0' for Latte, got %q", got)
			}
		})
	}
}

func TestExport(t *testing.T) {
	for backend, newStore := range backends {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			ledger, _ := newTestLedger(t, newStore, "Espresso", "Latte")

			if err := ledger.Submit(ctx, "Espresso", "Max", Upvote); err != nil {
				t.Fatalf("Submit returned error: %v", err)
			}
			if err := ledger.Submit(ctx, "Latte", "Max", Downvote); err != nil {
				t.Fatalf("Submit returned error: %v", err)
			}

			export, err := ledger.Export(ctx)
			if err != nil {
				t.Fatalf("Export returned error: %v", err)
			}
			want := map[string]map[string]string{
				"Espresso": {"Max": "+"},
				"Latte":    {"Max": "-"},
			}
			if !reflect.DeepEqual(export, want) {
				t.Errorf("expected %v, got %v", want, export)
			}
		})
	}
}

func TestConcurrentSubmitSameNameOnlyOneWins(t *testing.T) {
	for backend, newStore := range backends {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			ledger, _ := newTestLedger(t, newStore, "Espresso")

			const workers = 20
			names := []string{"Max", "max", "MAX", "mAx"}

			var wg sync.WaitGroup
			var mu sync.Mutex
			successes, duplicates := 0, 0
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					err := ledger.Submit(ctx, "Espresso", names[i%len(names)], Choice(i%2))
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						successes++
					case errors.Is(err, ErrDuplicateVote):
						duplicates++
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}(i)
			}
			wg.Wait()

			if successes != 1 || duplicates != workers-1 {
				t.Errorf("expected 1 success and %d duplicates, got %d and %d", workers-1, successes, duplicates)
			}
		})
	}
}

func TestRepositoryRejectsDuplicateWithoutLedgerLock(t *testing.T) {
	// 仓储自身也必须保证唯一性，多个进程共享同一个数据库时账本锁不起作用
	for backend, newStore := range backends {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)
			if err := store.variants.Create(ctx, "Espresso"); err != nil {
				t.Fatalf("Create returned error: %v", err)
			}

			if err := store.votes.Append(ctx, Vote{Variant: "Espresso", Name: "Émile", Choice: Upvote}); err != nil {
				t.Fatalf("Append returned error: %v", err)
			}
			err := store.votes.Append(ctx, Vote{Variant: "Espresso", Name: "ÉMILE", Choice: Downvote})
			if !errors.Is(err, ErrDuplicateVote) {
				t.Errorf("expected ErrDuplicateVote for a case-folded match, got %v", err)
			}
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		raw     string
		want    Choice
		wantErr bool
	}{
		{"1", Upvote, false},
		{"0", Downvote, false},
		{"2", 0, true},
		{"-1", 0, true},
		{"yes", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseChoice(tt.raw)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidChoice) {
				t.Errorf("ParseChoice(%q): expected ErrInvalidChoice, got %v", tt.raw, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseChoice(%q) = %v, %v; want %v", tt.raw, got, err, tt.want)
		}
	}
}

func TestMessage(t *testing.T) {
	tests := map[error]string{
		nil:                "thanks for voting!",
		ErrDuplicateVote:   "no double votes!",
		ErrVariantNotFound: "coffee variant not found!",
		ErrInvalidChoice:   "unexpected value for the vote",
		errors.New("disk"): "unexpected error",
	}
	for err, want := range tests {
		if got := Message(err); got != want {
			t.Errorf("Message(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestSubmitComparesLowercasedNames(t *testing.T) {
	for backend, newStore := range backends {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			ledger, _ := newTestLedger(t, newStore, "Espresso")

			// "ß" 的小写仍是 "ß"，与 "ss" 不同
			if err := ledger.Submit(ctx, "Espresso", "ß", Upvote); err != nil {
				t.Fatalf("Submit(ß) returned error: %v", err)
			}
			if err := ledger.Submit(ctx, "Espresso", "SS", Downvote); err != nil {
				t.Fatalf("Submit(SS) returned error: %v", err)
			}
			if err := ledger.Submit(ctx, "Espresso", "ss", Upvote); !errors.Is(err, ErrDuplicateVote) {
				t.Errorf("Submit(ss): expected ErrDuplicateVote, got %v", err)
			}
		})
	}
}
