package adoptions_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"pet-adoption/internal/adapters/storage/memory"
	"pet-adoption/internal/domain/adoptions"
	"pet-adoption/internal/domain/notifications"
	"pet-adoption/internal/domain/pets"

	"github.com/stretchr/testify/require"
)

// clock avanza un segundo por lectura para que el orden por fecha sea determinista.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

// tb lo cumplen *testing.T y *rapid.T.
type tb interface {
	require.TestingT
	Helper()
}

type harness struct {
	store  *memory.Store
	pets   *pets.Service
	inbox  *notifications.Service
	engine *adoptions.Service
}

func newHarness(opts ...adoptions.Option) *harness {
	return newHarnessWithTx(nil, opts...)
}

// newHarnessWithTx permite envolver el TxRunner del store (p.ej. para inyectar fallas).
func newHarnessWithTx(wrap func(adoptions.TxRunner) adoptions.TxRunner, opts ...adoptions.Option) *harness {
	store := memory.NewStore()
	petsSvc := pets.NewService(store.Pets())

	var tx adoptions.TxRunner = store
	if wrap != nil {
		tx = wrap(store)
	}
	opts = append([]adoptions.Option{adoptions.WithClock(newClock().Now)}, opts...)

	return &harness{
		store:  store,
		pets:   petsSvc,
		inbox:  notifications.NewService(store.Notifications(), petsSvc),
		engine: adoptions.NewService(tx, store.Adoptions(), petsSvc, opts...),
	}
}

func (h *harness) createPet(t tb, ownerID, name string) pets.Pet {
	t.Helper()
	p, err := h.pets.Create(context.Background(), ownerID, pets.CreateInput{
		Name:        name,
		Category:    pets.CategoryCats,
		Breed:       "Siamese",
		Age:         "1 year",
		Weight:      "4 kg",
		Gender:      pets.GenderFemale,
		Description: "Calm " + name,
		ImageURL:    "https://img.example.com/" + name + ".jpg",
	})
	require.NoError(t, err)
	return p
}

func (h *harness) petStatus(t tb, id string) pets.Status {
	t.Helper()
	p, err := h.pets.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Status
}

func (h *harness) inboxOf(t tb, userID string) []notifications.Item {
	t.Helper()
	in, err := h.inbox.List(context.Background(), userID)
	require.NoError(t, err)
	return in.Items
}

func requestInput(petID string) adoptions.RequestInput {
	return adoptions.RequestInput{
		PetID:        petID,
		Reason:       "Quiet flat, lots of love",
		Experience:   "Had cats for 10 years",
		ContactName:  "Ana",
		ContactEmail: "ana@example.com",
		ContactPhone: "555-0101",
	}
}

func approve() adoptions.DecideInput { return adoptions.DecideInput{Status: adoptions.StatusApproved} }
func reject() adoptions.DecideInput  { return adoptions.DecideInput{Status: adoptions.StatusRejected} }

var errSinkDown = errors.New("sink down")

type failingSink struct{}

func (failingSink) Create(context.Context, notifications.Notification) error { return errSinkDown }

type failingSinkTx struct {
	adoptions.Tx
}

func (failingSinkTx) Notifications() notifications.Sink { return failingSink{} }

// failingRunner corre la transición real pero con un sink que siempre falla.
type failingRunner struct {
	inner adoptions.TxRunner
}

func (r failingRunner) WithinTx(ctx context.Context, fn func(ctx context.Context, tx adoptions.Tx) error) error {
	return r.inner.WithinTx(ctx, func(ctx context.Context, tx adoptions.Tx) error {
		return fn(ctx, failingSinkTx{tx})
	})
}
