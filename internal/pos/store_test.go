package pos

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moka_pos/internal/models"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewStore(rdb, "1", NewBroadcaster(rdb, "1"), nil), mr, rdb
}

func sampleSnapshot() models.CartSnapshot {
	return models.CartSnapshot{
		Lines: []models.CartLine{
			{ID: "l1", ProductID: "p1", ProductName: "Espresso", UnitPrice: 2.50, Quantity: 2, LineTotal: 5.00},
		},
		Customer: &models.SelectedCustomer{ID: "c1", Name: "Alice"},
	}
}

func TestLoadEmptyCart(t *testing.T) {
	store, _, _ := newTestStore(t)

	snap := store.Load(context.Background())
	assert.Empty(t, snap.Lines)
	assert.Nil(t, snap.Customer)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t)

	store.Save(ctx, sampleSnapshot(), AnnounceCart)

	snap := store.Load(ctx)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, "Espresso", snap.Lines[0].ProductName)
	assert.Equal(t, 5.00, snap.Lines[0].LineTotal)
	require.NotNil(t, snap.Customer)
	assert.Equal(t, "Alice", snap.Customer.Name)
}

func TestLoadMalformedCartStartsFresh(t *testing.T) {
	ctx := context.Background()
	store, mr, _ := newTestStore(t)

	mr.Set("till:1:cart", "{pas du json")
	mr.Set("till:1:customer", "][")

	snap := store.Load(ctx)
	assert.Empty(t, snap.Lines)
	assert.Nil(t, snap.Customer)
}

func TestSaveWithoutCustomerDropsKey(t *testing.T) {
	ctx := context.Background()
	store, mr, _ := newTestStore(t)

	store.Save(ctx, sampleSnapshot(), AnnounceCart)
	require.True(t, mr.Exists("till:1:customer"))

	snap := sampleSnapshot()
	snap.Customer = nil
	store.Save(ctx, snap, AnnounceCustomer)
	assert.False(t, mr.Exists("till:1:customer"))
}

func TestSavePersistsBeforeAnnouncing(t *testing.T) {
	ctx := context.Background()
	store, _, rdb := newTestStore(t)

	sub := rdb.Subscribe(ctx, TillChannel("1"))
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	store.Save(ctx, sampleSnapshot(), AnnounceCart)

	// À réception de l'annonce, l'état persisté doit déjà refléter la mutation
	select {
	case msg := <-sub.Channel():
		var ann Announcement
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ann))
		assert.Equal(t, AnnounceCart, ann.Type)

		snap := store.Load(ctx)
		require.Len(t, snap.Lines, 1)
		assert.Equal(t, "Espresso", snap.Lines[0].ProductName)
	case <-time.After(2 * time.Second):
		t.Fatal("annonce jamais reçue")
	}
}

func TestAnnounceWithoutRedisIsNoop(t *testing.T) {
	var b *Broadcaster
	// Ne doit pas paniquer
	b.Announce(context.Background(), AnnounceCart, sampleSnapshot())

	NewBroadcaster(nil, "1").Announce(context.Background(), AnnounceCart, sampleSnapshot())
}
