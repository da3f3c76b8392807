package eventlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNewestFirst(t *testing.T) {
	t.Parallel()

	log := NewLog()
	defer log.Close()

	log.Add("primero", 0)
	log.Add("segundo", 0)
	log.Add("tercero", 0)

	entries := log.List()
	require.Len(t, entries, 3, "expected three entries")
	assert.Equal(t, "tercero", entries[0].Message, "expected newest entry first")
	assert.Equal(t, "primero", entries[2].Message, "expected oldest entry last")
}

func TestPersistentEntryNeverExpires(t *testing.T) {
	t.Parallel()

	log := NewLog()
	defer log.Close()

	log.Add("permanente", 0)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 1, log.Len(), "expected persistent entry to remain")
	assert.True(t, log.List()[0].Persistent, "expected entry marked persistent")
}

func TestExpiryRemovesOnlyThatEntry(t *testing.T) {
	t.Parallel()

	log := NewLog()
	defer log.Close()

	log.Add("efímero", 20*time.Millisecond)
	log.Add("duradero", 0)

	require.Equal(t, 2, log.Len(), "expected both entries before expiry")

	require.Eventually(t, func() bool {
		return log.Len() == 1
	}, time.Second, 5*time.Millisecond, "expected expiring entry to be removed")

	entries := log.List()
	require.Len(t, entries, 1, "expected one surviving entry")
	assert.Equal(t, "duradero", entries[0].Message, "expected the persistent entry to survive")
}

func TestAddVideoIsPersistent(t *testing.T) {
	t.Parallel()

	log := NewLog()
	defer log.Close()

	entry := log.AddVideo("Video grabado", "http://station.test/videos/rec_001.mp4")
	assert.True(t, entry.Persistent, "expected video entries to be persistent")
	assert.Equal(t, "http://station.test/videos/rec_001.mp4", entry.MediaRef, "expected media reference attached")
}

func TestClearWipesEverything(t *testing.T) {
	t.Parallel()

	log := NewLog()
	defer log.Close()

	log.Add("uno", 0)
	log.Add("dos", time.Minute)
	log.AddVideo("Video grabado", "ref")

	log.Clear()
	assert.Equal(t, 0, log.Len(), "expected empty feed after clear")
}

func TestListIsSnapshot(t *testing.T) {
	t.Parallel()

	log := NewLog()
	defer log.Close()

	log.Add("original", 0)
	entries := log.List()
	entries[0].Message = "mutado"

	assert.Equal(t, "original", log.List()[0].Message, "expected internal entries unaffected by snapshot mutation")
}

func TestSubscribeReceivesNewEntries(t *testing.T) {
	t.Parallel()

	log := NewLog()
	defer log.Close()

	ch, unsubscribe := log.Subscribe()
	defer unsubscribe()

	log.Add("aviso", 0)
	select {
	case e := <-ch:
		assert.Equal(t, "aviso", e.Message, "expected subscriber to see the new entry")
	case <-time.After(time.Second):
		t.Fatal("expected a delivery to the subscriber")
	}

	unsubscribe()
	log.Add("tarde", 0)
	_, open := <-ch
	assert.False(t, open, "expected channel closed after unsubscribe")
}

func TestSubscribeSlowReceiverDropsEntries(t *testing.T) {
	t.Parallel()

	log := NewLog()
	defer log.Close()

	ch, unsubscribe := log.Subscribe()
	defer unsubscribe()

	for i := 0; i < 40; i++ {
		log.Add("ráfaga", 0)
	}

	assert.Equal(t, 40, log.Len(), "expected the feed itself to keep everything")
	assert.LessOrEqual(t, len(ch), 16, "expected overflow to be dropped, not block")
}

func TestCloseStopsAdditions(t *testing.T) {
	t.Parallel()

	log := NewLog()
	log.Add("antes", 0)
	log.Close()
	log.Add("después", 0)

	assert.Equal(t, 1, log.Len(), "expected no additions after close")
}
