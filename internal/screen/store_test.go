package screen

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishichetan/kchetan/internal/models"
	"github.com/krishichetan/kchetan/internal/view"
)

func TestStore_SetVisibleKeepsOne(t *testing.T) {
	s := New()
	for _, m := range models.Modules {
		s.SetVisible(m)
		assert.Equal(t, []models.Module{m}, s.Snapshot().Active())
	}
}

func TestStore_PaintClearReset(t *testing.T) {
	s := New()
	s.Paint(view.RegionStats, view.Climate())
	p, ok := s.Region(view.RegionStats)
	require.True(t, ok)
	assert.Equal(t, "Safe", p.Cards[0].Value)

	s.Clear(view.RegionStats)
	_, ok = s.Region(view.RegionStats)
	assert.False(t, ok)

	s.SetLabels(map[string]string{"nav_dashboard": "Dashboard"})
	s.SetVisible(models.ModuleMarket)
	before := s.Snapshot().Version
	s.Reset()
	snap := s.Snapshot()
	assert.Empty(t, snap.Labels)
	assert.Empty(t, snap.Active())
	assert.Greater(t, snap.Version, before)
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	s := New()
	s.SetLabels(map[string]string{"k": "v"})
	snap := s.Snapshot()
	snap.Labels["k"] = "changed"
	assert.Equal(t, "v", s.Snapshot().Label("k"))
	assert.Equal(t, "missing", s.Snapshot().Label("missing"))
}

func TestStore_Subscribe(t *testing.T) {
	s := New()
	ch, cancel := s.Subscribe()
	defer cancel()

	s.SetVoiceTag("hi-IN")
	s.SetVoiceTag("mr-IN")
	select {
	case <-ch:
	default:
		t.Fatal("expected a change signal")
	}
	select {
	case <-ch:
		t.Fatal("signals should coalesce")
	default:
	}

	cancel()
	s.SetVoiceTag("en-US")
	select {
	case <-ch:
		t.Fatal("unsubscribed channel received a signal")
	default:
	}
}

func TestStore_Concurrent(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Paint(view.RegionNews, view.News(nil))
		}()
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 20, s.Snapshot().Version)
}
