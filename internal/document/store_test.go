package document

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/docqa/internal/metrics"
	"github.com/nikhilbhutani/docqa/internal/models"
)

func TestStoreCreateGet(t *testing.T) {
	s := NewStore()
	created, err := s.Create("Policy", "Refunds are processed within 30 days.")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, 6, created.WordCount)
	require.Equal(t, 37, created.CharacterCount)
	require.False(t, created.CreatedAt.IsZero())

	got, err := s.Get(created.ID)
	require.NoError(t, err)
	require.Equal(t, "Policy", got.Title)
	require.Equal(t, "Refunds are processed within 30 days.", got.Content)
	require.Equal(t, created.CreatedAt, got.CreatedAt)
}

func TestStoreUniqueIDs(t *testing.T) {
	s := NewStore()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		d, err := s.Create("t", "c")
		require.NoError(t, err)
		require.False(t, seen[d.ID])
		seen[d.ID] = true
	}
}

func TestStoreGetReturnsCopy(t *testing.T) {
	s := NewStore()
	d, err := s.Create("Title", "original")
	require.NoError(t, err)

	got, err := s.Get(d.ID)
	require.NoError(t, err)
	got.Content = "mutated"

	again, err := s.Get(d.ID)
	require.NoError(t, err)
	require.Equal(t, "original", again.Content)
}

func TestStoreValidation(t *testing.T) {
	s := NewStore(WithLimits(0, 10))

	cases := []struct {
		title, content, field string
	}{
		{"", "content", "title"},
		{"   ", "content", "title"},
		{strings.Repeat("x", MaxTitleLength+1), "content", "title"},
		{"Title", "", "content"},
		{"Title", " \n\t", "content"},
		{"Title", "this is far too long", "content"},
	}
	for _, tc := range cases {
		_, err := s.Create(tc.title, tc.content)
		var verr *models.ValidationError
		require.True(t, errors.As(err, &verr), "%q/%q", tc.title, tc.content)
		require.Equal(t, tc.field, verr.Field)
	}
	require.Equal(t, 0, s.Count())
}

func TestStoreNotFound(t *testing.T) {
	s := NewStore()
	_, err := s.Get("nonexistent")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.Delete("nonexistent"), ErrNotFound)
}

func TestStoreListOrderAndSummary(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s := NewStore(WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}))

	var ids []string
	for i := 0; i < 3; i++ {
		d, err := s.Create(fmt.Sprintf("Doc %d", i), fmt.Sprintf("content %d", i))
		require.NoError(t, err)
		ids = append(ids, d.ID)
	}

	list := s.List()
	require.Len(t, list, 3)
	for i, sum := range list {
		require.Equal(t, ids[i], sum.ID)
		require.Equal(t, fmt.Sprintf("Doc %d", i), sum.Title)
	}
}

func TestStoreDelete(t *testing.T) {
	s := NewStore()
	a, _ := s.Create("A", "alpha")
	b, _ := s.Create("B", "beta")
	c, _ := s.Create("C", "gamma")

	require.NoError(t, s.Delete(b.ID))
	require.ErrorIs(t, s.Delete(b.ID), ErrNotFound)

	_, err := s.Get(b.ID)
	require.ErrorIs(t, err, ErrNotFound)

	list := s.List()
	require.Len(t, list, 2)
	require.Equal(t, a.ID, list[0].ID)
	require.Equal(t, c.ID, list[1].ID)
	require.Equal(t, 2, s.Count())
}

func TestStoreCapacity(t *testing.T) {
	s := NewStore(WithLimits(2, 0))
	_, err := s.Create("one", "1")
	require.NoError(t, err)
	d, err := s.Create("two", "2")
	require.NoError(t, err)

	_, err = s.Create("three", "3")
	require.ErrorIs(t, err, ErrStoreFull)

	require.NoError(t, s.Delete(d.ID))
	_, err = s.Create("three", "3")
	require.NoError(t, err)
}

func TestStoreConcurrentCreateDelete(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				d, err := s.Create(fmt.Sprintf("doc-%d-%d", i, j), "content")
				if err != nil {
					t.Error(err)
					return
				}
				if j%2 == 0 {
					if err := s.Delete(d.ID); err != nil {
						t.Error(err)
						return
					}
				}
				_ = s.List()
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, 20*12, s.Count())
	require.Len(t, s.List(), s.Count())
}

func TestStoreGaugeTracksCount(t *testing.T) {
	s := NewStore()
	ids := make(chan string, 200)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				d, err := s.Create(fmt.Sprintf("doc-%d-%d", i, j), "content")
				if err != nil {
					t.Error(err)
					return
				}
				ids <- d.ID
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if err := s.Delete(<-ids); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 8*15, s.Count())
	require.Equal(t, float64(s.Count()), testutil.ToFloat64(metrics.DocumentsStored))
}
