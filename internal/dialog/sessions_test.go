package dialog

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRegistry_PutEvictsOtherInstance(t *testing.T) {
	r := NewSessionRegistry()
	first := &Session{ID: uuid.New(), UserID: "u", Flow: FlowAddIncome, Step: StepAskAmount}

	_, evicted := r.Put(first)
	assert.False(t, evicted)

	first.Step = StepAskCategory
	_, evicted = r.Put(first)
	assert.False(t, evicted, "updating the same instance is not an eviction")

	second := &Session{ID: uuid.New(), UserID: "u", Flow: FlowAddExpense}
	prev, evicted := r.Put(second)
	require.True(t, evicted)
	assert.Equal(t, first.ID, prev.ID)
	assert.Equal(t, StepAskCategory, prev.Step)
	assert.Equal(t, 1, r.Len())
}

func TestSessionRegistry_ReturnsCopies(t *testing.T) {
	r := NewSessionRegistry()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.Put(&Session{
		ID:                 uuid.New(),
		UserID:             "u",
		ReportStart:        &start,
		PendingAttachments: []int{1, 2},
	})

	got, ok := r.Get("u")
	require.True(t, ok)
	got.PendingAttachments[0] = 99
	*got.ReportStart = time.Time{}
	got.Step = StepBrowseAttachments

	again, ok := r.Get("u")
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, again.PendingAttachments)
	assert.Equal(t, start, *again.ReportStart)
	assert.Equal(t, StepNone, again.Step)
}

func TestSessionRegistry_Delete(t *testing.T) {
	r := NewSessionRegistry()
	_, ok := r.Delete("u")
	assert.False(t, ok)

	r.Put(&Session{ID: uuid.New(), UserID: "u"})
	_, ok = r.Delete("u")
	assert.True(t, ok)
	_, ok = r.Get("u")
	assert.False(t, ok)
}

func TestSessionRegistry_ConcurrentUsers(t *testing.T) {
	r := NewSessionRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n%26))
			r.Put(&Session{ID: uuid.New(), UserID: id})
			r.Get(id)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 26, r.Len())
}

func TestFlowAndStepNames(t *testing.T) {
	assert.Equal(t, "add_income", FlowAddIncome.String())
	assert.Equal(t, "browse_attachments", StepBrowseAttachments.String())
	assert.Equal(t, "unknown", FlowKind(99).String())
	assert.Equal(t, "unknown", Step(-1).String())
}
