package reactive

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectReplaysCurrentValueOnSubscribe(t *testing.T) {
	s := NewSubject(7)

	var got []int
	unsubscribe := s.Subscribe(func(v int) { got = append(got, v) })
	defer unsubscribe()

	assert.Equal(t, []int{7}, got)
}

func TestSubjectNotifiesInSubscriptionOrder(t *testing.T) {
	s := NewSubject(0)

	var order []string
	s.Subscribe(func(v int) { order = append(order, "first") })
	s.Subscribe(func(v int) { order = append(order, "second") })
	order = nil

	s.Set(1)

	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, 1, s.Value())
}

func TestSubjectQueuesSetIssuedFromListener(t *testing.T) {
	s := NewSubject(0)

	var first, second []int
	s.Subscribe(func(v int) {
		first = append(first, v)
		if v == 1 {
			s.Set(2)
		}
	})
	s.Subscribe(func(v int) { second = append(second, v) })

	s.Set(1)

	// The second listener must observe 1 before 2 even though 2 was set
	// while 1 was still being delivered.
	assert.Equal(t, []int{0, 1, 2}, first)
	assert.Equal(t, []int{0, 1, 2}, second)
	assert.Equal(t, 2, s.Value())
}

func TestSubjectUnsubscribeStopsDelivery(t *testing.T) {
	s := NewSubject("a")

	var got []string
	unsubscribe := s.Subscribe(func(v string) { got = append(got, v) })
	s.Set("b")
	unsubscribe()
	unsubscribe()
	s.Set("c")

	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 0, s.SubscriberCount())
}

func TestSubjectListenerUnsubscribedMidDeliveryIsSkipped(t *testing.T) {
	s := NewSubject(0)

	var unsubscribeSecond func()
	var second []int
	s.Subscribe(func(v int) {
		if v == 1 {
			unsubscribeSecond()
		}
	})
	unsubscribeSecond = s.Subscribe(func(v int) { second = append(second, v) })

	s.Set(1)

	require.Equal(t, []int{0}, second)
}

func TestSubjectUpdateIsAtomicAcrossGoroutines(t *testing.T) {
	s := NewSubject(0)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update(func(v int) int { return v + 1 })
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.Value())
}
