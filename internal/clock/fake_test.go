package clock

import (
	"testing"
	"time"
)

func TestFakeAdvanceFiresInOrder(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFake(start)

	var fired []string
	c.AfterFunc(2*time.Second, func() { fired = append(fired, "second") })
	c.AfterFunc(time.Second, func() { fired = append(fired, "first") })

	c.Advance(1500 * time.Millisecond)
	if len(fired) != 1 || fired[0] != "first" {
		t.Fatalf("Expected only the first timer to fire, got %v", fired)
	}

	c.Advance(time.Second)
	if len(fired) != 2 || fired[1] != "second" {
		t.Fatalf("Expected second timer to fire, got %v", fired)
	}

	if !c.Now().Equal(start.Add(2500 * time.Millisecond)) {
		t.Errorf("Unexpected clock time: %v", c.Now())
	}
}

func TestFakeChainedTimers(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	count := 0

	var tick func()
	tick = func() {
		count++
		if count < 5 {
			c.AfterFunc(100*time.Millisecond, tick)
		}
	}
	c.AfterFunc(100*time.Millisecond, tick)

	c.Advance(time.Second)
	if count != 5 {
		t.Errorf("Expected 5 ticks, got %d", count)
	}
	if c.Pending() != 0 {
		t.Errorf("Expected no pending timers, got %d", c.Pending())
	}
}

func TestFakeStop(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Error("Expected Stop to report a pending timer")
	}
	if timer.Stop() {
		t.Error("Expected second Stop to report false")
	}

	c.Advance(2 * time.Second)
	if fired {
		t.Error("Stopped timer should not fire")
	}
}
