package fakeclock

import (
	"testing"
	"time"
)

func TestAdvanceFiresInOrder(t *testing.T) {
	c := New(time.Unix(0, 0))
	var got []int
	c.AfterFunc(2*time.Second, func() { got = append(got, 2) })
	c.AfterFunc(time.Second, func() { got = append(got, 1) })
	c.AfterFunc(5*time.Second, func() { got = append(got, 5) })

	c.Advance(3 * time.Second)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("fired %v, want [1 2]", got)
	}
	if n := c.Pending(); n != 1 {
		t.Errorf("Pending() = %d, want 1", n)
	}
	if want := time.Unix(3, 0); !c.Now().Equal(want) {
		t.Errorf("Now() = %v, want %v", c.Now(), want)
	}
}

func TestStop(t *testing.T) {
	c := New(time.Unix(0, 0))
	fired := false
	stop := c.AfterFunc(time.Second, func() { fired = true })

	if !stop() {
		t.Error("first stop() = false, want true")
	}
	if stop() {
		t.Error("second stop() = true, want false")
	}
	c.Advance(time.Minute)
	if fired {
		t.Error("stopped timer fired")
	}
	if n := c.Stops(); n != 2 {
		t.Errorf("Stops() = %d, want 2", n)
	}
	if n := len(c.Callbacks()); n != 1 {
		t.Errorf("len(Callbacks()) = %d, want 1", n)
	}
}
