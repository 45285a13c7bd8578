package service

import "testing"

func TestEventBus_FanOut(t *testing.T) {
	b := NewEventBus()
	a := b.Subscribe()
	c := b.Subscribe()
	defer b.Unsubscribe(a)
	defer b.Unsubscribe(c)

	b.Publish(Event{Resource: "marker", Action: "attached", ID: "0"})

	for i, ch := range []chan Event{a, c} {
		select {
		case ev := <-ch:
			if ev.Resource != "marker" || ev.Action != "attached" || ev.ID != "0" {
				t.Errorf("subscriber %d got %+v", i, ev)
			}
		default:
			t.Errorf("subscriber %d got nothing", i)
		}
	}
}

func TestEventBus_SlowSubscriberSkipped(t *testing.T) {
	b := NewEventBusSize(1)
	slow := b.Subscribe()
	defer b.Unsubscribe(slow)

	b.Publish(Event{ID: "1"})
	b.Publish(Event{ID: "2"}) // dropped, buffer full

	if ev := <-slow; ev.ID != "1" {
		t.Errorf("first event = %+v", ev)
	}
	select {
	case ev := <-slow:
		t.Errorf("overflow event delivered: %+v", ev)
	default:
	}
}

func TestEventBus_Unsubscribe(t *testing.T) {
	b := NewEventBus()
	ch := b.Subscribe()
	if b.Subscribers() != 1 {
		t.Fatalf("subscribers = %d", b.Subscribers())
	}
	b.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Error("channel not closed")
	}
	if b.Subscribers() != 0 {
		t.Errorf("subscribers = %d", b.Subscribers())
	}
	b.Publish(Event{}) // must not panic on closed channel
}

func TestIndexID(t *testing.T) {
	if IndexID(7) != "7" || IndexID(int64(-3)) != "-3" {
		t.Error("IndexID formatting")
	}
}
