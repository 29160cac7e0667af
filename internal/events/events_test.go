package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmitReachesAllHandlers(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	got := make(chan interface{}, 2)
	On("campaign.created", func(data interface{}) { got <- data })
	On("campaign.created", func(data interface{}) { got <- data })

	Emit("campaign.created", "payload")

	for i := 0; i < 2; i++ {
		select {
		case data := <-got:
			assert.Equal(t, "payload", data)
		case <-time.After(time.Second):
			t.Fatal("handler was not invoked")
		}
	}
}

func TestEmitUnknownEventNoPanic(t *testing.T) {
	t.Cleanup(Reset)
	Reset()
	Emit("nobody.listens", nil)
}

func TestResetDropsHandlers(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	called := make(chan struct{}, 1)
	On("x", func(interface{}) { called <- struct{}{} })
	Reset()
	Emit("x", nil)

	select {
	case <-called:
		t.Fatal("handler survived reset")
	case <-time.After(50 * time.Millisecond):
	}
}
