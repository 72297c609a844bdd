package typec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSync_WaitPartnerTimesOut(t *testing.T) {
	s := NewSync()
	s.ArmPartner()

	start := time.Now()
	assert.False(t, s.WaitPartner(20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestSync_SignalBeforeWait(t *testing.T) {
	s := NewSync()
	s.ArmPartner()
	s.SignalPartner()

	assert.True(t, s.WaitPartner(time.Second))
}

func TestSync_SignalDuringWait(t *testing.T) {
	s := NewSync()
	s.ArmPartner()

	go func() {
		time.Sleep(10 * time.Millisecond)
		s.SignalPartner()
	}()

	assert.True(t, s.WaitPartner(5*time.Second))
}

func TestSync_ArmDiscardsStaleSignal(t *testing.T) {
	s := NewSync()
	s.SignalPartner()
	require.True(t, s.PartnerUp())

	s.ArmPartner()
	assert.False(t, s.PartnerUp())
	assert.False(t, s.WaitPartner(10*time.Millisecond))
}

func TestSync_TryLockSwitch(t *testing.T) {
	s := NewSync()

	require.True(t, s.TryLockSwitch())
	assert.False(t, s.TryLockSwitch())
	s.UnlockSwitch()

	s.LockSwitch()
	assert.False(t, s.TryLockSwitch())
	s.UnlockSwitch()
}

type recordingSink struct {
	snaps   []Snapshot
	results []CommandResult
}

func (r *recordingSink) OnSnapshot(s Snapshot)           { r.snaps = append(r.snaps, s) }
func (r *recordingSink) OnCommandResult(c CommandResult) { r.results = append(r.results, c) }

func TestSinkSlot(t *testing.T) {
	var slot SinkSlot
	assert.False(t, slot.Registered())

	// Publishing without a sink is a no-op.
	slot.PublishSnapshot(Snapshot{})
	slot.PublishResult(CommandResult{})

	sink := &recordingSink{}
	assert.Nil(t, slot.Swap(sink))
	assert.True(t, slot.Registered())

	slot.PublishSnapshot(Snapshot{Status: StatusError})
	slot.PublishResult(CommandResult{Kind: CommandQueryPortStatus, TransactionID: 7})

	require.Len(t, sink.snaps, 1)
	assert.Equal(t, StatusError, sink.snaps[0].Status)
	require.Len(t, sink.results, 1)
	assert.Equal(t, int64(7), sink.results[0].TransactionID)

	assert.Same(t, sink, slot.Swap(nil))
	assert.False(t, slot.Registered())
}
