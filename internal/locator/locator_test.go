package locator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navbridge/radargateway/internal/netutil"
	"github.com/navbridge/radargateway/internal/radar"
)

func testNIC(name string) netutil.Interface {
	return netutil.Interface{Name: name}
}

func TestHandleDiscoveryCreatesRadarOnFirstBeaconOnly(t *testing.T) {
	t.Parallel()

	l := New(nil)
	w := &watch{nic: testNIC("eth0"), source: BrandSource{Brand: radar.Navico}}

	d := radar.Discovery{Brand: radar.Navico, Serial: "123456", Addr: radar.Endpoint{Port: 1}}
	l.handleDiscovery(w, d)

	require.Len(t, l.Found, 1)
	found := <-l.Found
	assert.Equal(t, "123456", found.Info.SerialNo)
	assert.Equal(t, Active, w.state)

	// A second beacon for the same radar must update the known entry in
	// place without emitting a second Found.
	d2 := d
	d2.Addr = radar.Endpoint{Port: 2}
	l.handleDiscovery(w, d2)

	assert.Len(t, l.Found, 0, "repeat discovery of a known radar must not re-emit Found")

	l.mu.Lock()
	info := l.known[radar.MakeKey(radar.Navico, "123456", radar.WhichNone)]
	l.mu.Unlock()
	require.NotNil(t, info)
	assert.Equal(t, uint16(2), info.Addr.Port, "repeat beacon should refresh the address")
}

func TestHandleDiscoveryDropsWhenFoundChannelFull(t *testing.T) {
	t.Parallel()

	l := New(nil)
	l.Found = make(chan Found) // unbuffered, so a send with no receiver always drops
	w := &watch{nic: testNIC("eth0"), source: BrandSource{Brand: radar.Navico}}

	// Must not block even though nothing ever reads from l.Found.
	done := make(chan struct{})
	go func() {
		l.handleDiscovery(w, radar.Discovery{Brand: radar.Navico, Serial: "999"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handleDiscovery blocked on a full Found channel")
	}
}

func TestCheckLostTransitionsAfterTimeout(t *testing.T) {
	t.Parallel()

	l := New(nil)
	w := &watch{nic: testNIC("eth0"), source: BrandSource{Brand: radar.Navico}, state: Active, lastSeen: time.Now().Add(-lostAfter - time.Second)}

	l.checkLost(w)
	assert.Equal(t, Lost, w.state)
}

func TestCheckLostLeavesRecentlySeenActive(t *testing.T) {
	t.Parallel()

	l := New(nil)
	w := &watch{nic: testNIC("eth0"), source: BrandSource{Brand: radar.Navico}, state: Active, lastSeen: time.Now()}

	l.checkLost(w)
	assert.Equal(t, Active, w.state)
}

func TestNICStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Unseen", Unseen.String())
	assert.Equal(t, "Active", Active.String())
	assert.Equal(t, "Lost", Lost.String())
}
