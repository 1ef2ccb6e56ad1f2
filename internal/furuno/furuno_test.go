package furuno

import (
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navbridge/radargateway/internal/control"
	"github.com/navbridge/radargateway/internal/radar"
)

func newTestInfo() *radar.RadarInfo {
	return &radar.RadarInfo{Controls: control.New()}
}

func TestBeaconParserDecodesSerialAndPort(t *testing.T) {
	t.Parallel()

	payload := make([]byte, beaconLen)
	payload[0], payload[1] = beaconMagic0, beaconMagic1
	copy(payload[serialOffset:serialOffset+serialLen], "DRS4DNXT-0001")
	binary.BigEndian.PutUint16(payload[portOffset:portOffset+2], 10011)

	from := &net.UDPAddr{IP: net.IPv4(192, 168, 1, 50)}
	discoveries, err := BeaconParser{}.Parse(payload, from, nil)
	require.NoError(t, err)
	require.Len(t, discoveries, 1)
	assert.Equal(t, "DRS4DNXT-0001", discoveries[0].Serial)
	assert.Equal(t, uint16(10011), discoveries[0].Addr.Port)
	assert.Equal(t, discoveries[0].Addr, discoveries[0].SendCommandAddr)
}

func TestBeaconParserRejectsBadMagicOrLength(t *testing.T) {
	t.Parallel()

	_, err := BeaconParser{}.Parse(make([]byte, 5), &net.UDPAddr{}, nil)
	assert.Error(t, err)

	bad := make([]byte, beaconLen)
	bad[0] = 'X'
	_, err = BeaconParser{}.Parse(bad, &net.UDPAddr{}, nil)
	assert.Error(t, err)
}

func TestHandleModulesIdentifiesModelAndRegistersControls(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	require.NoError(t, ReportHandler{}.HandleReport([]byte("96,0359360-01.05"), info))

	model, ok := info.Controls.Get(control.ModelName)
	require.True(t, ok)
	assert.Equal(t, "DRS4DNXT", model.StringValue)

	_, ok = info.Controls.Get(control.Range)
	assert.True(t, ok, "RegisterModelControls should have run")
}

func TestHandleModulesUnrecognizedPartNumberLeavesModelUnset(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	require.NoError(t, ReportHandler{}.HandleReport([]byte("96,9999999-01.00"), info))
	_, ok := info.Controls.Get(control.ModelName)
	assert.False(t, ok)
}

func TestHandleRangeUsesLookupTable(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	info.Controls.Add(control.Control{Type: control.Range, Domain: control.DomainEnumerated})

	require.NoError(t, ReportHandler{}.HandleReport([]byte("62,5"), info))
	got, ok := info.Controls.Get(control.Range)
	require.True(t, ok)
	assert.Equal(t, 1852.0, got.Value)
}

func TestHandleRangeUnknownIndexDropsSilently(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	info.Controls.Add(control.Control{Type: control.Range, Domain: control.DomainEnumerated})
	assert.NoError(t, ReportHandler{}.HandleReport([]byte("62,17"), info))
	got, ok := info.Controls.Get(control.Range)
	require.True(t, ok)
	assert.Equal(t, 0.0, got.Value, "an unknown wire index must not change the range value")
}

func TestHandleStatusMapsValues(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	info.Controls.Add(control.Control{Type: control.Status, Domain: control.DomainEnumerated})
	require.NoError(t, ReportHandler{}.HandleReport([]byte("69,2"), info))
	status, ok := info.Controls.GetStatus()
	require.True(t, ok)
	assert.Equal(t, control.StatusTransmit, status)
}

func TestReportBadIDErrors(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	assert.Error(t, ReportHandler{}.HandleReport([]byte("zz,1"), info))
}

func TestCommandEncodeRangeLooksUpWireIndex(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	wire, err := CommandEncoder{}.Encode(control.Range, 1852, false, info)
	require.NoError(t, err)
	assert.Equal(t, "$S62,5\r\n", string(wire))
}

func TestCommandEncodeRangeRejectsUnknownMeters(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	_, err := CommandEncoder{}.Encode(control.Range, 999999, false, info)
	assert.Error(t, err)
}

func TestCommandEncodeGain(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	wire, err := CommandEncoder{}.Encode(control.Gain, 75, true, info)
	require.NoError(t, err)
	assert.Equal(t, "$S63,75,1\r\n", string(wire))
}

func TestInitialQueriesAndAliveCheckAreRequestLines(t *testing.T) {
	t.Parallel()

	queries := InitialQueries()
	assert.NotEmpty(t, queries)
	for _, q := range queries {
		assert.True(t, len(q) > 2 && q[0] == '$' && q[1] == 'R')
	}

	assert.Equal(t, "$RE3\r\n", string(AliveCheckLine()))
}

func TestDecodeRLEEncoding0IsLiteral(t *testing.T) {
	t.Parallel()

	data := []byte{1, 2, 3, 4}
	out, consumed, err := DecodeRLE(0, data, nil, 4)
	require.NoError(t, err)
	assert.Equal(t, data, out)
	assert.Equal(t, 4, consumed)
}

func TestDecodeRLEEncoding1RepeatsCurrentStrength(t *testing.T) {
	t.Parallel()

	// literal 8 (even low bit), then a run byte: count=3 (0x03<<1|1=0x07)
	data := []byte{8, 0x07}
	out, _, err := DecodeRLE(1, data, nil, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{8, 8, 8, 8}, out)
}

func TestDecodeRLEEncoding3SeedsFirstByteAsLiteral(t *testing.T) {
	t.Parallel()

	// first byte is always a literal seed regardless of its low bits.
	data := []byte{42}
	out, consumed, err := DecodeRLE(3, data, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{42}, out)
	assert.Equal(t, 1, consumed)
}

func TestSpokeDecoderDecodesSingleSweepEncoding0(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	info.SpokesPerRevolution = 360

	header := make([]byte, frameHeaderLen)
	header[0] = frameMagic
	header[1] = 1 // sweepCount
	binary.LittleEndian.PutUint16(header[2:4], 4)
	header[4] = 0 // encoding 0
	header[5] = 1 // haveHeading
	binary.LittleEndian.PutUint16(header[6:8], 90)
	header[8] = 5 // rangeIndex -> 1852m

	frame := append(header, []byte{4, 8, 12, 16}...)
	spokes, err := SpokeDecoder{}.DecodeSpoke(frame, info, time.Now())
	require.NoError(t, err)
	require.Len(t, spokes, 1)
	assert.Equal(t, 1852.0, spokes[0].RangeMeters)
	require.NotNil(t, spokes[0].Heading)
	assert.Equal(t, 90, *spokes[0].Heading)
	assert.Len(t, spokes[0].Data, 4)
}

func TestSpokeDecoderLeavesLastPixelAloneOnLiveData(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	info.SpokesPerRevolution = 360

	header := make([]byte, frameHeaderLen)
	header[0] = frameMagic
	header[1] = 1
	binary.LittleEndian.PutUint16(header[2:4], 4)
	header[4] = 0
	header[8] = 5

	frame := append(header, []byte{4, 8, 12, 16}...)
	spokes, err := SpokeDecoder{}.DecodeSpoke(frame, info, time.Now())
	require.NoError(t, err)
	require.Len(t, spokes, 1)
	assert.Equal(t, []byte{1, 2, 3, 4}, spokes[0].Data)
}

func TestSpokeDecoderStampsRangeLimitMarkerOnReplayData(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	info.SpokesPerRevolution = 360
	info.Replay = true

	header := make([]byte, frameHeaderLen)
	header[0] = frameMagic
	header[1] = 1
	binary.LittleEndian.PutUint16(header[2:4], 4)
	header[4] = 0
	header[8] = 5

	frame := append(header, []byte{4, 8, 12, 16}...)
	spokes, err := SpokeDecoder{}.DecodeSpoke(frame, info, time.Now())
	require.NoError(t, err)
	require.Len(t, spokes, 1)
	assert.Equal(t, []byte{1, 2, 3, 64}, spokes[0].Data)
}

func TestSpokeDecoderRejectsBadMagic(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	frame := make([]byte, frameHeaderLen)
	_, err := SpokeDecoder{}.DecodeSpoke(frame, info, time.Now())
	assert.Error(t, err)
}
