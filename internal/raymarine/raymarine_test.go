package raymarine

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

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func TestBeaconParserOnlyRespondsToInfoMessage(t *testing.T) {
	t.Parallel()

	status := append(le32(uint32(idStatusRD)), make([]byte, 32)...)
	discoveries, err := BeaconParser{}.Parse(status, &net.UDPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 5800}, nil)
	require.NoError(t, err)
	assert.Empty(t, discoveries)

	info := append(le32(uint32(idInfo)), make([]byte, 32)...)
	copy(info[serialOffset:serialOffset+serialLen], "E52072-0001")
	discoveries, err = BeaconParser{}.Parse(info, &net.UDPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 5800}, nil)
	require.NoError(t, err)
	require.Len(t, discoveries, 1)
	assert.Equal(t, "E52072-0001", discoveries[0].Serial)
	assert.Equal(t, radar.Raymarine, discoveries[0].Brand)
}

func TestHandleInfoRegistersHDControlSet(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	body := make([]byte, 16+8)
	copy(body, "E52072-HD000001")
	require.NoError(t, ReportHandler{}.HandleReport(append(le32(uint32(idInfo)), body...), info))

	name, ok := info.Controls.Get(control.ModelName)
	require.True(t, ok)
	assert.Equal(t, "RD424HD", name.StringValue)
	assert.Equal(t, 1024, info.MaxSpokeLen, "HD part number should select the 1024-wide spoke width")
}

func TestHandleInfoNonHDUsesRDSpokeWidth(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	body := make([]byte, 16+8)
	copy(body, "T70-0001")
	require.NoError(t, ReportHandler{}.HandleReport(append(le32(uint32(idInfo)), body...), info))
	assert.Equal(t, 512, info.MaxSpokeLen)
}

func TestHandleStatusUnknownFieldXReturnsError(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	body := make([]byte, 20)
	body[0] = 0x02 // neither documented variant
	err := ReportHandler{}.HandleReport(append(le32(uint32(idStatusRD)), body...), info)
	assert.ErrorIs(t, err, ErrUnknownFieldCombination)
}

func TestHandleStatusRDParsesRangeStatusGainSea(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	RegisterControls(info, false)
	body := make([]byte, 20)
	body[0] = fieldXVariantA
	body[1] = 5 // index 5 -> 1.5nm in the RD table
	body[2] = 2 // transmit
	body[3] = 40
	body[4] = 1 // gain auto
	body[5] = 10
	body[6] = 0 // sea manual
	body[7] = 3 // rain

	require.NoError(t, ReportHandler{}.HandleReport(append(le32(uint32(idStatusRD)), body...), info))

	rng, ok := info.Controls.Get(control.Range)
	require.True(t, ok)
	assert.InDelta(t, 1.5*nauticalMileMeters, rng.Value, 1e-6)

	status, ok := info.Controls.GetStatus()
	require.True(t, ok)
	assert.Equal(t, control.StatusTransmit, status)

	gain, ok := info.Controls.Get(control.Gain)
	require.True(t, ok)
	assert.True(t, gain.Auto)
}

func TestHandleQuantumFixedInstallsQuantumModel(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	require.NoError(t, ReportHandler{}.HandleReport(le32(uint32(idQuantumFixed)), info))
	name, ok := info.Controls.Get(control.ModelName)
	require.True(t, ok)
	assert.Equal(t, "Quantum", name.StringValue)
}

func TestCommandEncodeRangeNonHD(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	info.MaxSpokeLen = 512
	wire, err := CommandEncoder{}.Encode(control.Range, 1.5*nauticalMileMeters, false, info)
	require.NoError(t, err)
	assert.Equal(t, le32(uint32(idFixed)), wire[:4])
}

func TestCommandEncodeRangeOutOfTableErrors(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	_, err := CommandEncoder{}.Encode(control.Range, 999999999, false, info)
	assert.Error(t, err)
}

func TestDecodeRLEExpandsEscapeRuns(t *testing.T) {
	t.Parallel()

	// literal 1, then escape run of 3 copies of 7, then literal 2.
	encoded := []byte{1, spokeEscape, 3, 7, 2}
	out, err := DecodeRLE(encoded, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 7, 7, 7, 2}, out)
}

func TestDecodeRLETruncatedEscapeErrors(t *testing.T) {
	t.Parallel()

	_, err := DecodeRLE([]byte{spokeEscape, 3}, 10)
	assert.Error(t, err)
}

func TestSpokeDecoderHDScalesByteToPixel(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	info.MaxSpokeLen = 1024
	info.SpokesPerRevolution = 360
	info.Controls.Add(control.Control{Type: control.Range, Domain: control.DomainEnumerated})
	info.Controls.Set(control.Range, 1852, nil)

	header := make([]byte, spokeHeaderLen)
	binary.LittleEndian.PutUint16(header[angleOffset:angleOffset+2], 30)
	binary.LittleEndian.PutUint16(header[headingOffset:headingOffset+2], 0xFFFF) // no heading

	body := make([]byte, 1024)
	for i := range body {
		body[i] = 4 // well clear of the 0x5C escape byte
	}

	frame := append(le32(uint32(idSpoke)), header...)
	frame = append(frame, body...)

	spokes, err := SpokeDecoder{}.DecodeSpoke(frame, info, time.Now())
	require.NoError(t, err)
	require.Len(t, spokes, 1)
	assert.Equal(t, 30, spokes[0].Angle)
	assert.Nil(t, spokes[0].Heading)
	require.Len(t, spokes[0].Data, 1024)
	for _, p := range spokes[0].Data {
		assert.Equal(t, byte(2), p) // 4 >> 1
	}
	assert.InDelta(t, 1852.0, spokes[0].RangeMeters, 1e-6)
}

func TestSpokeDecoderNonHDExpandsNibbles(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	info.MaxSpokeLen = 4
	info.SpokesPerRevolution = 360

	header := make([]byte, spokeHeaderLen)
	binary.LittleEndian.PutUint16(header[angleOffset:angleOffset+2], 12)
	binary.LittleEndian.PutUint16(header[headingOffset:headingOffset+2], 90)

	frame := append(le32(uint32(idSpoke)), header...)
	frame = append(frame, []byte{2, 4, 6, 8}...)

	spokes, err := SpokeDecoder{}.DecodeSpoke(frame, info, time.Now())
	require.NoError(t, err)
	require.Len(t, spokes, 1)
	require.NotNil(t, spokes[0].Heading)
	assert.Equal(t, 90, *spokes[0].Heading)
	assert.Equal(t, []byte{16, 0, 32, 0, 48, 0, 64, 0}, spokes[0].Data)
}

func TestSpokeDecoderTooShortErrors(t *testing.T) {
	t.Parallel()

	info := newTestInfo()
	_, err := SpokeDecoder{}.DecodeSpoke(make([]byte, 4), info, time.Now())
	assert.Error(t, err)
}
