package pcapreplay

import (
	"errors"
	"sync"
)

// MockReader implements Reader for tests, mirroring the teacher's
// MockPCAPReader: a preloaded packet slice walked by NextPacket.
type MockReader struct {
	mu sync.Mutex

	Packets   []Packet
	ReadIndex int

	OpenError   error
	FilterError error

	OpenedFile    string
	AppliedFilter string
	Closed        bool
}

// NewMockReader creates a mock preloaded with packets.
func NewMockReader(packets []Packet) *MockReader {
	return &MockReader{Packets: packets}
}

func (m *MockReader) Open(filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OpenedFile = filename
	return m.OpenError
}

func (m *MockReader) SetBPFFilter(filter string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AppliedFilter = filter
	return m.FilterError
}

func (m *MockReader) NextPacket() (*Packet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Closed {
		return nil, errors.New("reader closed")
	}
	if m.ReadIndex >= len(m.Packets) {
		return nil, nil
	}
	pkt := m.Packets[m.ReadIndex]
	m.ReadIndex++
	return &pkt, nil
}

func (m *MockReader) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
}

// MockReaderFactory always returns the same preloaded Reader.
type MockReaderFactory struct {
	Reader *MockReader
}

// NewMockReaderFactory wraps reader in a ReaderFactory.
func NewMockReaderFactory(reader *MockReader) *MockReaderFactory {
	return &MockReaderFactory{Reader: reader}
}

func (f *MockReaderFactory) NewReader() Reader { return f.Reader }
