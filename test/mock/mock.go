package mock

import (
	"fmt"
	"sync"

	"lpc/common"
)

type MockLog struct {
	Name string

	mutex sync.Mutex
	warns []string
}

func (l *MockLog) Debug(args ...interface{}) {
	fmt.Println(args...)
}
func (l *MockLog) Debugf(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

func (l *MockLog) Info(args ...interface{}) {
	fmt.Println(args...)
}

func (l *MockLog) Infof(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

func (l *MockLog) Warn(args ...interface{}) {
	l.record(fmt.Sprint(args...))
	fmt.Println(args...)
}

func (l *MockLog) Warnf(format string, args ...interface{}) {
	l.record(fmt.Sprintf(format, args...))
	fmt.Printf(format+"\n", args...)
}

func (l *MockLog) Error(args ...interface{}) {
	fmt.Println(args...)
}

func (l *MockLog) Errorf(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

func (l *MockLog) record(s string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.warns = append(l.warns, s)
}

// Warnings returns every warning logged so far.
func (l *MockLog) Warnings() []string {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return append([]string(nil), l.warns...)
}

func GetMockLogger(name string) *MockLog {
	return &MockLog{Name: name}
}

// Published is one call captured by MockSink.
type Published struct {
	ChannelID string
	Type      common.LocalMsgType
	Payload   interface{}
}

// MockSink records everything published to it, in order.
type MockSink struct {
	Msgs []Published
}

func (s *MockSink) Publish(channelID string, t common.LocalMsgType, payload interface{}) {
	s.Msgs = append(s.Msgs, Published{channelID, t, payload})
}

// OfType filters the recorded messages by exact message type.
func (s *MockSink) OfType(t common.LocalMsgType) []Published {
	var out []Published
	for _, m := range s.Msgs {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}
