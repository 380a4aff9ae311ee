package msgbus

import (
	"sync"
	"sync/atomic"

	"lpc/common"
)

type BusMessage struct {
	MsgType common.LocalMsgType
	ChainID string // session ID of the publisher
	Msg     interface{}
}

type Subscriber interface {
	HandleMsgFromMsgBus(msg *BusMessage) error
}

// SubscriberFunc adapts a plain function to Subscriber.
type SubscriberFunc func(msg *BusMessage) error

func (f SubscriberFunc) HandleMsgFromMsgBus(msg *BusMessage) error {
	return f(msg)
}

type MessageBus interface {
	// Register subscribes to the first class type of topic: registering
	// LocalTrainMsg_Sample delivers every LocalTrainMsg_* message.
	// Subscribers filter on BusMessage.MsgType themselves.
	Register(topic common.LocalMsgType, sub Subscriber)
	UnRegister(topic common.LocalMsgType, sub Subscriber)
	Publish(channelID string, t common.LocalMsgType, payload interface{})
	Reset()
}

type Topic interface {
	Register(sub Subscriber)
	UnRegister(sub Subscriber)
	Publish(msg *BusMessage)
	Len() int
}

// topicImpl delivers on the publishing goroutine, so subscribers observe
// messages in exactly the order they were published.
type topicImpl struct {
	subs  atomic.Value //[]Subscriber
	mutex sync.Mutex
	log   common.Logger
}

func newTopic(log common.Logger) Topic {
	t := &topicImpl{log: log}
	t.subs.Store([]Subscriber{})
	return t
}

func (t *topicImpl) Register(sub Subscriber) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	subs := t.subs.Load().([]Subscriber)
	//去重，函数类型不可比较，只对可比较的订阅者去重
	if isComparable(sub) {
		for _, s := range subs {
			if isComparable(s) && s == sub {
				return
			}
		}
	}
	newSubs := make([]Subscriber, 0, len(subs)+1)
	newSubs = append(newSubs, subs...)
	newSubs = append(newSubs, sub)
	t.subs.Store(newSubs)
}

func (t *topicImpl) UnRegister(sub Subscriber) {
	if !isComparable(sub) {
		return
	}
	t.mutex.Lock()
	defer t.mutex.Unlock()

	subs := t.subs.Load().([]Subscriber)
	for i, s := range subs {
		if isComparable(s) && s == sub {
			newSubs := make([]Subscriber, 0, len(subs)-1)
			newSubs = append(newSubs, subs[:i]...)
			newSubs = append(newSubs, subs[i+1:]...)
			t.subs.Store(newSubs)
			return
		}
	}
}

func (t *topicImpl) Publish(msg *BusMessage) {
	subs := t.subs.Load().([]Subscriber)
	for _, sub := range subs {
		if err := sub.HandleMsgFromMsgBus(msg); err != nil {
			t.log.Warnf("subscriber failed on msg[%#x]: %s", uint32(msg.MsgType), err)
		}
	}
}

func (t *topicImpl) Len() int {
	return len(t.subs.Load().([]Subscriber))
}

func isComparable(sub Subscriber) bool {
	_, isFunc := sub.(SubscriberFunc)
	return !isFunc
}

type messageBusImpl struct {
	topics sync.Map //first class LocalMsgType -> Topic
	log    common.Logger
}

// NewMessageBus returns a bus scoped to one session.
func NewMessageBus(log common.Logger) MessageBus {
	if log == nil {
		log = common.GetLogger(common.MODULE_SESSION)
	}
	return &messageBusImpl{log: log}
}

func (mb *messageBusImpl) Register(topic common.LocalMsgType, sub Subscriber) {
	firstClassTopic := topic.Type()
	v, _ := mb.topics.LoadOrStore(firstClassTopic, newTopic(mb.log))
	v.(Topic).Register(sub)
}

func (mb *messageBusImpl) UnRegister(topic common.LocalMsgType, sub Subscriber) {
	v, ok := mb.topics.Load(topic.Type())
	if !ok {
		return
	}
	v.(Topic).UnRegister(sub)
}

func (mb *messageBusImpl) Publish(channelID string, topic common.LocalMsgType, msg interface{}) {
	v, ok := mb.topics.Load(topic.Type())
	if !ok {
		// nobody listens on this topic
		return
	}
	v.(Topic).Publish(&BusMessage{MsgType: topic, ChainID: channelID, Msg: msg})
}

func (mb *messageBusImpl) Reset() {
	mb.topics.Range(func(k, _ interface{}) bool {
		mb.topics.Delete(k)
		return true
	})
}
