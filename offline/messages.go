package offline

import (
	"encoding/json"

	"github.com/jrsteele09/go-cms-client/internal/errors"
)

// Message is a control message from a page to a worker. The set is closed:
// SkipWaiting, ClearCache and GetCacheSize.
type Message interface {
	Type() string
	message()
}

const (
	TypeSkipWaiting  = "SKIP_WAITING"
	TypeClearCache   = "CLEAR_CACHE"
	TypeGetCacheSize = "GET_CACHE_SIZE"
)

// SkipWaiting activates an installed worker without waiting for the current one to go away.
type SkipWaiting struct{}

// ClearCache deletes every cache group. Reply, when set, receives the outcome.
type ClearCache struct {
	Reply chan<- error
}

// GetCacheSize asks for the total body size across all groups. Reply should be buffered.
type GetCacheSize struct {
	Reply chan<- CacheSize
}

// CacheSize is the GET_CACHE_SIZE answer.
type CacheSize struct {
	CacheSize int64 `json:"cacheSize"`
}

func (SkipWaiting) Type() string  { return TypeSkipWaiting }
func (ClearCache) Type() string   { return TypeClearCache }
func (GetCacheSize) Type() string { return TypeGetCacheSize }

func (SkipWaiting) message()  {}
func (ClearCache) message()   {}
func (GetCacheSize) message() {}

// DecodeMessage reads a {"type": ...} document. Reply channels are left nil.
func DecodeMessage(data []byte) (Message, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, errors.Wrapf(errors.ErrUnsupportedMessage, "decode: %v", err)
	}
	switch envelope.Type {
	case TypeSkipWaiting:
		return SkipWaiting{}, nil
	case TypeClearCache:
		return ClearCache{}, nil
	case TypeGetCacheSize:
		return GetCacheSize{}, nil
	}
	return nil, errors.Wrapf(errors.ErrUnsupportedMessage, "type %q", envelope.Type)
}

// EncodeMessage is the wire form DecodeMessage reads.
func EncodeMessage(m Message) ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
	}{Type: m.Type()})
}
