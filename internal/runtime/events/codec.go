package events

import (
	"encoding/json"
	"fmt"

	"github.com/coatyio/coaty-go/internal/runtime/errors"
	"github.com/coatyio/coaty-go/internal/runtime/jsoncodec"
	"github.com/coatyio/coaty-go/internal/runtime/objects"
	"github.com/coatyio/coaty-go/internal/runtime/topics"
)

// Encode serializes an envelope's payload to its wire form. The envelope
// metadata is not part of the payload; it travels in the topic.
func Encode(e Event) ([]byte, error) {
	var data any
	switch evt := e.(type) {
	case *AdvertiseEvent:
		data = evt.Data
	case *DeadvertiseEvent:
		data = evt.Data
	case *ChannelEvent:
		data = evt.Data
	case *DiscoverEvent:
		data = evt.Data
	case *ResolveEvent:
		data = evt.Data
	case *QueryEvent:
		data = evt.Data
	case *RetrieveEvent:
		data = evt.Data
	case *UpdateEvent:
		data = evt.Data
	case *CompleteEvent:
		data = evt.Data
	case *CallEvent:
		data = evt.Data
	case *ReturnEvent:
		data = evt.Data
	default:
		return nil, fmt.Errorf("%w: unsupported event %T", errors.ErrInvalidArgument, e)
	}
	return jsoncodec.Marshal(data)
}

// Decode reconstructs a typed envelope from a decoded topic and its raw
// payload, resolving embedded domain objects through the registry.
func Decode(reg *objects.Registry, tpc topics.Topic, payload []byte) (Event, error) {
	b := base{
		eventType: tpc.Event,
		sourceID:  tpc.SourceObjectID,
		token:     tpc.CorrelationToken,
	}

	switch tpc.Event {
	case topics.EventAdvertise:
		data, err := decodeAdvertisePayload(reg, payload)
		if err != nil {
			return nil, err
		}
		return &AdvertiseEvent{base: b, Data: data}, nil

	case topics.EventDeadvertise:
		var data DeadvertisePayload
		if err := structural(jsoncodec.Unmarshal(payload, &data)); err != nil {
			return nil, err
		}
		return &DeadvertiseEvent{base: b, Data: data}, nil

	case topics.EventChannel:
		data, err := decodeChannelPayload(reg, payload)
		if err != nil {
			return nil, err
		}
		return &ChannelEvent{base: b, Data: data}, nil

	case topics.EventDiscover:
		var data DiscoverPayload
		if err := structural(jsoncodec.Unmarshal(payload, &data)); err != nil {
			return nil, err
		}
		return &DiscoverEvent{base: b, Data: data}, nil

	case topics.EventResolve:
		data, err := decodeResolvePayload(reg, payload)
		if err != nil {
			return nil, err
		}
		return &ResolveEvent{base: b, Data: data}, nil

	case topics.EventQuery:
		var data QueryPayload
		if err := structural(jsoncodec.Unmarshal(payload, &data)); err != nil {
			return nil, err
		}
		return &QueryEvent{base: b, Data: data}, nil

	case topics.EventRetrieve:
		data, err := decodeRetrievePayload(reg, payload)
		if err != nil {
			return nil, err
		}
		return &RetrieveEvent{base: b, Data: data}, nil

	case topics.EventUpdate:
		var data UpdatePayload
		if err := structural(jsoncodec.Unmarshal(payload, &data)); err != nil {
			return nil, err
		}
		return &UpdateEvent{base: b, Data: data}, nil

	case topics.EventComplete:
		data, err := decodeCompletePayload(reg, payload)
		if err != nil {
			return nil, err
		}
		return &CompleteEvent{base: b, Data: data}, nil

	case topics.EventCall:
		var data CallPayload
		if err := structural(jsoncodec.Unmarshal(payload, &data)); err != nil {
			return nil, err
		}
		return &CallEvent{base: b, Data: data}, nil

	case topics.EventReturn:
		var data ReturnPayload
		if err := structural(jsoncodec.Unmarshal(payload, &data)); err != nil {
			return nil, err
		}
		return &ReturnEvent{base: b, Data: data}, nil
	}

	return nil, fmt.Errorf("%w: unsupported event type %q", errors.ErrDecodingFailure, tpc.Event)
}

func decodeAdvertisePayload(reg *objects.Registry, payload []byte) (AdvertisePayload, error) {
	var raw struct {
		Object      json.RawMessage `json:"object"`
		PrivateData map[string]any  `json:"privateData"`
	}
	if err := structural(jsoncodec.Unmarshal(payload, &raw)); err != nil {
		return AdvertisePayload{}, err
	}
	if len(raw.Object) == 0 {
		return AdvertisePayload{}, fmt.Errorf("%w: advertise payload without object", errors.ErrDecodingFailure)
	}
	obj, err := objects.DecodeObject(reg, raw.Object)
	if err != nil {
		return AdvertisePayload{}, err
	}
	return AdvertisePayload{Object: obj, PrivateData: raw.PrivateData}, nil
}

func decodeChannelPayload(reg *objects.Registry, payload []byte) (ChannelPayload, error) {
	var raw struct {
		ChannelID   string          `json:"channelId"`
		Object      json.RawMessage `json:"object"`
		Objects     json.RawMessage `json:"objects"`
		PrivateData map[string]any  `json:"privateData"`
	}
	if err := structural(jsoncodec.Unmarshal(payload, &raw)); err != nil {
		return ChannelPayload{}, err
	}
	data := ChannelPayload{ChannelID: raw.ChannelID, PrivateData: raw.PrivateData}
	if len(raw.Object) > 0 {
		obj, err := objects.DecodeObject(reg, raw.Object)
		if err != nil {
			return ChannelPayload{}, err
		}
		data.Object = obj
	}
	if len(raw.Objects) > 0 {
		objs, err := objects.DecodeObjects(reg, raw.Objects)
		if err != nil {
			return ChannelPayload{}, err
		}
		data.Objects = objs
	}
	return data, nil
}

func decodeResolvePayload(reg *objects.Registry, payload []byte) (ResolvePayload, error) {
	var raw struct {
		Object         json.RawMessage `json:"object"`
		RelatedObjects json.RawMessage `json:"relatedObjects"`
		PrivateData    map[string]any  `json:"privateData"`
	}
	if err := structural(jsoncodec.Unmarshal(payload, &raw)); err != nil {
		return ResolvePayload{}, err
	}
	data := ResolvePayload{PrivateData: raw.PrivateData}
	if len(raw.Object) > 0 {
		obj, err := objects.DecodeObject(reg, raw.Object)
		if err != nil {
			return ResolvePayload{}, err
		}
		data.Object = obj
	}
	if len(raw.RelatedObjects) > 0 {
		objs, err := objects.DecodeObjects(reg, raw.RelatedObjects)
		if err != nil {
			return ResolvePayload{}, err
		}
		data.RelatedObjects = objs
	}
	return data, nil
}

func decodeRetrievePayload(reg *objects.Registry, payload []byte) (RetrievePayload, error) {
	var raw struct {
		Objects     json.RawMessage `json:"objects"`
		PrivateData map[string]any  `json:"privateData"`
	}
	if err := structural(jsoncodec.Unmarshal(payload, &raw)); err != nil {
		return RetrievePayload{}, err
	}
	objs, err := objects.DecodeObjects(reg, raw.Objects)
	if err != nil {
		return RetrievePayload{}, err
	}
	return RetrievePayload{Objects: objs, PrivateData: raw.PrivateData}, nil
}

func decodeCompletePayload(reg *objects.Registry, payload []byte) (CompletePayload, error) {
	var raw struct {
		Object      json.RawMessage `json:"object"`
		PrivateData map[string]any  `json:"privateData"`
	}
	if err := structural(jsoncodec.Unmarshal(payload, &raw)); err != nil {
		return CompletePayload{}, err
	}
	if len(raw.Object) == 0 {
		return CompletePayload{}, fmt.Errorf("%w: complete payload without object", errors.ErrDecodingFailure)
	}
	obj, err := objects.DecodeObject(reg, raw.Object)
	if err != nil {
		return CompletePayload{}, err
	}
	return CompletePayload{Object: obj, PrivateData: raw.PrivateData}, nil
}

func structural(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", errors.ErrDecodingFailure, err)
}
