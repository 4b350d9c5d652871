package coaty

import (
	runtimepkg "github.com/coatyio/coaty-go/internal/runtime"
	configpkg "github.com/coatyio/coaty-go/internal/runtime/config"
	errspkg "github.com/coatyio/coaty-go/internal/runtime/errors"
	eventspkg "github.com/coatyio/coaty-go/internal/runtime/events"
	idspkg "github.com/coatyio/coaty-go/internal/runtime/ids"
	jsoncodec "github.com/coatyio/coaty-go/internal/runtime/jsoncodec"
	loggingpkg "github.com/coatyio/coaty-go/internal/runtime/logging"
	objectspkg "github.com/coatyio/coaty-go/internal/runtime/objects"
	topicspkg "github.com/coatyio/coaty-go/internal/runtime/topics"
	transportpkg "github.com/coatyio/coaty-go/transport"
)

type (
	// Configuration
	Configuration        = configpkg.Configuration
	CommonOptions        = configpkg.CommonOptions
	CommunicationOptions = configpkg.CommunicationOptions
	ControllerOptions    = configpkg.ControllerOptions

	// Object model
	CoreType      = objectspkg.CoreType
	Object        = objectspkg.Object
	CoatyObject   = objectspkg.CoatyObject
	Identity      = objectspkg.Identity
	ObjectFamily  = objectspkg.Registry
	ObjectFactory = objectspkg.Factory

	// Events
	EventType          = eventspkg.Type
	Event              = eventspkg.Event
	EventFactory       = eventspkg.Factory
	AdvertiseEvent     = eventspkg.AdvertiseEvent
	AdvertisePayload   = eventspkg.AdvertisePayload
	DeadvertiseEvent   = eventspkg.DeadvertiseEvent
	DeadvertisePayload = eventspkg.DeadvertisePayload
	ChannelEvent       = eventspkg.ChannelEvent
	ChannelPayload     = eventspkg.ChannelPayload
	DiscoverEvent      = eventspkg.DiscoverEvent
	DiscoverPayload    = eventspkg.DiscoverPayload
	ResolveEvent       = eventspkg.ResolveEvent
	ResolvePayload     = eventspkg.ResolvePayload
	QueryEvent         = eventspkg.QueryEvent
	QueryPayload       = eventspkg.QueryPayload
	RetrieveEvent      = eventspkg.RetrieveEvent
	RetrievePayload    = eventspkg.RetrievePayload
	UpdateEvent        = eventspkg.UpdateEvent
	UpdatePayload      = eventspkg.UpdatePayload
	CompleteEvent      = eventspkg.CompleteEvent
	CompletePayload    = eventspkg.CompletePayload
	CallEvent          = eventspkg.CallEvent
	CallPayload        = eventspkg.CallPayload
	ReturnEvent        = eventspkg.ReturnEvent
	ReturnPayload      = eventspkg.ReturnPayload
	ReturnError        = eventspkg.ReturnError

	// Topic codec
	Topic = topicspkg.Topic

	// Communication manager
	CommunicationManager = runtimepkg.CommunicationManager
	ManagerDependencies  = runtimepkg.ManagerDependencies
	OperatingState       = runtimepkg.OperatingState
	DiscoverRequest      = runtimepkg.DiscoverRequest
	QueryRequest         = runtimepkg.QueryRequest
	UpdateRequest        = runtimepkg.UpdateRequest
	CallRequest          = runtimepkg.CallRequest

	// Container
	Container         = runtimepkg.Container
	Runtime           = runtimepkg.Runtime
	Controller        = runtimepkg.Controller
	ControllerBase    = runtimepkg.ControllerBase
	ControllerFactory = runtimepkg.ControllerFactory
	Components        = runtimepkg.Components

	// Logging
	LogFields     = loggingpkg.LogFields
	ServiceLogger = loggingpkg.ServiceLogger

	// Transport
	Transport             = transportpkg.Transport
	TransportBuilder      = transportpkg.Builder
	TransportConfig       = transportpkg.Config
	TransportRegistry     = transportpkg.Registry
	TransportCapabilities = transportpkg.Capabilities
)

// Core types of the built-in object family.
const (
	CoreTypeObject     = objectspkg.CoreTypeObject
	CoreTypeUser       = objectspkg.CoreTypeUser
	CoreTypeDevice     = objectspkg.CoreTypeDevice
	CoreTypeComponent  = objectspkg.CoreTypeComponent
	CoreTypeTask       = objectspkg.CoreTypeTask
	CoreTypeAnnotation = objectspkg.CoreTypeAnnotation
	CoreTypeLocation   = objectspkg.CoreTypeLocation
	CoreTypeLog        = objectspkg.CoreTypeLog
	CoreTypeSnapshot   = objectspkg.CoreTypeSnapshot
	CoreTypeConfig     = objectspkg.CoreTypeConfig
)

// Protocol event type tokens.
const (
	EventTypeAdvertise   = topicspkg.EventAdvertise
	EventTypeDeadvertise = topicspkg.EventDeadvertise
	EventTypeChannel     = topicspkg.EventChannel
	EventTypeDiscover    = topicspkg.EventDiscover
	EventTypeResolve     = topicspkg.EventResolve
	EventTypeQuery       = topicspkg.EventQuery
	EventTypeRetrieve    = topicspkg.EventRetrieve
	EventTypeUpdate      = topicspkg.EventUpdate
	EventTypeComplete    = topicspkg.EventComplete
	EventTypeCall        = topicspkg.EventCall
	EventTypeReturn      = topicspkg.EventReturn
)

// Operating states of the communication manager.
const (
	StateOffline  = runtimepkg.StateOffline
	StateStarting = runtimepkg.StateStarting
	StateStarted  = runtimepkg.StateStarted
	StateStopping = runtimepkg.StateStopping
	StateStopped  = runtimepkg.StateStopped
)

// Metadata keys stamped on transport messages.
const (
	MetadataKeyTopic     = transportpkg.MetadataKeyTopic
	MetadataKeyEventType = transportpkg.MetadataKeyEventType
)

var (
	// Container and manager construction.
	Resolve                 = runtimepkg.Resolve
	NewCommunicationManager = runtimepkg.NewCommunicationManager
	NewRuntime              = runtimepkg.NewRuntime

	// Object model.
	NewObjectFamily = objectspkg.NewRegistry
	NewObject       = objectspkg.New
	NewIdentity     = objectspkg.NewIdentity
	NewEventFactory = eventspkg.NewFactory

	// Payload codec.
	DecodeObject  = objectspkg.DecodeObject
	DecodeObjects = objectspkg.DecodeObjects
	EncodeObject  = objectspkg.EncodeObject
	EncodeEvent   = eventspkg.Encode
	DecodeEvent   = eventspkg.Decode

	// Topic codec.
	DecodeTopic  = topicspkg.Decode
	TopicPattern = topicspkg.Pattern
	TopicMatches = topicspkg.Matches

	// Ids.
	NewObjectID         = idspkg.NewObjectID
	NewCorrelationToken = idspkg.NewCorrelationToken

	// Logging.
	NewSlogServiceLogger      = loggingpkg.NewSlogServiceLogger
	NewWatermillServiceLogger = loggingpkg.NewWatermillServiceLogger
	NewNopLogger              = loggingpkg.NewNopLogger

	// Transport registry.
	DefaultTransportRegistry = transportpkg.DefaultRegistry
	RegisterTransport        = transportpkg.Register
	BuildTransport           = transportpkg.Build
	GetCapabilities          = transportpkg.GetCapabilities

	// JSON helpers.
	Marshal       = jsoncodec.Marshal
	MarshalIndent = jsoncodec.MarshalIndent
	Unmarshal     = jsoncodec.Unmarshal

	// Error sentinels.
	ErrMalformedTopic       = errspkg.ErrMalformedTopic
	ErrDecodingFailure      = errspkg.ErrDecodingFailure
	ErrInvalidArgument      = errspkg.ErrInvalidArgument
	ErrInvalidConfiguration = errspkg.ErrInvalidConfiguration
	ErrNotStarted           = errspkg.ErrNotStarted
	ErrAlreadyStarted       = errspkg.ErrAlreadyStarted
)

// DecodeObjectAs decodes a single domain object and requires it to be of
// the concrete shape T.
func DecodeObjectAs[T Object](family *ObjectFamily, data []byte) (T, error) {
	return objectspkg.DecodeObjectAs[T](family, data)
}
