// Package objects defines the domain object model exchanged between agents
// and the polymorphic codec that reconstructs concrete shapes from their
// wire representation.
//
// Concrete shapes embed CoatyObject for the shared attributes and register a
// factory for their objectType discriminator with a Registry. Decoding picks
// the factory dynamically; encoding is registry-free because every shape
// serializes its own discriminator fields.
package objects

import (
	"github.com/google/uuid"

	"github.com/coatyio/coaty-go/internal/runtime/ids"
)

// CoreType enumerates the built-in object kinds of the protocol.
type CoreType string

const (
	CoreTypeObject     CoreType = "CoatyObject"
	CoreTypeUser       CoreType = "User"
	CoreTypeDevice     CoreType = "Device"
	CoreTypeComponent  CoreType = "Component"
	CoreTypeTask       CoreType = "Task"
	CoreTypeAnnotation CoreType = "Annotation"
	CoreTypeLocation   CoreType = "Location"
	CoreTypeLog        CoreType = "Log"
	CoreTypeSnapshot   CoreType = "Snapshot"
	CoreTypeConfig     CoreType = "Config"
)

var coreTypes = map[CoreType]struct{}{
	CoreTypeObject:     {},
	CoreTypeUser:       {},
	CoreTypeDevice:     {},
	CoreTypeComponent:  {},
	CoreTypeTask:       {},
	CoreTypeAnnotation: {},
	CoreTypeLocation:   {},
	CoreTypeLog:        {},
	CoreTypeSnapshot:   {},
	CoreTypeConfig:     {},
}

// IsValid reports whether c is one of the built-in core types.
func (c CoreType) IsValid() bool {
	_, ok := coreTypes[c]
	return ok
}

// ObjectType returns the framework objectType discriminator for the built-in
// shape of this core type, for example "coaty.Component".
func (c CoreType) ObjectType() string {
	return "coaty." + string(c)
}

// Object is the capability interface every domain object satisfies. Code
// that only needs the shared attributes works against this interface; the
// codec uses it to hand back concrete shapes.
type Object interface {
	GetCoreType() CoreType
	GetObjectType() string
	GetObjectID() uuid.UUID
	GetName() string

	// Core exposes the embedded base attributes for mutation by the
	// framework, for example when stamping a parent object id.
	Core() *CoatyObject
}

// CoatyObject holds the attributes shared by every domain object. Concrete
// shapes embed it and add their own fields.
type CoatyObject struct {
	CoreType   CoreType  `json:"coreType"`
	ObjectType string    `json:"objectType"`
	ObjectID   uuid.UUID `json:"objectId"`
	Name       string    `json:"name"`

	// ParentObjectID optionally links this object to a parent.
	ParentObjectID *uuid.UUID `json:"parentObjectId,omitempty"`

	// ExternalID optionally correlates the object with an entity outside
	// the agent's object universe.
	ExternalID string `json:"externalId,omitempty"`
}

// New creates the base for a domain object. The object id is generated here
// and is immutable afterwards.
func New(coreType CoreType, objectType, name string) CoatyObject {
	return CoatyObject{
		CoreType:   coreType,
		ObjectType: objectType,
		ObjectID:   ids.NewObjectID(),
		Name:       name,
	}
}

func (o *CoatyObject) GetCoreType() CoreType  { return o.CoreType }
func (o *CoatyObject) GetObjectType() string  { return o.ObjectType }
func (o *CoatyObject) GetObjectID() uuid.UUID { return o.ObjectID }
func (o *CoatyObject) GetName() string        { return o.Name }
func (o *CoatyObject) Core() *CoatyObject     { return o }

// Identity represents a running agent on the wire. Exactly one exists per
// communication manager and is advertised on start when configured.
type Identity struct {
	CoatyObject
}

// NewIdentity creates the identity object for an agent with the given
// display name.
func NewIdentity(name string) *Identity {
	return &Identity{
		CoatyObject: New(CoreTypeComponent, CoreTypeComponent.ObjectType(), name),
	}
}
