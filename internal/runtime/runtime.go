package runtime

import (
	"github.com/google/uuid"

	configpkg "github.com/coatyio/coaty-go/internal/runtime/config"
	idspkg "github.com/coatyio/coaty-go/internal/runtime/ids"
	loggingpkg "github.com/coatyio/coaty-go/internal/runtime/logging"
	"github.com/coatyio/coaty-go/internal/runtime/objects"
)

// Runtime holds the shared facilities a container hands to its
// controllers: the validated configuration, the logger and the application
// object family.
type Runtime struct {
	cfg    *configpkg.Configuration
	logger loggingpkg.ServiceLogger
	family *objects.Registry
}

// NewRuntime creates the runtime for one container.
func NewRuntime(cfg *configpkg.Configuration, family *objects.Registry, log loggingpkg.ServiceLogger) *Runtime {
	return &Runtime{cfg: cfg, logger: log, family: family}
}

// Configuration returns the container's configuration.
func (r *Runtime) Configuration() *configpkg.Configuration { return r.cfg }

// Logger returns the container's logger.
func (r *Runtime) Logger() loggingpkg.ServiceLogger { return r.logger }

// ObjectFamily returns the application object family.
func (r *Runtime) ObjectFamily() *objects.Registry { return r.family }

// NewObjectID generates a process-wide-unique object id.
func (r *Runtime) NewObjectID() uuid.UUID { return idspkg.NewObjectID() }
