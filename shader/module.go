package shader

import (
	"github.com/cockroachdb/errors"
)

// ModuleHandle is the device's native shader module handle.
type ModuleHandle any

// Device is the owning device context for shader modules. DestroyShaderModule
// must not race with other use of the same device; callers serialize it.
type Device interface {
	CreateShaderModule(code []uint32) (ModuleHandle, error)
	DestroyShaderModule(handle ModuleHandle)
}

// Module is a loaded shader module. It is owned by whoever loaded it and must
// be destroyed before its device is.
type Module struct {
	device Device
	handle ModuleHandle
}

// LoadModule validates binary and creates a shader module from it on device.
func LoadModule(device Device, binary []byte) (*Module, error) {
	code, err := BytesToCode(binary)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	handle, err := device.CreateShaderModule(code)
	if err != nil {
		return nil, errors.WithStack(&ModuleLoadError{Reason: "device rejected binary", Err: err})
	}

	return &Module{device: device, handle: handle}, nil
}

// Handle returns the native handle for pipeline construction. It is nil once
// the module has been destroyed.
func (m *Module) Handle() ModuleHandle {
	return m.handle
}

func (m *Module) Initialized() bool {
	return m != nil && m.handle != nil
}

// Destroy releases the module through its device. Destroying a module that was
// never loaded or is already destroyed does nothing.
func (m *Module) Destroy() {
	if !m.Initialized() {
		return
	}

	m.device.DestroyShaderModule(m.handle)
	m.handle = nil
	m.device = nil
}
