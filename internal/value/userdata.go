package value

import (
	"fmt"

	"github.com/google/uuid"
)

// Userdata is an opaque host pointer with a deinit callback, invoked
// once the reference count reaches zero and before the Go value
// becomes collectible. Every Userdata carries a UUID (grounded on
// edirooss-zmux-server's request-id pattern) so diagnostics can name a
// specific instance instead of only its tag.
type Userdata struct {
	header
	id     uuid.UUID
	tag    string
	ptr    any
	deinit func(any)
}

// NewUserdata wraps ptr with a human-readable tag (e.g. "redis.client",
// "ecc.keypair") and a deinit callback invoked exactly once at release
// time. deinit may be nil.
func NewUserdata(tag string, ptr any, deinit func(any)) *Userdata {
	return &Userdata{id: uuid.New(), tag: tag, ptr: ptr, deinit: deinit}
}

func (u *Userdata) Type() Type { return TypeUserdata }

func (u *Userdata) Release() {
	if u.releaseSelf() {
		if u.deinit != nil {
			u.deinit(u.ptr)
		}
	}
}

func (u *Userdata) Print(quoted bool) string {
	_ = quoted
	return fmt.Sprintf("<userdata %s %s>", u.tag, u.id.String())
}

// ID returns the userdata's stable identifier.
func (u *Userdata) ID() uuid.UUID { return u.id }

// Tag returns the host-supplied kind label.
func (u *Userdata) Tag() string { return u.tag }

// Ptr returns the opaque host pointer. Modules type-assert this back
// to their own concrete type.
func (u *Userdata) Ptr() any { return u.ptr }
