package sim

// SendError marks a failed message transfer. The sender is expected to
// retry later.
type SendError struct{}

// NewSendError creates a SendError.
func NewSendError() *SendError {
	return &SendError{}
}

// A Connection moves messages between the ports plugged into it.
type Connection interface {
	Named

	PlugIn(port Port)
	Unplug(port Port)
	NotifyAvailable(port Port)
	NotifySend()
}
