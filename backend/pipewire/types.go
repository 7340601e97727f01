package pipewire

type ServerKind string

const (
	ServerPipeWire ServerKind = "pipewire"
	ServerPulse    ServerKind = "pulseaudio"
)

// Info is the outcome of probing the pulse-native socket. On Wayland the
// screencast video streams come from PipeWire; a legacy PulseAudio server
// behind the socket means the video side is almost certainly absent.
type Info struct {
	SocketReachable bool       `json:"socket_reachable"`
	Kind            ServerKind `json:"kind,omitempty"`
	ServerName      string     `json:"server_name,omitempty"`
	ServerVersion   string     `json:"server_version,omitempty"`
	Error           string     `json:"error,omitempty"`
}

// IsPipeWire reports whether a PipeWire server answered the probe.
func (i *Info) IsPipeWire() bool {
	return i != nil && i.SocketReachable && i.Kind == ServerPipeWire
}
