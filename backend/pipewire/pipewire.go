package pipewire

import (
	"path/filepath"
	"strings"

	"github.com/the-jonsey/pulseaudio"

	"github.com/b0bbywan/go-portal-doctor/config"
	"github.com/b0bbywan/go-portal-doctor/logger"
)

// Probe connects to the pulse-native socket and identifies the server behind
// it. A nil config or disabled probe returns nil; an unreachable socket is a
// finding, not an error.
func Probe(cfg *config.PipeWireConfig) *Info {
	if cfg == nil || !cfg.ProbeEnabled {
		return nil
	}

	address := filepath.Join(cfg.XDGRuntimeDir, "pulse", "native")

	client, err := pulseaudio.NewClient(address)
	if err != nil {
		logger.Debug("[pipewire] socket %s unreachable: %v", address, err)
		return &Info{SocketReachable: false, Error: err.Error()}
	}
	defer client.Close()

	server, err := client.ServerInfo()
	if err != nil {
		logger.Debug("[pipewire] server info failed: %v", err)
		return &Info{SocketReachable: true, Error: err.Error()}
	}

	info := &Info{
		SocketReachable: true,
		Kind:            detectServerKind(server),
		ServerName:      server.PackageName,
		ServerVersion:   server.PackageVersion,
	}
	logger.Debug("[pipewire] probed %s %s (%s)", info.ServerName, info.ServerVersion, info.Kind)
	return info
}

func detectServerKind(s *pulseaudio.Server) ServerKind {
	if strings.Contains(strings.ToLower(s.PackageName), "pipewire") {
		return ServerPipeWire
	}
	return ServerPulse
}
