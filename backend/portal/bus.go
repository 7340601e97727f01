package portal

import (
	"context"

	"github.com/godbus/dbus/v5"

	dbusutil "github.com/b0bbywan/go-portal-doctor/backend/internal/dbus"
	"github.com/b0bbywan/go-portal-doctor/logger"
)

// Conn owns one live session-bus connection for the duration of a test run.
type Conn struct {
	conn   *dbus.Conn
	portal dbus.BusObject
	name   string
}

// Connect opens a dedicated session-bus connection. No retries: a failure
// here is terminal for the run.
func Connect(ctx context.Context) (Bus, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}

	return &Conn{
		conn:   conn,
		portal: conn.Object(portalDest, portalPath),
		name:   conn.Names()[0],
	}, nil
}

func (c *Conn) UniqueName() string { return c.name }

func (c *Conn) PortalProperty(name string) (dbus.Variant, error) {
	return dbusutil.GetProperty(c.portal, screenCastIface, name)
}

func (c *Conn) PortalProperties() (map[string]dbus.Variant, error) {
	return dbusutil.GetAllProperties(c.portal, screenCastIface)
}

// PortalCall invokes a ScreenCast portal method. The returned path only
// acknowledges acceptance; the outcome arrives later on the request object.
func (c *Conn) PortalCall(ctx context.Context, method string, args ...interface{}) (dbus.ObjectPath, error) {
	var path dbus.ObjectPath
	call := c.portal.CallWithContext(ctx, screenCastIface+"."+method, 0, args...)
	if call.Err != nil {
		return "", call.Err
	}
	if err := call.Store(&path); err != nil {
		return "", err
	}
	return path, nil
}

func (c *Conn) Subscribe(ch chan<- *dbus.Signal) {
	c.conn.Signal(ch)
}

func (c *Conn) Unsubscribe(ch chan<- *dbus.Signal) {
	c.conn.RemoveSignal(ch)
}

func (c *Conn) AddResponseMatch(path dbus.ObjectPath) error {
	return c.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(path),
		dbus.WithMatchInterface(requestIface),
		dbus.WithMatchMember("Response"),
	)
}

func (c *Conn) RemoveResponseMatch(path dbus.ObjectPath) error {
	return c.conn.RemoveMatchSignal(
		dbus.WithMatchObjectPath(path),
		dbus.WithMatchInterface(requestIface),
		dbus.WithMatchMember("Response"),
	)
}

// Close is idempotent and safe to call after a failed connect.
func (c *Conn) Close() error {
	if c.conn == nil {
		return nil
	}
	if err := c.conn.Close(); err != nil {
		logger.Error("[portal] failed to close D-Bus connection: %v", err)
		c.conn = nil
		return err
	}
	c.conn = nil
	return nil
}
