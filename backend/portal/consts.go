package portal

import "github.com/godbus/dbus/v5"

const (
	portalDest      = "org.freedesktop.portal.Desktop"
	portalPath      = dbus.ObjectPath("/org/freedesktop/portal/desktop")
	screenCastIface = "org.freedesktop.portal.ScreenCast"
	requestIface    = "org.freedesktop.portal.Request"
	responseMember  = requestIface + ".Response"

	// Requests appear under a well-known root, at a path both sides derive
	// from the caller's unique name and the handle token.
	requestPathRoot = "/org/freedesktop/portal/desktop/request"

	tokenPrefix = "portal_doctor"
)

// Response codes carried by the Request.Response signal.
const (
	responseSuccess   uint32 = 0
	responseCancelled uint32 = 1
)

type SourceType uint32

const (
	SourceMonitor SourceType = 1
	SourceWindow  SourceType = 2
	SourceVirtual SourceType = 4
)
