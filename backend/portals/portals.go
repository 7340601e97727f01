package portals

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/b0bbywan/go-portal-doctor/backend/envdetect"
	"github.com/b0bbywan/go-portal-doctor/logger"
)

// Standard locations for .portal files.
var portalDirs = []string{
	"/usr/share/xdg-desktop-portal/portals",
	"/usr/local/share/xdg-desktop-portal/portals",
}

// shortNameRe extracts the short backend name from a DBus name, e.g.
// org.freedesktop.impl.portal.desktop.kde -> kde.
var shortNameRe = regexp.MustCompile(`desktop\.(\w+)$`)

// DiscoverBackends scans the standard portal directories for .portal files.
// The first directory providing a backend name wins.
func DiscoverBackends() []Backend {
	return discoverIn(portalDirs)
}

func discoverIn(dirs []string) []Backend {
	var backends []Backend
	seen := make(map[string]bool)

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.Debug("[portals] skipping %s: %v", dir, err)
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".portal") {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			backend, err := parsePortalFile(path)
			if err != nil {
				logger.Warn("[portals] failed to parse %s: %v", path, err)
				continue
			}
			if seen[backend.Name] {
				continue
			}
			seen[backend.Name] = true
			backends = append(backends, *backend)
		}
	}
	return backends
}

func parsePortalFile(path string) (*Backend, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("invalid portal file: %w", err)
	}

	section, err := file.GetSection("portal")
	if err != nil {
		return nil, fmt.Errorf("no [portal] section in %s", path)
	}

	dbusName := section.Key("DBusName").String()
	name := shortName(dbusName, path)

	var useIn []string
	for _, entry := range strings.Split(section.Key("UseIn").String(), ";") {
		if entry = strings.TrimSpace(entry); entry != "" {
			useIn = append(useIn, entry)
		}
	}

	return &Backend{
		Name:       name,
		DBusName:   dbusName,
		PortalFile: path,
		UseIn:      useIn,
	}, nil
}

func shortName(dbusName, path string) string {
	if m := shortNameRe.FindStringSubmatch(dbusName); m != nil {
		return m[1]
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// UserConfigPath returns the location of the user's portals.conf.
func UserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "xdg-desktop-portal", "portals.conf"), nil
}

// ReadConfig reads a portals.conf file. A missing file is not an error;
// it returns (nil, nil) since an absent config is a normal setup.
func ReadConfig(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = UserConfigPath(); err != nil {
			return nil, err
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	file, err := ini.Load(content)
	if err != nil {
		return nil, fmt.Errorf("invalid portals.conf: %w", err)
	}

	cfg := &Config{
		FilePath:   path,
		RawContent: string(content),
	}
	preferred, err := file.GetSection("preferred")
	if err != nil {
		return cfg, nil
	}
	for key, value := range preferred.KeysHash() {
		if strings.EqualFold(key, "default") {
			cfg.DefaultBackend = value
			continue
		}
		if cfg.InterfaceBackends == nil {
			cfg.InterfaceBackends = make(map[string]string)
		}
		cfg.InterfaceBackends[strings.ToLower(key)] = value
	}
	return cfg, nil
}

// RecommendedBackend picks the backend best matching the detected
// environment, falling back to gtk and then to the first one installed.
// It returns "" when nothing is installed.
func RecommendedBackend(env *envdetect.Info, backends []Backend) string {
	installed := make(map[string]bool, len(backends))
	for _, b := range backends {
		installed[strings.ToLower(b.Name)] = true
	}

	pick := func(names ...string) string {
		for _, name := range names {
			if installed[name] {
				return name
			}
		}
		return ""
	}

	var preferred string
	switch {
	case env.IsHyprland():
		preferred = pick("hyprland", "wlr")
	case env.IsWlroots():
		preferred = pick("wlr", "hyprland")
	case env.IsKDE():
		preferred = pick("kde")
	case env.IsGNOME():
		preferred = pick("gnome", "gtk")
	}

	if preferred == "" {
		preferred = pick("gtk")
	}
	if preferred == "" && len(backends) > 0 {
		preferred = strings.ToLower(backends[0].Name)
	}
	return preferred
}
