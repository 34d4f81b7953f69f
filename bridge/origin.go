package bridge

import "strings"

// ExtensionOrigin extracts the calling extension's identity from the
// argument list the browser passes when spawning the host. Chromium based
// browsers pass the extension origin itself; Firefox passes the path of
// the host manifest followed by the extension ID. An empty result means
// no browser signature was found, the host was started by hand.
func ExtensionOrigin(args []string) string {
	for i, a := range args {
		if strings.HasPrefix(a, "chrome-extension://") {
			return a
		}
		if strings.HasSuffix(a, ".json") && i+1 < len(args) {
			if next := args[i+1]; next != "" && !strings.HasPrefix(next, "-") {
				return next
			}
		}
	}
	return ""
}

// OriginAllowed reports whether origin may use this host. An empty allow
// list admits any caller, the host manifest already restricts who can
// launch it. An empty origin is always admitted so the host stays usable
// from a terminal. Comparison ignores the trailing slash Chromium appends
// to extension origins.
func OriginAllowed(origin string, allowed []string) bool {
	if origin == "" || len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if strings.TrimSuffix(a, "/") == strings.TrimSuffix(origin, "/") {
			return true
		}
	}
	return false
}
