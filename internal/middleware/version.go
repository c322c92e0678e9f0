package middleware

import (
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
)

// VersionMiddleware rejects requests against unknown API versions and
// stamps responses with the version that served them.
type VersionMiddleware struct {
	supported      map[string]bool
	defaultVersion string
}

func NewVersionMiddleware() *VersionMiddleware {
	return &VersionMiddleware{
		supported:      map[string]bool{"v1": true},
		defaultVersion: "v1",
	}
}

// VersionHeader stamps every response in a version group with X-API-Version.
func (vm *VersionMiddleware) VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("X-API-Version", version)
			return next(c)
		}
	}
}

// APIVersionResolver extracts the version segment from the request path.
// A versioned path against an unsupported version is answered early; an
// unversioned path falls through with the default.
func (vm *VersionMiddleware) APIVersionResolver() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			version := versionSegment(c.Request().URL.Path)
			if version == "" {
				c.Set("api_version", vm.defaultVersion)
				return next(c)
			}
			if !vm.supported[version] {
				return c.JSON(http.StatusNotFound, map[string]string{
					"error":              "Unsupported API version",
					"supported_versions": strings.Join(vm.supportedVersions(), ", "),
				})
			}
			c.Set("api_version", version)
			return next(c)
		}
	}
}

func (vm *VersionMiddleware) supportedVersions() []string {
	versions := make([]string, 0, len(vm.supported))
	for v := range vm.supported {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}

// versionSegment returns the leading path segment when it looks like an
// API version ("v" followed by digits), or "" otherwise.
func versionSegment(path string) string {
	seg := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(seg, '/'); i >= 0 {
		seg = seg[:i]
	}
	if len(seg) < 2 || seg[0] != 'v' {
		return ""
	}
	for _, r := range seg[1:] {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return seg
}
