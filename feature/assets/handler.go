package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/utils"
)

// IndexFile is served for requests that resolve to a directory.
const IndexFile = "index.html"

// Handler serves files of a directory under a URL prefix.
type Handler struct {
	mountPath string
	root      http.FileSystem
}

// NewHandler creates a handler serving root under mountPath.
// mountPath must already be normalized (see server.Config.Normalize).
func NewHandler(mountPath string, root http.FileSystem) *Handler {
	return &Handler{
		mountPath: mountPath,
		root:      root,
	}
}

// RegisterRoutes mounts the handler on the router.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Use(h.mountPath, h.Serve)
}

// Serve resolves the request against the asset directory.
// Paths that only share a string prefix with the mount path ("/docsfoo")
// and paths with a segment starting with "." are passed on untouched.
func (h *Handler) Serve(c *fiber.Ctx) error {
	method := c.Method()
	if method != fiber.MethodGet && method != fiber.MethodHead {
		return c.Next()
	}

	name := c.Path()
	if h.mountPath != "/" {
		if name == h.mountPath {
			// relative links in the bundle need the trailing slash
			return redirectSlash(c, name)
		}
		if !strings.HasPrefix(name, h.mountPath+"/") {
			return c.Next()
		}
		name = strings.TrimPrefix(name, h.mountPath)
	}

	if hidden(name) {
		return c.Next()
	}

	return h.serveFile(c, name)
}

func (h *Handler) serveFile(c *fiber.Ctx, name string) error {
	trailingSlash := strings.HasSuffix(name, "/")
	if trimmed := strings.TrimRight(name, "/"); trimmed != "" {
		name = trimmed
	} else {
		name = "/"
	}

	file, stat, err := h.open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c.Next()
		}
		return fmt.Errorf("failed to open %s: %w", name, err)
	}

	if stat.IsDir() {
		// the directory handle is only needed for the stat
		_ = file.Close()
		if !trailingSlash {
			return redirectSlash(c, c.Path())
		}

		file, stat, err = h.open(path.Join(name, IndexFile))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fiber.ErrForbidden
			}
			return fmt.Errorf("failed to open index of %s: %w", name, err)
		}
		if stat.IsDir() {
			_ = file.Close()
			return fiber.ErrForbidden
		}
	}
	defer file.Close()

	// http.ServeContent answers Range, If-Modified-Since and If-None-Match.
	serve := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(fiber.HeaderContentType, contentType(stat.Name()))
		w.Header().Set(fiber.HeaderETag, etag(stat))
		http.ServeContent(w, r, stat.Name(), stat.ModTime(), file)
	})
	return serve(c)
}

func (h *Handler) open(name string) (http.File, fs.FileInfo, error) {
	file, err := h.root.Open(name)
	if err != nil {
		return nil, nil, err
	}
	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, nil, err
	}
	return file, stat, nil
}

func redirectSlash(c *fiber.Ctx, p string) error {
	target := p + "/"
	if query := c.Request().URI().QueryString(); len(query) > 0 {
		target += "?" + string(query)
	}
	return c.Redirect(target, fiber.StatusMovedPermanently)
}

// hidden reports whether any segment of p starts with a dot.
func hidden(p string) bool {
	for _, segment := range strings.Split(p, "/") {
		if strings.HasPrefix(segment, ".") {
			return true
		}
	}
	return false
}

// etag is a weak validator built from size and modification time.
func etag(stat fs.FileInfo) string {
	return fmt.Sprintf(`W/"%x-%x"`, stat.Size(), stat.ModTime().UnixMilli())
}

// contentType uses fiber's extension table so every response of the server
// agrees on MIME types.
func contentType(name string) string {
	if mime := utils.GetMIME(filepath.Ext(name)); mime != "" {
		return mime
	}
	return fiber.MIMEOctetStream
}
