package daemon

import (
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"vidscribe/internal/logging"
)

const (
	fileNotFoundMessage  = "File not found."
	internalErrorMessage = "Internal server error."
)

// handleFile streams an artifact from the downloads root as an attachment.
// Lookups go through os.Root so no path can resolve outside the root.
func (s *apiServer) handleFile(w http.ResponseWriter, r *http.Request) {
	if !s.allowMethods(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	logger := logging.WithContext(r.Context(), s.logger)
	relative := strings.TrimPrefix(r.URL.Path, "/files/")
	if relative == "" || !filepath.IsLocal(filepath.FromSlash(relative)) {
		s.writeError(w, http.StatusNotFound, fileNotFoundMessage)
		return
	}

	root, err := os.OpenRoot(s.cfg.Paths.DownloadsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.writeError(w, http.StatusNotFound, fileNotFoundMessage)
			return
		}
		logger.Error("open downloads root failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}
	defer root.Close()

	file, err := root.Open(filepath.FromSlash(relative))
	if err != nil {
		// Anything but a permission problem means the name does not resolve to a
		// file inside the root, including symlinks that point outside it.
		if !errors.Is(err, fs.ErrPermission) {
			s.writeError(w, http.StatusNotFound, fileNotFoundMessage)
			return
		}
		logger.Error("open artifact failed", logging.String("path", relative), logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		logger.Error("stat artifact failed", logging.String("path", relative), logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}
	if !info.Mode().IsRegular() {
		s.writeError(w, http.StatusNotFound, fileNotFoundMessage)
		return
	}

	name := path.Base(relative)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	logger.Info("serving artifact", logging.String("path", relative), logging.Int64("size_bytes", info.Size()))
	http.ServeContent(w, r, name, info.ModTime(), file)
}
