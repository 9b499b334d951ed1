package bind

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// Upload is a single file taken from a multipart form.
type Upload struct {
	File        multipart.File
	Filename    string
	Ext         string // lower-case, without the dot
	ContentType string
	Size        int64
}

// File reads the multipart field named field, rejecting files larger than
// maxBytes or whose extension is not in allowed. The caller must close
// Upload.File.
func File(r *http.Request, field string, maxBytes int64, allowed ...string) (*Upload, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes+(1<<20))
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	f, header, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing file field %q", field)
	}
	if header.Size > maxBytes {
		f.Close()
		return nil, fmt.Errorf("file too large (max %d bytes)", maxBytes)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	if !contains(allowed, ext) {
		f.Close()
		return nil, fmt.Errorf("file type %q is not allowed (allowed: %s)", ext, strings.Join(allowed, ", "))
	}

	return &Upload{
		File:        f,
		Filename:    header.Filename,
		Ext:         ext,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
