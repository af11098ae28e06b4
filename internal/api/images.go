package api

import (
	"net/http"
	"strconv"

	"github.com/erazemk/sangam/internal/apperr"
	"github.com/erazemk/sangam/internal/imaging"
)

// readImageUpload reads the multipart "image" field and processes it to fit
// within maxDim.
func readImageUpload(w http.ResponseWriter, r *http.Request, maxDim int) (*imaging.ProcessResult, error) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<20)

	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		return nil, apperr.Validation("file too large or invalid multipart form")
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, apperr.Validation("image file required")
	}
	defer file.Close()

	return imaging.Process(file, maxDim)
}

// serveImage writes stored image bytes.
func serveImage(w http.ResponseWriter, data []byte, mime string) {
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Write(data)
}
