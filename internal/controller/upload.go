package controller

import (
	"fmt"
	"io"
	"mime/multipart"

	"coursehub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const maxUploadSize = 2 << 30

// openUpload opens the multipart "file" field and sniffs its content type against allowed.
// The returned file is rewound to the start; the caller closes it.
func openUpload(ctx *gin.Context, allowed []string) (multipart.File, *multipart.FileHeader, string, error) {
	header, err := ctx.FormFile("file")
	if err != nil {
		return nil, nil, "", fmt.Errorf("%w: file is required", util.ErrValidation)
	}
	if header.Size > maxUploadSize {
		return nil, nil, "", fmt.Errorf("%w: file too large", util.ErrValidation)
	}

	file, err := header.Open()
	if err != nil {
		return nil, nil, "", err
	}

	contentType := util.MimeOctetStream
	if len(allowed) > 0 {
		contentType, err = util.ValidateMimeType(file, allowed)
		if err != nil {
			file.Close()
			return nil, nil, "", err
		}
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, nil, "", err
	}
	return file, header, contentType, nil
}
