package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/BerylCAtieno/file-renamer-api/internal/extractor"
	"github.com/BerylCAtieno/file-renamer-api/internal/models"
	"github.com/BerylCAtieno/file-renamer-api/internal/storage"
	"github.com/BerylCAtieno/file-renamer-api/internal/utils"
)

const formMemory = 32 << 20

// readBatch parses a multipart batch. Files arrive as file-<i> (direct) or blob-<i>
// with blob-<i>-filename and blob-<i>-type (staged), numbered from 0 without gaps.
// id-<i> and lastmodified-<i> are optional for both.
func readBatch(w http.ResponseWriter, r *http.Request, maxSize int64) ([]models.ExtractItem, error) {
	if r.ContentLength > maxSize {
		return nil, utils.NewBadRequestError(fmt.Sprintf("Upload exceeds %d bytes", maxSize))
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, utils.NewBadRequestError(fmt.Sprintf("Upload exceeds %d bytes", maxSize))
		}
		return nil, utils.NewBadRequestError("Invalid form data")
	}
	form := r.MultipartForm

	var items []models.ExtractItem
	for i := 0; ; i++ {
		key := strconv.Itoa(i)

		lastModified, err := parseLastModified(formValue(form, "lastmodified-"+key))
		if err != nil {
			return nil, utils.NewBadRequestError(fmt.Sprintf("Invalid lastmodified-%d", i))
		}

		item := models.ExtractItem{
			ID:           formValue(form, "id-"+key),
			LastModified: lastModified,
		}

		if headers := form.File["file-"+key]; len(headers) > 0 {
			fh := headers[0]
			data, err := readFormFile(fh)
			if err != nil {
				return nil, utils.NewBadRequestError(fmt.Sprintf("Failed to read file-%d", i))
			}
			item.OriginalName = fh.Filename
			item.MimeType = extractor.Detect(fh.Header.Get("Content-Type"), fh.Filename, data).MimeType
			item.SizeBytes = int64(len(data))
			item.Data = data
		} else if blobKey := formValue(form, "blob-"+key); blobKey != "" {
			if !storage.IsUploadKey(blobKey) {
				return nil, utils.NewBadRequestError(fmt.Sprintf("Invalid blob-%d key", i))
			}
			item.BlobKey = blobKey
			item.OriginalName = formValue(form, "blob-"+key+"-filename")
			if item.OriginalName == "" {
				item.OriginalName = path.Base(blobKey)
			}
			item.MimeType = extractor.Detect(formValue(form, "blob-"+key+"-type"), item.OriginalName, nil).MimeType
		} else {
			break
		}

		if item.ID == "" {
			item.ID = utils.GenerateID()
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, utils.NewBadRequestError("No files provided")
	}
	return items, nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

func parseLastModified(v string) (*int64, error) {
	if v == "" {
		return nil, nil
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, err
	}
	return &ms, nil
}
