package services

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"

	"collect-api/internal/config"
	"collect-api/internal/utils"

	"github.com/google/uuid"
)

const fallbackMaxFileSize = 10 * 1024 * 1024 // 10MB

// IntakeService applies the file intake policy at the submission
// boundary: per-document-type MIME allow-lists, size caps and the
// per-submission file cap. Stores enforce none of this themselves.
type IntakeService struct {
	config config.IntakeConfig
}

func NewIntakeService(cfg config.IntakeConfig) *IntakeService {
	return &IntakeService{config: cfg}
}

// MaxFiles returns the per-submission file cap.
func (s *IntakeService) MaxFiles() int {
	if s.config.MaxFilesPerSubmission > 0 {
		return s.config.MaxFilesPerSubmission
	}
	return 20
}

func (s *IntakeService) maxSizeFor(documentType *string) int64 {
	if documentType != nil {
		if rule, ok := s.config.DocumentTypes[*documentType]; ok && rule.MaxFileSize != "" {
			if size, err := utils.ParseSizeString(rule.MaxFileSize); err == nil {
				return size
			}
		}
	}
	if s.config.MaxFileSize != "" {
		if size, err := utils.ParseSizeString(s.config.MaxFileSize); err == nil {
			return size
		}
	}
	return fallbackMaxFileSize
}

// ValidateUpload checks one file against the policy for its document
// type. Files without a recognized document type only get the size cap.
func (s *IntakeService) ValidateUpload(file *multipart.FileHeader, documentType *string) error {
	if documentType != nil {
		if rule, ok := s.config.DocumentTypes[*documentType]; ok && len(rule.MimeTypes) > 0 {
			mimeType := file.Header.Get("Content-Type")
			if !utils.IsValidMimeType(mimeType, rule.MimeTypes) {
				return validationError(fmt.Sprintf("Invalid file type for %s: %s", *documentType, mimeType))
			}
		}
	}

	maxSize := s.maxSizeFor(documentType)
	if file.Size > maxSize {
		return validationError(fmt.Sprintf("File size %s exceeds limit %s",
			utils.FormatFileSize(file.Size), utils.FormatFileSize(maxSize)))
	}
	return nil
}

// StoreFile writes the upload to disk under a uuid name, preserving the
// original extension, and returns the path and stored name.
func (s *IntakeService) StoreFile(file *multipart.FileHeader) (string, string, error) {
	storedName := uuid.New().String() + filepath.Ext(file.Filename)
	filePath := filepath.Join(s.config.Storage.UploadDir, storedName)

	if s.config.Storage.CreateDirs {
		if err := os.MkdirAll(s.config.Storage.UploadDir, 0755); err != nil {
			log.Printf("Failed to create upload directory: %v", err)
			return "", "", storageError("Failed to store file", err)
		}
	}

	src, err := file.Open()
	if err != nil {
		log.Printf("Failed to open uploaded file: %v", err)
		return "", "", storageError("Failed to store file", err)
	}
	defer src.Close()

	dst, err := os.Create(filePath)
	if err != nil {
		log.Printf("Failed to create destination file: %v", err)
		return "", "", storageError("Failed to store file", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		log.Printf("Failed to write uploaded file: %v", err)
		return "", "", storageError("Failed to store file", err)
	}

	return filePath, storedName, nil
}
