package supabase

import (
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
)

type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewStorageClient(supabaseURL, serviceRoleKey, bucket string) (*StorageClient, error) {
	baseURL := strings.TrimRight(supabaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("supabase url is required for storage")
	}
	client := storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil)

	return &StorageClient{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// UploadDesign stores a customer design under
// users/{user_id}/drafts/{draft_id}/{unique}-{filename} and returns the
// storage path and its public URL.
func (s *StorageClient) UploadDesign(userID uuid.UUID, draftID, filename, contentType string, data []byte) (string, string, error) {
	storagePath := DesignPath(userID, draftID, filename)

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	upsert := false
	_, err := s.client.UploadFile(s.bucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload design: %w", err)
	}

	return storagePath, s.GetPublicURL(storagePath), nil
}

func (s *StorageClient) GetPublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		s.baseURL, s.bucket, storagePath)
}

func (s *StorageClient) DeleteFile(storagePath string) error {
	_, err := s.client.RemoveFile(s.bucket, []string{storagePath})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DesignPath builds the object path of an uploaded design.
func DesignPath(userID uuid.UUID, draftID, filename string) string {
	name := unsafeNameChars.ReplaceAllString(path.Base(strings.TrimSpace(filename)), "-")
	name = strings.Trim(name, "-.")
	if name == "" {
		name = "design"
	}
	draft := unsafeNameChars.ReplaceAllString(draftID, "-")
	return fmt.Sprintf("users/%s/drafts/%s/%s-%s", userID.String(), draft, uuid.NewString()[:8], name)
}
