package drive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/recordroom/vinyl-lister/internal/models"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// DefaultMarker is prefixed to a folder name once its listing is saved.
const DefaultMarker = "済"

// Client is the FileStore backed by Google Drive.
type Client struct {
	svc    *drive.Service
	marker string
}

// New builds a Drive client. credentialsFile may be empty to use
// application default credentials.
func New(ctx context.Context, credentialsFile, marker string) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	opts = append(opts, option.WithScopes(drive.DriveScope))

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return NewWithService(svc, marker), nil
}

func NewWithService(svc *drive.Service, marker string) *Client {
	if marker == "" {
		marker = DefaultMarker
	}
	return &Client{svc: svc, marker: marker}
}

// Marker is the processed-folder marker this client filters on.
func (c *Client) Marker() string {
	return c.marker
}

// ListPendingSubfolders returns subfolders of parentID whose names do not
// carry the processed marker, oldest first.
func (c *Client) ListPendingSubfolders(ctx context.Context, parentID string) ([]models.Folder, error) {
	q := fmt.Sprintf("'%s' in parents and mimeType = '%s' and not name contains '%s' and trashed = false",
		escape(parentID), folderMimeType, escape(c.marker))
	return c.listFolders(ctx, q)
}

// ListProcessedSubfolders is the complement of ListPendingSubfolders.
func (c *Client) ListProcessedSubfolders(ctx context.Context, parentID string) ([]models.Folder, error) {
	q := fmt.Sprintf("'%s' in parents and mimeType = '%s' and name contains '%s' and trashed = false",
		escape(parentID), folderMimeType, escape(c.marker))
	return c.listFolders(ctx, q)
}

func (c *Client) listFolders(ctx context.Context, q string) ([]models.Folder, error) {
	var folders []models.Folder
	err := c.svc.Files.List().
		Q(q).
		OrderBy("createdTime").
		Fields("nextPageToken, files(id, name, createdTime)").
		PageSize(1000).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				created, _ := time.Parse(time.RFC3339, f.CreatedTime)
				folders = append(folders, models.Folder{ID: f.Id, Name: f.Name, CreatedTime: created})
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	return folders, nil
}

// ListImages returns the image files directly inside folderID.
func (c *Client) ListImages(ctx context.Context, folderID string) ([]models.FileEntry, error) {
	q := fmt.Sprintf("'%s' in parents and mimeType contains 'image/' and trashed = false", escape(folderID))

	var files []models.FileEntry
	err := c.svc.Files.List().
		Q(q).
		OrderBy("name").
		Fields("nextPageToken, files(id, name, mimeType)").
		PageSize(1000).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				files = append(files, models.FileEntry{ID: f.Id, Name: f.Name, MimeType: f.MimeType})
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list images in %s: %w", folderID, err)
	}
	return files, nil
}

// FetchImageBytes downloads a file's content.
func (c *Client) FetchImageBytes(ctx context.Context, fileID string) ([]byte, error) {
	body, _, err := c.FetchImageStream(ctx, fileID)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fileID, err)
	}
	return data, nil
}

// FetchImageStream opens a file's content for proxying. The caller closes
// the returned body.
func (c *Client) FetchImageStream(ctx context.Context, fileID string) (io.ReadCloser, string, error) {
	resp, err := c.svc.Files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return nil, "", fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// RenameFolder changes a folder's name.
func (c *Client) RenameFolder(ctx context.Context, folderID, newName string) error {
	_, err := c.svc.Files.Update(folderID, &drive.File{Name: newName}).
		SupportsAllDrives(true).
		Fields("id, name").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to rename folder %s: %w", folderID, err)
	}
	slog.Debug("Renamed folder", "folder_id", folderID, "name", newName)
	return nil
}

// escape quotes a value for a Drive query string literal.
func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
