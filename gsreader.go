package brainatlas

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

// IsGoogleStoragePath reports whether path is a gs:// URL.
func IsGoogleStoragePath(path string) bool {
	return strings.HasPrefix(path, "gs://")
}

// SplitGoogleStoragePath splits gs://bucket/some/object into its bucket and
// object name.
func SplitGoogleStoragePath(path string) (bucket, object string, err error) {
	pathParts := strings.SplitN(strings.TrimPrefix(path, "gs://"), "/", 2)
	if len(pathParts) != 2 || pathParts[0] == "" || pathParts[1] == "" {
		return "", "", fmt.Errorf("Tried to split your google storage path into 2 parts, but got %d: %v", len(pathParts), pathParts)
	}

	return pathParts[0], pathParts[1], nil
}

// OpenFileOrGoogleStorage opens path for reading. gs:// paths require a non-nil
// client.
func OpenFileOrGoogleStorage(ctx context.Context, path string, client *storage.Client) (io.ReadCloser, error) {
	if !IsGoogleStoragePath(path) {
		return os.Open(ExpandHome(path))
	}

	if client == nil {
		return nil, fmt.Errorf("%s: a google storage client is required to read gs:// paths", path)
	}

	bucketName, objectName, err := SplitGoogleStoragePath(path)
	if err != nil {
		return nil, err
	}

	rdr, err := client.Bucket(bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	return rdr, nil
}

// CreateFileOrGoogleStorage opens path for writing, creating parent folders for
// local paths. The object is only committed to Google Storage on Close.
func CreateFileOrGoogleStorage(ctx context.Context, path string, client *storage.Client) (io.WriteCloser, error) {
	if !IsGoogleStoragePath(path) {
		path = ExpandHome(path)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		return os.Create(path)
	}

	if client == nil {
		return nil, fmt.Errorf("%s: a google storage client is required to write gs:// paths", path)
	}

	bucketName, objectName, err := SplitGoogleStoragePath(path)
	if err != nil {
		return nil, err
	}

	return client.Bucket(bucketName).Object(objectName).NewWriter(ctx), nil
}

// JoinPath joins elements onto a local folder or a gs:// prefix.
func JoinPath(root string, elem ...string) string {
	if IsGoogleStoragePath(root) {
		return strings.TrimSuffix(root, "/") + "/" + strings.Join(elem, "/")
	}

	return filepath.Join(append([]string{ExpandHome(root)}, elem...)...)
}
