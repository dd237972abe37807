// Package source reads import files from the local disk or Cloud Storage.
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
)

const gcsScheme = "gs://"

// ReadAll returns the content behind location. A gs://bucket/object URI is
// fetched from Cloud Storage with application default credentials, "-" reads
// stdin, and anything else is a local path.
func ReadAll(ctx context.Context, location string) ([]byte, error) {
	switch {
	case location == "-":
		return io.ReadAll(os.Stdin)
	case strings.HasPrefix(location, gcsScheme):
		bucket, object, err := parseGCSURI(location)
		if err != nil {
			return nil, err
		}
		return fetchFromGCS(ctx, bucket, object)
	default:
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		return data, nil
	}
}

// parseGCSURI splits gs://bucket/path/to/file into bucket and object.
func parseGCSURI(uri string) (string, string, error) {
	if !strings.HasPrefix(uri, gcsScheme) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, gcsScheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

func fetchFromGCS(ctx context.Context, bucket, object string) ([]byte, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	rc, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open GCS object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read GCS object: %w", err)
	}
	return data, nil
}
