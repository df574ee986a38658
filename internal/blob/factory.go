package blob

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Open selects and constructs a blob store based on environment variables:
//
//	LAUDOCORE_BLOB_DRIVER  fs (default) | s3 | memory
//	LAUDOCORE_BLOB_FS_ROOT filesystem root (fs driver, default ./blobdata)
func Open(ctx context.Context) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(os.Getenv("LAUDOCORE_BLOB_DRIVER")))
	switch driver {
	case "", string(DriverFilesystem):
		return NewFilesystem(os.Getenv("LAUDOCORE_BLOB_FS_ROOT"))
	case string(DriverS3):
		return OpenS3FromEnv(ctx)
	case string(DriverMemory):
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", driver)
	}
}
