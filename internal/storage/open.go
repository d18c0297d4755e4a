package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Driver names accepted by Open.
const (
	DriverMinio  = "minio"
	DriverS3     = "s3"
	DriverMemory = "memory"
)

// Options selects and configures a driver.
type Options struct {
	Driver     string
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	Region     string
	PublicBase string
	UseSSL     bool
	PathStyle  bool
	SigningKey string
}

// Open constructs the Storage for opts.Driver. It is called once at startup;
// the returned client is shared read-only by every request.
func Open(ctx context.Context, opts Options, lg *zap.Logger) (Storage, error) {
	lg = lg.With(zap.String("driver", opts.Driver), zap.String("bucket", opts.Bucket))

	switch opts.Driver {
	case DriverMinio, "":
		s, err := NewMinioStorage(ctx, MinioConfig{
			Endpoint:   opts.Endpoint,
			AccessKey:  opts.AccessKey,
			SecretKey:  opts.SecretKey,
			Bucket:     opts.Bucket,
			Region:     opts.Region,
			PublicBase: opts.PublicBase,
			UseSSL:     opts.UseSSL,
		}, lg)
		if err != nil {
			return nil, err
		}
		lg.Info("storage ready", zap.String("endpoint", opts.Endpoint))
		return s, nil

	case DriverS3:
		s, err := NewS3Storage(ctx, S3Config{
			Endpoint:   opts.Endpoint,
			AccessKey:  opts.AccessKey,
			SecretKey:  opts.SecretKey,
			Bucket:     opts.Bucket,
			Region:     opts.Region,
			PublicBase: opts.PublicBase,
			PathStyle:  opts.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		lg.Info("storage ready", zap.String("endpoint", opts.Endpoint))
		return s, nil

	case DriverMemory:
		lg.Warn("storage is in-memory; objects are lost on restart")
		return NewMemoryStorage(opts.Bucket, opts.PublicBase, []byte(opts.SigningKey)), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
