package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/marmos91/brokerd/internal/logger"
	"github.com/marmos91/brokerd/pkg/store/file"
	fileLocal "github.com/marmos91/brokerd/pkg/store/file/local"
	fileS3 "github.com/marmos91/brokerd/pkg/store/file/s3"
	"github.com/marmos91/brokerd/pkg/store/settings"
	settingsBadger "github.com/marmos91/brokerd/pkg/store/settings/badger"
	settingsMemory "github.com/marmos91/brokerd/pkg/store/settings/memory"
	"github.com/mitchellh/mapstructure"
)

// CreateFileStore creates a file store based on configuration.
//
// This factory function uses the Type field to determine which store
// implementation to create, then decodes the type-specific configuration
// from the corresponding map and passes it to the store's constructor.
//
// Supported types:
//   - "local": Uses pkg/store/file/local (local filesystem storage)
//   - "s3": Uses pkg/store/file/s3 (Amazon S3 or compatible storage)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: File store configuration
//
// Returns:
//   - file.Store: Initialized file store
//   - error: Configuration or initialization error
func CreateFileStore(ctx context.Context, cfg *FilesConfig) (file.Store, error) {
	switch cfg.Type {
	case "local":
		return createLocalFileStore(ctx, cfg.Local)
	case "s3":
		return createS3FileStore(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown file store type: %q (supported: local, s3)", cfg.Type)
	}
}

// createLocalFileStore creates a local-filesystem file store.
func createLocalFileStore(ctx context.Context, options map[string]any) (file.Store, error) {
	type LocalFileStoreConfig struct {
		Root string `mapstructure:"root"`
	}

	var storeCfg LocalFileStoreConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode local file store config: %w", err)
	}

	if storeCfg.Root == "" {
		return nil, fmt.Errorf("local file store: root is required")
	}

	store, err := fileLocal.NewLocalStore(ctx, storeCfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to create local file store: %w", err)
	}

	return store, nil
}

// createS3FileStore creates an S3-backed file store.
func createS3FileStore(ctx context.Context, options map[string]any) (file.Store, error) {
	type S3FileStoreConfig struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		KeyPrefix       string `mapstructure:"key_prefix"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		MaxRetries      int    `mapstructure:"max_retries"`
	}

	var storeCfg S3FileStoreConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode S3 file store config: %w", err)
	}

	if storeCfg.Bucket == "" {
		return nil, fmt.Errorf("S3 file store: bucket is required")
	}
	if storeCfg.Region == "" {
		return nil, fmt.Errorf("S3 file store: region is required")
	}

	var configOptions []func(*awsConfig.LoadOptions) error
	configOptions = append(configOptions, awsConfig.WithRegion(storeCfg.Region))

	// Custom endpoint support for MinIO, Localstack, etc.
	if storeCfg.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               storeCfg.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	// Static credentials if provided, otherwise the default credential chain.
	if storeCfg.AccessKeyID != "" && storeCfg.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			storeCfg.AccessKeyID,
			storeCfg.SecretAccessKey,
			"",
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	maxRetries := storeCfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Path-style addressing for MinIO/Localstack compatibility
		if storeCfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	store, err := fileS3.NewS3Store(ctx, fileS3.S3StoreConfig{
		Client:    client,
		Bucket:    storeCfg.Bucket,
		KeyPrefix: storeCfg.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 file store: %w", err)
	}

	logger.Info("S3 file store initialized: bucket=%s, region=%s, prefix=%s",
		storeCfg.Bucket, storeCfg.Region, storeCfg.KeyPrefix)

	return store, nil
}

// CreateSettingsStore creates a settings store based on configuration.
//
// Supported types:
//   - "memory": Uses pkg/store/settings/memory (ephemeral)
//   - "badger": Uses pkg/store/settings/badger (persistent)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Settings store configuration
//
// Returns:
//   - settings.Store: Initialized settings store
//   - error: Configuration or initialization error
func CreateSettingsStore(ctx context.Context, cfg *SettingsConfig) (settings.Store, error) {
	switch cfg.Type {
	case "memory":
		return createMemorySettingsStore(ctx)
	case "badger":
		return createBadgerSettingsStore(ctx, cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown settings store type: %q (supported: memory, badger)", cfg.Type)
	}
}

// createMemorySettingsStore creates an in-memory settings store.
func createMemorySettingsStore(ctx context.Context) (settings.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return settingsMemory.NewMemoryStore(), nil
}

// createBadgerSettingsStore creates a BadgerDB-backed persistent settings store.
func createBadgerSettingsStore(ctx context.Context, options map[string]any) (settings.Store, error) {
	type BadgerSettingsStoreOptions struct {
		DBPath string `mapstructure:"db_path"`
	}

	var storeOpts BadgerSettingsStoreOptions
	if err := mapstructure.Decode(options, &storeOpts); err != nil {
		return nil, fmt.Errorf("failed to decode badger settings store options: %w", err)
	}

	if storeOpts.DBPath == "" {
		return nil, fmt.Errorf("badger settings store: db_path is required")
	}

	store, err := settingsBadger.NewBadgerStore(ctx, storeOpts.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create badger settings store: %w", err)
	}

	return store, nil
}
