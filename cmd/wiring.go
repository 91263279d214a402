package cmd

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"

	"github.com/mbellgrove/linkweaver/internal/blob"
	blobgcs "github.com/mbellgrove/linkweaver/internal/blob/gcs"
	bloblocal "github.com/mbellgrove/linkweaver/internal/blob/local"
	"github.com/mbellgrove/linkweaver/internal/cache"
	"github.com/mbellgrove/linkweaver/internal/config"
	"github.com/mbellgrove/linkweaver/internal/download"
	"github.com/mbellgrove/linkweaver/internal/enrich"
	collyfetcher "github.com/mbellgrove/linkweaver/internal/fetcher/colly"
	"github.com/mbellgrove/linkweaver/internal/follow"
	"github.com/mbellgrove/linkweaver/internal/pipeline"
	"github.com/mbellgrove/linkweaver/internal/readable"
)

// buildPipeline assembles the standard enrichment pipeline from
// configuration: label cleanup, tracking-parameter removal, redirect
// following, content governance, curation, and readable extraction,
// with an optional type-filtered download stage.
func buildPipeline(cfg config.Config) (pipeline.Transformer, error) {
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Resolver.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	})

	var visitCache *cache.LRU[string, []follow.Visit]
	if cfg.Resolver.CacheCapacity > 0 {
		visitCache = cache.NewLRU[string, []follow.Visit](cfg.Resolver.CacheCapacity)
	}

	follower := follow.NewFollower(fetcher, visitCache, follow.Options{
		MaxRedirectDepth:    cfg.Resolver.MaxRedirectDepth,
		FetchTimeout:        cfg.FetchTimeout(),
		UserAgent:           cfg.Resolver.UserAgent,
		StripTrackingParams: cfg.Resolver.StripTrackingParams,
	})

	steps := []pipeline.Transformer{
		enrich.NewLabelCleaner(),
		enrich.NewTrackingStripper(),
		enrich.NewLinkFollower(follower),
		enrich.NewContentGoverner(),
		enrich.NewCurator(),
		enrich.NewReadableExtractor(readable.NewShioriExtractor()),
	}

	if cfg.Download.Directory != "" {
		downloader, err := download.NewFileDownloader(cfg.Download.Directory)
		if err != nil {
			return nil, fmt.Errorf("build downloader: %w", err)
		}
		step := enrich.NewContentDownloader(downloader, fetcher)
		if len(cfg.Download.AllowedContentTypes) > 0 {
			steps = append(steps, enrich.NewTypeFilteredDownloader(step, cfg.Download.AllowedContentTypes))
		} else {
			steps = append(steps, step)
		}
	}

	return pipeline.Chain(steps...), nil
}

// buildArchive selects the payload archive sink: GCS when a bucket is
// configured, the local filesystem when an archive directory is, nil
// otherwise. The returned closer releases the GCS client.
func buildArchive(ctx context.Context, cfg config.Config) (blob.Store, func(), error) {
	if cfg.Download.GCSBucket != "" {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("build storage client: %w", err)
		}
		archive, err := blobgcs.New(client, blobgcs.Config{Bucket: cfg.Download.GCSBucket})
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return archive, func() { _ = client.Close() }, nil
	}

	if cfg.Download.ArchiveDir != "" {
		archive, err := bloblocal.New(bloblocal.Config{BaseDir: cfg.Download.ArchiveDir})
		if err != nil {
			return nil, nil, err
		}
		return archive, nil, nil
	}

	return nil, nil, nil
}
