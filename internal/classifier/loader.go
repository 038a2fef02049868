package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Loader is one strategy for obtaining a working classifier. Strategies are
// tried in order until one succeeds, which keeps the service resilient to
// model-artifact drift (renamed files, formats retired between releases).
type Loader interface {
	Name() string
	Load(ctx context.Context) (Classifier, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc struct {
	LoaderName string
	Fn         func(ctx context.Context) (Classifier, error)
}

func (l LoaderFunc) Name() string { return l.LoaderName }

func (l LoaderFunc) Load(ctx context.Context) (Classifier, error) { return l.Fn(ctx) }

// ErrAllLoadersFailed reports that no strategy produced a classifier. This
// is fatal at process start; the service must not serve analysis requests
// without a model.
var ErrAllLoadersFailed = errors.New("all classifier loaders failed")

// LoadFirst runs the loader chain and returns the first classifier that
// loads. Individual failures are logged and skipped; only exhausting the
// chain is an error.
func LoadFirst(ctx context.Context, logger *slog.Logger, loaders ...Loader) (Classifier, error) {
	if len(loaders) == 0 {
		return nil, fmt.Errorf("%w: no loaders configured", ErrAllLoadersFailed)
	}

	var errs []error
	for _, loader := range loaders {
		c, err := loader.Load(ctx)
		if err != nil {
			logger.Warn("classifier loader failed",
				slog.String("loader", loader.Name()),
				slog.Any("error", err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", loader.Name(), err))
			continue
		}
		logger.Info("classifier loaded", slog.String("loader", loader.Name()))
		return c, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrAllLoadersFailed, errors.Join(errs...))
}
