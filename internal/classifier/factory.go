package classifier

import (
	"context"
	"fmt"
	"log/slog"
)

// Backend names accepted by New.
const (
	TypeONNX        = "onnx"
	TypeRekognition = "rekognition"
	TypeMock        = "mock"
)

// Options selects and configures a classifier backend.
type Options struct {
	// Type is one of the Type* constants.
	Type string

	// ModelPaths are ONNX artifact candidates tried in order. The first
	// that loads wins.
	ModelPaths []string

	// ONNXLibraryPath optionally points at the ONNX Runtime shared
	// library.
	ONNXLibraryPath string

	// AWSRegion configures the Rekognition backend.
	AWSRegion string
}

// New builds the configured classifier through the loader chain. Model-load
// failure here is fatal at process start.
func New(ctx context.Context, logger *slog.Logger, opts Options) (Classifier, error) {
	switch opts.Type {
	case TypeONNX:
		if len(opts.ModelPaths) == 0 {
			return nil, fmt.Errorf("onnx classifier requires at least one model path")
		}
		if err := InitONNXRuntime(opts.ONNXLibraryPath); err != nil {
			return nil, err
		}
		loaders := make([]Loader, 0, len(opts.ModelPaths))
		for _, path := range opts.ModelPaths {
			path := path
			loaders = append(loaders, LoaderFunc{
				LoaderName: fmt.Sprintf("onnx:%s", path),
				Fn: func(ctx context.Context) (Classifier, error) {
					return NewONNX(ONNXConfig{ModelPath: path})
				},
			})
		}
		return LoadFirst(ctx, logger, loaders...)

	case TypeRekognition:
		return LoadFirst(ctx, logger, LoaderFunc{
			LoaderName: "rekognition",
			Fn: func(ctx context.Context) (Classifier, error) {
				return NewRekognition(ctx, RekognitionConfig{Region: opts.AWSRegion})
			},
		})

	case TypeMock:
		return NewMock(), nil

	default:
		return nil, fmt.Errorf("unknown classifier type %q", opts.Type)
	}
}
