package classifier

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/visioncraft-labs/emoscope/internal/domain"
	"github.com/visioncraft-labs/emoscope/internal/preprocess"
)

var (
	ortInitialized bool
	ortInitMu      sync.Mutex
)

// InitONNXRuntime sets up the ONNX Runtime environment once per process.
// libraryPath may be empty when the shared library is on the default search
// path.
func InitONNXRuntime(libraryPath string) error {
	ortInitMu.Lock()
	defer ortInitMu.Unlock()

	if ortInitialized {
		return nil
	}
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnx runtime: %w", err)
	}
	ortInitialized = true
	return nil
}

// ShutdownONNXRuntime tears the environment down at process exit.
func ShutdownONNXRuntime() error {
	ortInitMu.Lock()
	defer ortInitMu.Unlock()

	if !ortInitialized {
		return nil
	}
	if err := ort.DestroyEnvironment(); err != nil {
		return err
	}
	ortInitialized = false
	return nil
}

// ONNX runs the facial-expression network through ONNX Runtime. The session
// is created once at startup and treated as read-only afterwards; Run calls
// are serialized because session concurrency depends on the runtime build.
type ONNX struct {
	mu         sync.Mutex
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
}

// ONNXConfig locates the model artifact and its tensor names.
type ONNXConfig struct {
	ModelPath  string
	InputName  string
	OutputName string
}

// NewONNX creates the inference session. Failure here is fatal at process
// start: the service refuses to run without a loaded model.
func NewONNX(cfg ONNXConfig) (*ONNX, error) {
	ortInitMu.Lock()
	ready := ortInitialized
	ortInitMu.Unlock()
	if !ready {
		return nil, fmt.Errorf("onnx runtime not initialized")
	}

	if cfg.InputName == "" {
		cfg.InputName = "input"
	}
	if cfg.OutputName == "" {
		cfg.OutputName = "output"
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer options.Destroy()

	session, err := ort.NewDynamicAdvancedSession(
		cfg.ModelPath,
		[]string{cfg.InputName},
		[]string{cfg.OutputName},
		options,
	)
	if err != nil {
		return nil, fmt.Errorf("create session for %s: %w", cfg.ModelPath, err)
	}

	return &ONNX{
		session:    session,
		inputName:  cfg.InputName,
		outputName: cfg.OutputName,
	}, nil
}

func (o *ONNX) Classify(ctx context.Context, face *preprocess.Tensor) (domain.Scores, error) {
	if err := ctx.Err(); err != nil {
		return domain.Scores{}, err
	}

	input, err := ort.NewTensor(
		ort.NewShape(1, 1, int64(face.Height), int64(face.Width)),
		face.Data,
	)
	if err != nil {
		return domain.Scores{}, fmt.Errorf("create input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewTensor(
		ort.NewShape(1, domain.EmotionCount),
		make([]float32, domain.EmotionCount),
	)
	if err != nil {
		return domain.Scores{}, fmt.Errorf("create output tensor: %w", err)
	}
	defer output.Destroy()

	o.mu.Lock()
	err = o.session.Run([]ort.Value{input}, []ort.Value{output})
	o.mu.Unlock()
	if err != nil {
		return domain.Scores{}, fmt.Errorf("run inference: %w", err)
	}

	return scoresFromVector(output.GetData())
}

func (o *ONNX) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil
	}
	err := o.session.Destroy()
	o.session = nil
	return err
}

var _ Classifier = (*ONNX)(nil)
