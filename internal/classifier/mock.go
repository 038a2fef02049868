package classifier

import (
	"context"
	"crypto/sha256"
	"sync"

	"github.com/visioncraft-labs/emoscope/internal/domain"
	"github.com/visioncraft-labs/emoscope/internal/preprocess"
)

// Mock is a deterministic classifier for tests and development. With no
// fixed result configured it derives scores from a hash of the tensor bytes,
// so identical crops always classify identically and distinct crops usually
// differ.
type Mock struct {
	mu     sync.Mutex
	fixed  *domain.Scores
	err    error
	calls  int
	closed bool
}

// NewMock creates a Mock in hash-derived mode.
func NewMock() *Mock {
	return &Mock{}
}

// SetScores pins the result of every Classify call.
func (m *Mock) SetScores(scores domain.Scores) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixed = &scores
}

// SetError makes Classify fail.
func (m *Mock) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many times Classify ran.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *Mock) Classify(ctx context.Context, face *preprocess.Tensor) (domain.Scores, error) {
	if err := ctx.Err(); err != nil {
		return domain.Scores{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return domain.Scores{}, m.err
	}
	if m.fixed != nil {
		return *m.fixed, nil
	}

	sum := sha256.Sum256(face.Bytes())
	var scores domain.Scores
	for i := range scores {
		scores[i] = float64(sum[i]) / 255 * 100
	}
	return scores, nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var _ Classifier = (*Mock)(nil)
