package service

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/visioncraft-labs/emoscope/internal/domain"
	"github.com/visioncraft-labs/emoscope/internal/vision"
	"github.com/visioncraft-labs/emoscope/internal/ws"
)

type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Create(ctx context.Context, result *domain.Result) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Result, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Result), args.Error(1)
}

func (m *MockResultRepository) ListSimilar(ctx context.Context, userID, excludeID uuid.UUID, scores domain.Scores, limit int) ([]domain.Result, error) {
	args := m.Called(ctx, userID, excludeID, scores, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Result), args.Error(1)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) End(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) ApplyDelta(ctx context.Context, id uuid.UUID, delta domain.StatsDelta) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, frame *vision.Frame) *domain.Result {
	args := m.Called(ctx, frame)
	return args.Get(0).(*domain.Result)
}

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) BroadcastToUser(userID uuid.UUID, eventType ws.EventType, data interface{}) {
	m.Called(userID, eventType, data)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func successResult() *domain.Result {
	var scores domain.Scores
	scores[3] = 90
	return domain.NewSuccessResult(scores, domain.EngagementHigh, 1, nil, 0.8, 20)
}

func TestEmotionService_AnalyzeImage(t *testing.T) {
	userID := uuid.New()
	sessionID := uuid.New()

	t.Run("records successful analysis and updates session", func(t *testing.T) {
		resultRepo := new(MockResultRepository)
		sessionRepo := new(MockSessionRepository)
		analyzer := new(MockAnalyzer)
		hub := new(MockBroadcaster)

		analyzer.On("Analyze", mock.Anything, mock.Anything).Return(successResult())
		resultRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		sessionRepo.On("ApplyDelta", mock.Anything, sessionID, mock.Anything).Return(nil)
		hub.On("BroadcastToUser", userID, ws.EventAnalysisCompleted, mock.Anything).Return()

		svc := NewEmotionService(analyzer, resultRepo, sessionRepo, hub, discardLogger())
		result, err := svc.AnalyzeImage(context.Background(), userID, &sessionID, pngBytes(t))

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, userID, result.UserID)
		require.NotNil(t, result.SessionID)
		assert.Equal(t, sessionID, *result.SessionID)

		resultRepo.AssertExpectations(t)
		sessionRepo.AssertExpectations(t)
		hub.AssertExpectations(t)
	})

	t.Run("records decode failure before any analysis", func(t *testing.T) {
		resultRepo := new(MockResultRepository)
		sessionRepo := new(MockSessionRepository)
		analyzer := new(MockAnalyzer)

		resultRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		svc := NewEmotionService(analyzer, resultRepo, sessionRepo, nil, discardLogger())
		result, err := svc.AnalyzeImage(context.Background(), userID, nil, []byte("not an image"))

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidImage)
		require.NotNil(t, result)
		assert.False(t, result.Success)
		assert.Equal(t, domain.ReasonDecodeError, result.Reason)

		// The analyzer must never see undecodable bytes.
		analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
		resultRepo.AssertExpectations(t)
	})

	t.Run("no-face outcome is recorded without error", func(t *testing.T) {
		resultRepo := new(MockResultRepository)
		sessionRepo := new(MockSessionRepository)
		analyzer := new(MockAnalyzer)

		analyzer.On("Analyze", mock.Anything, mock.Anything).
			Return(domain.NewFailureResult(domain.ReasonNoFaceDetected, 0.6, 8))
		resultRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		sessionRepo.On("ApplyDelta", mock.Anything, sessionID, mock.MatchedBy(func(d domain.StatsDelta) bool {
			return !d.Success
		})).Return(nil)

		svc := NewEmotionService(analyzer, resultRepo, sessionRepo, nil, discardLogger())
		result, err := svc.AnalyzeImage(context.Background(), userID, &sessionID, pngBytes(t))

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, domain.ReasonNoFaceDetected, result.Reason)
		sessionRepo.AssertExpectations(t)
	})

	t.Run("persistence failure does not lose the result", func(t *testing.T) {
		resultRepo := new(MockResultRepository)
		sessionRepo := new(MockSessionRepository)
		analyzer := new(MockAnalyzer)

		analyzer.On("Analyze", mock.Anything, mock.Anything).Return(successResult())
		resultRepo.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)

		svc := NewEmotionService(analyzer, resultRepo, sessionRepo, nil, discardLogger())
		result, err := svc.AnalyzeImage(context.Background(), userID, nil, pngBytes(t))

		require.NoError(t, err)
		assert.True(t, result.Success)
		// Stats must not be updated when the result row was not written.
		sessionRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestEmotionService_AnalyzeBase64(t *testing.T) {
	userID := uuid.New()

	t.Run("invalid payload yields decode error", func(t *testing.T) {
		resultRepo := new(MockResultRepository)
		analyzer := new(MockAnalyzer)

		resultRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		svc := NewEmotionService(analyzer, resultRepo, new(MockSessionRepository), nil, discardLogger())
		result, err := svc.AnalyzeBase64(context.Background(), userID, nil, "!!!not-base64!!!")

		require.Error(t, err)
		assert.Equal(t, domain.ReasonDecodeError, result.Reason)
	})
}

func TestEmotionService_SimilarResults(t *testing.T) {
	userID := uuid.New()
	resultID := uuid.New()

	t.Run("queries neighbors by the reference scores", func(t *testing.T) {
		resultRepo := new(MockResultRepository)

		reference := successResult()
		reference.ID = resultID
		reference.UserID = userID
		neighbor := *successResult()

		resultRepo.On("GetByID", mock.Anything, resultID).Return(reference, nil)
		resultRepo.On("ListSimilar", mock.Anything, userID, resultID, *reference.Scores, 5).
			Return([]domain.Result{neighbor}, nil)

		svc := NewEmotionService(new(MockAnalyzer), resultRepo, new(MockSessionRepository), nil, discardLogger())
		results, err := svc.SimilarResults(context.Background(), userID, resultID, 5)

		require.NoError(t, err)
		assert.Len(t, results, 1)
		resultRepo.AssertExpectations(t)
	})

	t.Run("hides foreign results", func(t *testing.T) {
		resultRepo := new(MockResultRepository)

		reference := successResult()
		reference.ID = resultID
		reference.UserID = uuid.New()
		resultRepo.On("GetByID", mock.Anything, resultID).Return(reference, nil)

		svc := NewEmotionService(new(MockAnalyzer), resultRepo, new(MockSessionRepository), nil, discardLogger())
		_, err := svc.SimilarResults(context.Background(), userID, resultID, 5)

		assert.ErrorIs(t, err, domain.ErrResultNotFound)
		resultRepo.AssertNotCalled(t, "ListSimilar", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failure result has no neighbors", func(t *testing.T) {
		resultRepo := new(MockResultRepository)

		reference := domain.NewFailureResult(domain.ReasonNoFaceDetected, 0.5, 10)
		reference.ID = resultID
		reference.UserID = userID
		resultRepo.On("GetByID", mock.Anything, resultID).Return(reference, nil)

		svc := NewEmotionService(new(MockAnalyzer), resultRepo, new(MockSessionRepository), nil, discardLogger())
		results, err := svc.SimilarResults(context.Background(), userID, resultID, 5)

		require.NoError(t, err)
		assert.Empty(t, results)
		resultRepo.AssertNotCalled(t, "ListSimilar", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSessionService(t *testing.T) {
	userID := uuid.New()
	sessionID := uuid.New()

	t.Run("start creates active session", func(t *testing.T) {
		sessionRepo := new(MockSessionRepository)
		sessionRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.Session) bool {
			return s.UserID == userID && s.CameraResolution == "640x480"
		})).Return(nil)

		svc := NewSessionService(sessionRepo, nil, discardLogger())
		session, err := svc.Start(context.Background(), userID, "640x480")

		require.NoError(t, err)
		assert.Equal(t, userID, session.UserID)
		sessionRepo.AssertExpectations(t)
	})

	t.Run("end rejects foreign session", func(t *testing.T) {
		sessionRepo := new(MockSessionRepository)
		sessionRepo.On("GetByID", mock.Anything, sessionID).
			Return(&domain.Session{ID: sessionID, UserID: uuid.New()}, nil)

		svc := NewSessionService(sessionRepo, nil, discardLogger())
		_, err := svc.End(context.Background(), userID, sessionID)

		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
		sessionRepo.AssertNotCalled(t, "End", mock.Anything, mock.Anything)
	})

	t.Run("end closes owned session", func(t *testing.T) {
		sessionRepo := new(MockSessionRepository)
		active := &domain.Session{ID: sessionID, UserID: userID, Status: domain.SessionActive}
		ended := &domain.Session{ID: sessionID, UserID: userID, Status: domain.SessionEnded}
		sessionRepo.On("GetByID", mock.Anything, sessionID).Return(active, nil)
		sessionRepo.On("End", mock.Anything, sessionID).Return(ended, nil)

		svc := NewSessionService(sessionRepo, nil, discardLogger())
		session, err := svc.End(context.Background(), userID, sessionID)

		require.NoError(t, err)
		assert.Equal(t, domain.SessionEnded, session.Status)
		sessionRepo.AssertExpectations(t)
	})

	t.Run("get rejects foreign session", func(t *testing.T) {
		sessionRepo := new(MockSessionRepository)
		sessionRepo.On("GetByID", mock.Anything, sessionID).
			Return(&domain.Session{ID: sessionID, UserID: uuid.New()}, nil)

		svc := NewSessionService(sessionRepo, nil, discardLogger())
		_, err := svc.Get(context.Background(), userID, sessionID)

		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}
