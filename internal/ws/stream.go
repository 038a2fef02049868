package ws

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/visioncraft-labs/emoscope/internal/analysis"
	"github.com/visioncraft-labs/emoscope/internal/detector"
	"github.com/visioncraft-labs/emoscope/internal/domain"
	"github.com/visioncraft-labs/emoscope/internal/stream"
	"github.com/visioncraft-labs/emoscope/internal/vision"
)

// StreamRecorder persists results produced over a streaming connection.
type StreamRecorder interface {
	RecordStreamResult(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, result *domain.Result)
}

// StreamDeps wires the frames-in, results-out streaming endpoint.
type StreamDeps struct {
	Pipeline *analysis.Pipeline
	Locator  detector.Locator
	Config   stream.Config
	Recorder StreamRecorder
	Logger   *slog.Logger
}

// StreamHandler upgrades the connection into a live analysis stream. The
// client sends one encoded image per binary message; the server pushes each
// finished result back as JSON. Every connection gets its own scheduler so
// one slow client cannot starve another. An optional session_id query
// parameter attaches the results to an analysis session.
func StreamHandler(deps StreamDeps) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		userIDValue := c.Locals("user_id")
		userID, ok := userIDValue.(uuid.UUID)
		if !ok {
			_ = c.Close()
			return
		}

		var sessionID *uuid.UUID
		if raw := c.Query("session_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				_ = c.WriteJSON(domain.ErrValidationFailed)
				_ = c.Close()
				return
			}
			sessionID = &id
		}

		sched := stream.NewScheduler(deps.Pipeline, deps.Locator, deps.Config, deps.Logger)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		defer sched.Close()

		go sched.Run(ctx)

		// Single writer. The reader below never writes to the socket.
		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			for {
				select {
				case <-ctx.Done():
					return
				case result := <-sched.Results():
					if deps.Recorder != nil {
						deps.Recorder.RecordStreamResult(ctx, userID, sessionID, result)
					}
					if err := c.WriteJSON(result); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		for {
			messageType, data, err := c.ReadMessage()
			if err != nil {
				break
			}
			if messageType != websocket.BinaryMessage {
				continue
			}

			frame, err := vision.Decode(data)
			if err != nil {
				failure := domain.NewFailureResult(domain.ReasonDecodeError, 0.5, 0)
				if deps.Recorder != nil {
					deps.Recorder.RecordStreamResult(ctx, userID, sessionID, failure)
				}
				continue
			}

			sched.Submit(frame)
		}

		cancel()
		<-writerDone
	})
}
