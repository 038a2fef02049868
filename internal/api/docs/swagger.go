package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// FacePositionData is the bounding box of the analyzed face
type FacePositionData struct {
	X      int `json:"x" example:"120"`
	Y      int `json:"y" example:"85"`
	Width  int `json:"width" example:"96"`
	Height int `json:"height" example:"96"`
}

// AnalysisResponse represents a recorded emotion analysis, successful or not
type AnalysisResponse struct {
	ID              string             `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	SessionID       string             `json:"session_id,omitempty" example:"650e8400-e29b-41d4-a716-446655440000"`
	Success         bool               `json:"success" example:"true"`
	FacesDetected   int                `json:"faces_detected" example:"1"`
	DominantEmotion string             `json:"dominant_emotion,omitempty" example:"happy"`
	DominantScore   float64            `json:"dominant_emotion_score,omitempty" example:"91.2"`
	Scores          map[string]float64 `json:"emotions_scores,omitempty"`
	Engagement      string             `json:"engagement,omitempty" example:"high"`
	FacePosition    *FacePositionData  `json:"face_position,omitempty"`
	ErrorReason     string             `json:"error_reason,omitempty" example:"no_face_detected"`
	ImageQuality    float64            `json:"image_quality" example:"0.82"`
	ProcessingMs    float64            `json:"processing_time_ms" example:"23.4"`
	AvgFPS          float64            `json:"avg_fps" example:"42.7"`
	ImageSize       string             `json:"image_size,omitempty" example:"640x480"`
	CacheHit        bool               `json:"cache_hit" example:"false"`
	CreatedAt       string             `json:"created_at" example:"2024-01-01T00:00:00Z"`
}

// SessionStatsData are the rolled-up counters of one analysis session
type SessionStatsData struct {
	TotalAnalyses        int     `json:"total_analyses" example:"120"`
	SuccessfulDetections int     `json:"successful_detections" example:"104"`
	FailedDetections     int     `json:"failed_detections" example:"16"`
	DetectionRate        float64 `json:"detection_rate" example:"0.87"`
	AvgEngagement        float64 `json:"average_engagement" example:"61.5"`
	AvgProcessingMs      float64 `json:"avg_processing_time_ms" example:"24.8"`
	AvgFPS               float64 `json:"avg_fps" example:"12.5"`
	CacheHits            int     `json:"total_cache_hits" example:"18"`
	CacheHitRate         float64 `json:"cache_hit_rate" example:"0.15"`
}

// SessionResponse represents an analysis session
type SessionResponse struct {
	ID               string           `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Status           string           `json:"status" example:"active"`
	CameraResolution string           `json:"camera_resolution,omitempty" example:"1280x720"`
	StartedAt        string           `json:"started_at" example:"2024-01-01T00:00:00Z"`
	EndedAt          string           `json:"ended_at,omitempty" example:"2024-01-01T00:05:00Z"`
	Stats            SessionStatsData `json:"stats"`
}

// SimilarResultsResponse wraps a nearest-neighbor result list
type SimilarResultsResponse struct {
	Results []AnalysisResponse `json:"results"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// NewSwagger builds the OpenAPI document for the public API.
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Emoscope Emotion Analysis API",
		Version:     "v1.0.0",
		Description: "Real-time facial emotion recognition API with session tracking and engagement scoring",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /v1/analyze - Analyze image
		endpoint.New(
			endpoint.POST,
			"/analyze",
			endpoint.WithTags("Analysis"),
			endpoint.WithSummary("Analyze the emotion of a face in an image"),
			endpoint.WithDescription("Runs one emotion analysis over the provided image. Accepts a multipart upload (field \"image\", optional \"session_id\") or a JSON body with a base64 payload. A frame with no detectable face still returns 200 with a failure result; only an undecodable image is a client error."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data"), mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AnalysisResponse{}, "200", "Analysis recorded"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "DECODE_ERROR", Message: "Image could not be decoded"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "MODEL_UNAVAILABLE", Message: "Emotion model is not available"}, "503", "Service Unavailable"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /v1/results/:id - Get a recorded result
		endpoint.New(
			endpoint.GET,
			"/results/{id}",
			endpoint.WithTags("Analysis"),
			endpoint.WithSummary("Fetch a recorded analysis result"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Result UUID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AnalysisResponse{}, "200", "Result retrieved"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "RESULT_NOT_FOUND", Message: "Result not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /v1/results/:id/similar - Nearest emotion profiles
		endpoint.New(
			endpoint.GET,
			"/results/{id}/similar",
			endpoint.WithTags("Analysis"),
			endpoint.WithSummary("List past analyses with the closest emotion profile"),
			endpoint.WithDescription("Nearest-neighbor search over the stored 7-dimension score vectors, scoped to the calling user"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Reference result UUID")),
				parameter.IntParam("limit", parameter.Query, parameter.WithDescription("Maximum number of neighbors (1-50, default: 5)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SimilarResultsResponse{}, "200", "Neighbors retrieved"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "RESULT_NOT_FOUND", Message: "Result not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// POST /v1/sessions - Start session
		endpoint.New(
			endpoint.POST,
			"/sessions",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Start a new analysis session"),
			endpoint.WithDescription("Opens a session that groups subsequent analyses and accumulates running statistics"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionResponse{}, "201", "Session started"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// POST /v1/sessions/:id/end - End session
		endpoint.New(
			endpoint.POST,
			"/sessions/{id}/end",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("End an active analysis session"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Session UUID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionResponse{}, "200", "Session ended"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "SESSION_NOT_FOUND", Message: "Session not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "SESSION_ENDED", Message: "Session already ended"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /v1/sessions/:id/stats - Session statistics
		endpoint.New(
			endpoint.GET,
			"/sessions/{id}/stats",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Get rolled-up session statistics"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Session UUID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionStatsData{}, "200", "Statistics retrieved"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "SESSION_NOT_FOUND", Message: "Session not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)
	return sw
}
