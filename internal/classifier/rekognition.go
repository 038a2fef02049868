package classifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"

	"github.com/visioncraft-labs/emoscope/internal/domain"
	"github.com/visioncraft-labs/emoscope/internal/preprocess"
)

// rekognitionEmotions maps the AWS label set onto the canonical one. CALM is
// the closest match for neutral; CONFUSED and UNKNOWN have no counterpart
// and are dropped.
var rekognitionEmotions = map[types.EmotionName]domain.Emotion{
	types.EmotionNameAngry:     domain.EmotionAngry,
	types.EmotionNameDisgusted: domain.EmotionDisgust,
	types.EmotionNameFear:      domain.EmotionFear,
	types.EmotionNameHappy:     domain.EmotionHappy,
	types.EmotionNameSad:       domain.EmotionSad,
	types.EmotionNameSurprised: domain.EmotionSurprise,
	types.EmotionNameCalm:      domain.EmotionNeutral,
}

// rekognitionAPI is the slice of the AWS client the classifier needs,
// declared here so tests can substitute it.
type rekognitionAPI interface {
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
}

// Rekognition classifies emotions through the AWS Rekognition DetectFaces
// attributes. The preprocessed face is re-encoded as PNG since the API takes
// image bytes, not tensors. Rekognition confidences already come scaled to
// [0,100].
type Rekognition struct {
	client rekognitionAPI
}

// RekognitionConfig selects the AWS region; credentials flow through the
// default SDK chain.
type RekognitionConfig struct {
	Region string
}

// NewRekognition builds the AWS-backed classifier. Config-chain failure is a
// startup error.
func NewRekognition(ctx context.Context, cfg RekognitionConfig) (*Rekognition, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Rekognition{client: rekognition.NewFromConfig(awsCfg)}, nil
}

func (r *Rekognition) Classify(ctx context.Context, face *preprocess.Tensor) (domain.Scores, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, face.Image()); err != nil {
		return domain.Scores{}, fmt.Errorf("encode face: %w", err)
	}

	out, err := r.client.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: buf.Bytes()},
		Attributes: []types.Attribute{types.AttributeAll},
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "ThrottlingException", "ProvisionedThroughputExceededException",
				"ServiceUnavailableException", "InternalServerError":
				return domain.Scores{}, fmt.Errorf("rekognition detect faces: %v: %w", apiErr.ErrorCode(), ErrUnavailable)
			}
		}
		return domain.Scores{}, fmt.Errorf("rekognition detect faces: %w", err)
	}
	if len(out.FaceDetails) == 0 {
		return domain.Scores{}, fmt.Errorf("rekognition found no face in the prepared crop")
	}

	var scores domain.Scores
	for _, emotion := range out.FaceDetails[0].Emotions {
		label, ok := rekognitionEmotions[emotion.Type]
		if !ok || emotion.Confidence == nil {
			continue
		}
		for i, e := range domain.Emotions {
			if e == label {
				scores[i] = float64(*emotion.Confidence)
			}
		}
	}
	if err := scores.Validate(); err != nil {
		return domain.Scores{}, err
	}
	return scores, nil
}

func (r *Rekognition) Close() error {
	return nil
}

var _ Classifier = (*Rekognition)(nil)
