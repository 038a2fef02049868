package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visioncraft-labs/emoscope/internal/domain"
)

type fakeRekognitionAPI struct {
	output *rekognition.DetectFacesOutput
	err    error
}

func (f *fakeRekognitionAPI) DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.output, nil
}

func TestRekognition_Classify(t *testing.T) {
	api := &fakeRekognitionAPI{
		output: &rekognition.DetectFacesOutput{
			FaceDetails: []types.FaceDetail{{
				Emotions: []types.Emotion{
					{Type: types.EmotionNameHappy, Confidence: aws.Float32(91.5)},
					{Type: types.EmotionNameCalm, Confidence: aws.Float32(5.0)},
					{Type: types.EmotionNameConfused, Confidence: aws.Float32(88.0)}, // no canonical label
					{Type: types.EmotionNameSad, Confidence: nil},
				},
			}},
		},
	}
	r := &Rekognition{client: api}

	scores, err := r.Classify(context.Background(), uniformTensor(0.5))
	require.NoError(t, err)

	dominant, score := scores.Dominant()
	assert.Equal(t, domain.EmotionHappy, dominant)
	assert.InDelta(t, 91.5, score, 1e-6)
	assert.InDelta(t, 5.0, scores.Get(domain.EmotionNeutral), 1e-6)
	assert.Zero(t, scores.Get(domain.EmotionSad))
}

func TestRekognition_NoFaceInCrop(t *testing.T) {
	r := &Rekognition{client: &fakeRekognitionAPI{output: &rekognition.DetectFacesOutput{}}}
	_, err := r.Classify(context.Background(), uniformTensor(0.5))
	assert.Error(t, err)
}

func TestRekognition_APIError(t *testing.T) {
	r := &Rekognition{client: &fakeRekognitionAPI{err: errors.New("throttled")}}
	_, err := r.Classify(context.Background(), uniformTensor(0.5))
	assert.Error(t, err)
}
