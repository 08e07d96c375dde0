package ml_service

import (
	"context"
	"fmt"
	"time"

	"github.com/DRSN-tech/fashion-search/internal/domain"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	DetectMethod = "/ml.v1.FashionDetector/Detect"
	EmbedMethod  = "/ml.v1.FashionDetector/Embed"
)

// MLService клиент для взаимодействия с внешним ML-сервисом.
// Запрос — байты изображения (BytesValue), ответ — Struct. Повторов нет.
type MLService struct {
	conn          grpc.ClientConnInterface
	timeout       time.Duration
	minConfidence float64
	logger        logger.Logger
}

func NewMLService(conn grpc.ClientConnInterface, timeout time.Duration, minConfidence float64, logger logger.Logger) *MLService {
	return &MLService{
		conn:          conn,
		timeout:       timeout,
		minConfidence: minConfidence,
		logger:        logger,
	}
}

// Detect возвращает найденные на изображении объекты с уверенностью выше порога.
func (m *MLService) Detect(ctx context.Context, image []byte) ([]domain.Detection, error) {
	const op = "MLService.Detect"

	out, err := m.invoke(ctx, DetectMethod, image)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	detections, err := parseDetections(out, m.minConfidence)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	m.logger.Debugf("ml-service detect: received=%d, kept=%d", len(out.GetFields()["detections"].GetListValue().GetValues()), len(detections))
	return detections, nil
}

// Embed возвращает эмбеддинг всего изображения.
func (m *MLService) Embed(ctx context.Context, image []byte) ([]float32, error) {
	const op = "MLService.Embed"

	out, err := m.invoke(ctx, EmbedMethod, image)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	vector, err := parseEmbedding(out)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	m.logger.Debugf("ml-service embed: dim=%d, model_version=%s", len(vector), out.GetFields()["model_version"].GetStringValue())
	return vector, nil
}

func (m *MLService) invoke(ctx context.Context, method string, image []byte) (*structpb.Struct, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	out := new(structpb.Struct)
	if err := m.conn.Invoke(ctx, method, wrapperspb.Bytes(image), out); err != nil {
		return nil, err
	}

	return out, nil
}

// parseDetections ожидает {"detections": [{"box": [x1, y1, x2, y2], "confidence": c}, ...]}.
func parseDetections(out *structpb.Struct, minConfidence float64) ([]domain.Detection, error) {
	field, ok := out.GetFields()["detections"]
	if !ok {
		return nil, fmt.Errorf("%w: missing detections", e.ErrMalformedMLResponse)
	}

	list := field.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%w: detections is not a list", e.ErrMalformedMLResponse)
	}

	detections := make([]domain.Detection, 0, len(list.GetValues()))
	for i, item := range list.GetValues() {
		obj := item.GetStructValue()
		if obj == nil {
			return nil, fmt.Errorf("%w: detection %d is not an object", e.ErrMalformedMLResponse, i)
		}

		confValue, ok := obj.GetFields()["confidence"]
		if !ok {
			return nil, fmt.Errorf("%w: detection %d has no confidence", e.ErrMalformedMLResponse, i)
		}
		confidence := confValue.GetNumberValue()
		if confidence < 0 || confidence > 1 {
			return nil, fmt.Errorf("%w: detection %d confidence %v out of range", e.ErrMalformedMLResponse, i, confidence)
		}

		coords, err := numbers(obj.GetFields()["box"])
		if err != nil {
			return nil, fmt.Errorf("%w: detection %d box: %v", e.ErrMalformedMLResponse, i, err)
		}
		box, ok := domain.BoxFromSlice(coords)
		if !ok {
			return nil, fmt.Errorf("%w: detection %d box has %d coordinates", e.ErrMalformedMLResponse, i, len(coords))
		}

		if confidence <= minConfidence {
			continue
		}

		detections = append(detections, domain.NewDetection(box, confidence))
	}

	return detections, nil
}

// parseEmbedding ожидает {"vector": [...], "model_version": "..."}.
func parseEmbedding(out *structpb.Struct) ([]float32, error) {
	values, err := numbers(out.GetFields()["vector"])
	if err != nil {
		return nil, fmt.Errorf("%w: vector: %v", e.ErrMalformedMLResponse, err)
	}

	if len(values) == 0 {
		return nil, e.ErrEmptyVectors
	}

	vector := make([]float32, len(values))
	for i, v := range values {
		vector[i] = float32(v)
	}

	return vector, nil
}

func numbers(v *structpb.Value) ([]float64, error) {
	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("expected list")
	}

	result := make([]float64, 0, len(list.GetValues()))
	for i, item := range list.GetValues() {
		n, ok := item.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("element %d is not a number", i)
		}
		result = append(result, n.NumberValue)
	}

	return result, nil
}
