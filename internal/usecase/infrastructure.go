package usecase

import (
	"context"

	"github.com/DRSN-tech/fashion-search/internal/domain"
)

// Detector — внешний ML-сервис: локализация объектов и векторизация изображения.
type Detector interface {
	Detect(ctx context.Context, image []byte) ([]domain.Detection, error)
	Embed(ctx context.Context, image []byte) ([]float32, error)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

// EventEncoder сериализует события для публикации через outbox.
type EventEncoder interface {
	EncodeSearchCompleted(result *domain.SearchResult) ([]byte, error)
}
