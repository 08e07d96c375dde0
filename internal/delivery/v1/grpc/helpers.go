package grpc

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/DRSN-tech/fashion-search/internal/domain"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func GRPCErrorResponse(err error) error {
	switch {
	case errors.Is(err, e.ErrNotAnImage):
		return status.Error(codes.InvalidArgument, e.ErrNotAnImage.Error())
	case errors.Is(err, e.ErrFileTooLarge):
		return status.Error(codes.InvalidArgument, e.ErrFileTooLarge.Error())
	case errors.Is(err, e.ErrStatusBadRequest):
		return status.Error(codes.InvalidArgument, e.ErrStatusBadRequest.Error())
	case errors.Is(err, e.ErrSearchResultNotFound):
		return status.Error(codes.NotFound, e.ErrSearchResultNotFound.Error())
	case errors.Is(err, e.ErrProcessingFailed):
		return status.Error(codes.Internal, e.ErrProcessingFailed.Error())
	default:
		return status.Error(codes.Internal, e.ErrInternalServerError.Error())
	}
}

// validateImage проверяет размер и тип изображения по его содержимому.
func validateImage(data []byte, maxSize int64) error {
	if len(data) == 0 {
		return e.ErrStatusBadRequest
	}
	if int64(len(data)) > maxSize {
		return e.ErrFileTooLarge
	}
	if !strings.HasPrefix(http.DetectContentType(data[:min(len(data), 512)]), "image/") {
		return e.ErrNotAnImage
	}

	return nil
}

func toProductValue(p *domain.Product) any {
	if p == nil {
		return nil
	}

	return map[string]any{
		"id":          p.ID,
		"brand":       p.Brand,
		"name":        p.Name,
		"category_id": p.CategoryID,
		"price":       p.Price,
		"currency":    p.Currency,
		"source_url":  p.SourceURL,
		"image_url":   p.ImageURL,
	}
}

func toSearchResultStruct(r *domain.SearchResult) (*structpb.Struct, error) {
	results := make([]any, len(r.Results))
	for i, d := range r.Results {
		results[i] = map[string]any{
			"product":          toProductValue(d.Product),
			"similarity_score": d.SimilarityScore,
			"bounding_box":     []any{d.BoundingBox.X1, d.BoundingBox.Y1, d.BoundingBox.X2, d.BoundingBox.Y2},
			"confidence":       d.Confidence,
		}
	}

	return structpb.NewStruct(map[string]any{
		"query_id":        r.QueryID,
		"results":         results,
		"processing_time": r.ProcessingTime,
		"created_at":      r.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
}
