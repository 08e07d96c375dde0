package http

import (
	"time"

	"github.com/DRSN-tech/fashion-search/internal/domain"
)

type ProductResponse struct {
	ID         string    `json:"id"`
	Brand      string    `json:"brand"`
	Name       string    `json:"name"`
	CategoryID int64     `json:"category_id"`
	Price      int64     `json:"price"`
	Currency   string    `json:"currency"`
	SourceURL  string    `json:"source_url"`
	ImageURL   string    `json:"image_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BoundingBoxResponse сериализуется как [x1, y1, x2, y2].
type BoundingBoxResponse [4]float64

type DetectionResponse struct {
	Product         *ProductResponse    `json:"product"`
	SimilarityScore float64             `json:"similarity_score"`
	BoundingBox     BoundingBoxResponse `json:"bounding_box"`
	Confidence      float64             `json:"confidence"`
}

type SearchResultResponse struct {
	QueryID        string              `json:"query_id"`
	Results        []DetectionResponse `json:"results"`
	ProcessingTime float64             `json:"processing_time"`
	CreatedAt      time.Time           `json:"created_at"`
}

type RegisterProductResponse struct {
	ProductID string `json:"product_id"`
	Locator   string `json:"locator"`
}

type ComponentStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentStatus `json:"components"`
	Timestamp  float64                    `json:"timestamp"`
}

func toProductResponse(p *domain.Product) *ProductResponse {
	if p == nil {
		return nil
	}

	return &ProductResponse{
		ID:         p.ID,
		Brand:      p.Brand,
		Name:       p.Name,
		CategoryID: p.CategoryID,
		Price:      p.Price,
		Currency:   p.Currency,
		SourceURL:  p.SourceURL,
		ImageURL:   p.ImageURL,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func toSearchResultResponse(r *domain.SearchResult) *SearchResultResponse {
	results := make([]DetectionResponse, len(r.Results))
	for i, d := range r.Results {
		results[i] = DetectionResponse{
			Product:         toProductResponse(d.Product),
			SimilarityScore: d.SimilarityScore,
			BoundingBox:     BoundingBoxResponse{d.BoundingBox.X1, d.BoundingBox.Y1, d.BoundingBox.X2, d.BoundingBox.Y2},
			Confidence:      d.Confidence,
		}
	}

	return &SearchResultResponse{
		QueryID:        r.QueryID,
		Results:        results,
		ProcessingTime: r.ProcessingTime,
		CreatedAt:      r.CreatedAt,
	}
}
