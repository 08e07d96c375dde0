package domain

import "time"

// SimilarityMatch — товар и его сходство с запросом в диапазоне [0, 1].
type SimilarityMatch struct {
	Product    Product
	Similarity float64
}

// DetectionResponse — результат для одного найденного объекта.
// Product равен nil, если подходящих товаров не нашлось.
type DetectionResponse struct {
	Product         *Product
	SimilarityScore float64
	BoundingBox     BoundingBox
	Confidence      float64
}

// SearchResult — итог обработки одного изображения. После создания не изменяется.
type SearchResult struct {
	QueryID        string
	Results        []DetectionResponse
	ProcessingTime float64 // секунды
	CreatedAt      time.Time
}

func NewSearchResult(queryID string, results []DetectionResponse, processingTime float64, createdAt time.Time) *SearchResult {
	return &SearchResult{
		QueryID:        queryID,
		Results:        results,
		ProcessingTime: processingTime,
		CreatedAt:      createdAt,
	}
}

// TopProduct возвращает товар первого результата или nil.
func (s *SearchResult) TopProduct() *Product {
	for _, r := range s.Results {
		if r.Product != nil {
			return r.Product
		}
	}

	return nil
}
