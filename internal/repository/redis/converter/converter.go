package converter

import "github.com/DRSN-tech/fashion-search/internal/domain"

// SearchResultConverter преобразует результаты поиска в модель кэша и обратно.
type SearchResultConverter struct{}

func (SearchResultConverter) ToRedisModel(entity *domain.SearchResult) *SearchResultRedisModel {
	results := make([]DetectionRedisModel, 0, len(entity.Results))
	for _, r := range entity.Results {
		m := DetectionRedisModel{
			SimilarityScore: r.SimilarityScore,
			BoundingBox:     [4]float64{r.BoundingBox.X1, r.BoundingBox.Y1, r.BoundingBox.X2, r.BoundingBox.Y2},
			Confidence:      r.Confidence,
		}
		if r.Product != nil {
			p := ProductRedisModel(*r.Product)
			m.Product = &p
		}
		results = append(results, m)
	}

	return &SearchResultRedisModel{
		QueryID:        entity.QueryID,
		Results:        results,
		ProcessingTime: entity.ProcessingTime,
		CreatedAt:      entity.CreatedAt,
	}
}

func (SearchResultConverter) ToEntity(model *SearchResultRedisModel) *domain.SearchResult {
	results := make([]domain.DetectionResponse, 0, len(model.Results))
	for _, m := range model.Results {
		r := domain.DetectionResponse{
			SimilarityScore: m.SimilarityScore,
			BoundingBox:     domain.BoundingBox{X1: m.BoundingBox[0], Y1: m.BoundingBox[1], X2: m.BoundingBox[2], Y2: m.BoundingBox[3]},
			Confidence:      m.Confidence,
		}
		if m.Product != nil {
			p := domain.Product(*m.Product)
			r.Product = &p
		}
		results = append(results, r)
	}

	return domain.NewSearchResult(model.QueryID, results, model.ProcessingTime, model.CreatedAt)
}
