package converter

import (
	"encoding/json"

	"github.com/DRSN-tech/fashion-search/internal/domain"
	"github.com/DRSN-tech/fashion-search/internal/usecase"
)

// CategoryConverter преобразует сущности Category между domain и моделью PostgreSQL.
type CategoryConverter struct{}

func (CategoryConverter) ToModel(entity *domain.Category) *CategoryModel {
	return &CategoryModel{
		ID:        entity.ID,
		Name:      entity.Name,
		CreatedAt: entity.CreatedAt,
		UpdatedAt: entity.UpdatedAt,
	}
}

func (CategoryConverter) ToEntity(model *CategoryModel) *domain.Category {
	return &domain.Category{
		ID:        model.ID,
		Name:      model.Name,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// ProductConverter преобразует сущности Product между domain и моделью PostgreSQL.
type ProductConverter struct{}

func (ProductConverter) ToModel(entity *domain.Product) *ProductModel {
	return &ProductModel{
		ID:         entity.ID,
		Brand:      entity.Brand,
		Name:       entity.Name,
		CategoryID: entity.CategoryID,
		Price:      entity.Price,
		Currency:   entity.Currency,
		SourceURL:  entity.SourceURL,
		ImageURL:   entity.ImageURL,
		CreatedAt:  entity.CreatedAt,
		UpdatedAt:  entity.UpdatedAt,
	}
}

func (ProductConverter) ToEntity(model *ProductModel) *domain.Product {
	return &domain.Product{
		ID:         model.ID,
		Brand:      model.Brand,
		Name:       model.Name,
		CategoryID: model.CategoryID,
		Price:      model.Price,
		Currency:   model.Currency,
		SourceURL:  model.SourceURL,
		ImageURL:   model.ImageURL,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

// SearchResultConverter сериализует результаты детекций в JSONB и обратно.
type SearchResultConverter struct{}

func (SearchResultConverter) ToModel(entity *domain.SearchResult) (*SearchResultModel, error) {
	docs := make([]DetectionResponseDoc, 0, len(entity.Results))
	for _, r := range entity.Results {
		doc := DetectionResponseDoc{
			SimilarityScore: r.SimilarityScore,
			BoundingBox:     BoundingBoxDoc(r.BoundingBox),
			Confidence:      r.Confidence,
		}
		if r.Product != nil {
			p := ProductDoc(*ProductConverter{}.ToModel(r.Product))
			doc.Product = &p
		}
		docs = append(docs, doc)
	}

	data, err := json.Marshal(docs)
	if err != nil {
		return nil, err
	}

	model := &SearchResultModel{
		QueryID:        entity.QueryID,
		Results:        data,
		Detections:     len(entity.Results),
		ProcessingTime: entity.ProcessingTime,
		CreatedAt:      entity.CreatedAt,
	}
	if top := entity.TopProduct(); top != nil {
		model.TopProductID = &top.ID
	}

	return model, nil
}

func (SearchResultConverter) ToEntity(model *SearchResultModel) (*domain.SearchResult, error) {
	var docs []DetectionResponseDoc
	if err := json.Unmarshal(model.Results, &docs); err != nil {
		return nil, err
	}

	results := make([]domain.DetectionResponse, 0, len(docs))
	for _, doc := range docs {
		r := domain.DetectionResponse{
			SimilarityScore: doc.SimilarityScore,
			BoundingBox:     domain.BoundingBox(doc.BoundingBox),
			Confidence:      doc.Confidence,
		}
		if doc.Product != nil {
			pm := ProductModel(*doc.Product)
			r.Product = ProductConverter{}.ToEntity(&pm)
		}
		results = append(results, r)
	}

	return domain.NewSearchResult(model.QueryID, results, model.ProcessingTime, model.CreatedAt), nil
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter struct{}

func (OutboxEventConverter) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		AggregateID: entity.AggregateID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverter) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		AggregateID: model.AggregateID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverter) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	events := make([]*usecase.OutboxEvent, 0, len(models))
	for _, m := range models {
		events = append(events, c.ToEntity(m))
	}
	return events
}
