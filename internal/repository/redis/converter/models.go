package converter

import "time"

type SearchResultRedisModel struct {
	QueryID        string                `json:"query_id"`
	Results        []DetectionRedisModel `json:"results"`
	ProcessingTime float64               `json:"processing_time"`
	CreatedAt      time.Time             `json:"created_at"`
}

type DetectionRedisModel struct {
	Product         *ProductRedisModel `json:"product,omitempty"`
	SimilarityScore float64            `json:"similarity_score"`
	BoundingBox     [4]float64         `json:"bounding_box"` // x1, y1, x2, y2
	Confidence      float64            `json:"confidence"`
}

type ProductRedisModel struct {
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
