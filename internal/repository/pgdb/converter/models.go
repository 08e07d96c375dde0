package converter

import "time"

// CategoryModel представляет запись таблицы categories в PostgreSQL.
type CategoryModel struct {
	ID        int64      `db:"id"`
	Name      string     `db:"name"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt *time.Time `db:"updated_at"`
}

// ProductModel представляет запись таблицы products в PostgreSQL.
type ProductModel struct {
	ID         string    `db:"id"`
	Brand      string    `db:"brand"`
	Name       string    `db:"name"`
	CategoryID int64     `db:"category_id"`
	Price      int64     `db:"price"`
	Currency   string    `db:"currency"`
	SourceURL  string    `db:"source_url"`
	ImageURL   string    `db:"image_url"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// SearchResultModel представляет запись таблицы search_results.
// Results хранит JSON-массив DetectionResponseDoc.
type SearchResultModel struct {
	QueryID        string    `db:"query_id"`
	Results        []byte    `db:"results"`
	Detections     int       `db:"detections"`
	TopProductID   *string   `db:"top_product_id"`
	ProcessingTime float64   `db:"processing_time"`
	CreatedAt      time.Time `db:"created_at"`
}

// DetectionResponseDoc описывает элемент JSONB-колонки results.
type DetectionResponseDoc struct {
	Product         *ProductDoc    `json:"product"`
	SimilarityScore float64        `json:"similarity_score"`
	BoundingBox     BoundingBoxDoc `json:"bounding_box"`
	Confidence      float64        `json:"confidence"`
}

// ProductDoc хранит снимок товара на момент поиска.
type ProductDoc struct {
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

type BoundingBoxDoc struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// OutboxEventModel представляет запись таблицы outbox_events.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	AggregateID string     `db:"aggregate_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
