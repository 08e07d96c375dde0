package qdrant

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/fashion-search/internal/cfg"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
)

// pointNamespace задаёт пространство имён UUIDv5 для идентификаторов точек.
var pointNamespace = uuid.MustParse("6f1c1f8e-3b8a-4c59-9a55-5d0a3f0c2b11")

// EmbeddingRepo хранит векторы товаров в Qdrant: одна точка на товар.
// Ранжирование выполняется не здесь, коллекция используется как хранилище ключ -> вектор.
type EmbeddingRepo struct {
	client *qdrant.Client
	cfg    *cfg.QdrantCfg
}

func NewEmbeddingRepo(client *qdrant.Client, cfg *cfg.QdrantCfg) *EmbeddingRepo {
	return &EmbeddingRepo{
		client: client,
		cfg:    cfg,
	}
}

// Upload сохраняет или обновляет точку товара и возвращает qdrant://collection/point_id.
func (q *EmbeddingRepo) Upload(ctx context.Context, productID string, vector []float32) (string, error) {
	pointID := PointID(productID)

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewIDUUID(pointID),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(map[string]any{"product_id": productID}),
			},
		},
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return fmt.Sprintf("qdrant://%s/%s", q.cfg.QdrantCollectionName, pointID), nil
}

// Get возвращает вектор товара или e.ErrEmbeddingNotFound.
func (q *EmbeddingRepo) Get(ctx context.Context, productID string) ([]float32, error) {
	points, err := q.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Ids:            []*qdrant.PointId{qdrant.NewIDUUID(PointID(productID))},
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if len(points) == 0 {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrEmbeddingNotFound)
	}

	vector := denseVector(points[0].GetVectors().GetVector())
	if len(vector) == 0 {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrMalformedEmbedding)
	}

	return vector, nil
}

// Delete удаляет точку товара. Отсутствующая точка не считается ошибкой.
func (q *EmbeddingRepo) Delete(ctx context.Context, productID string) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelector(qdrant.NewIDUUID(PointID(productID))),
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// PointID детерминированно выводит UUID точки из идентификатора товара.
func PointID(productID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(productID)).String()
}

func denseVector(v *qdrant.VectorOutput) []float32 {
	if dense := v.GetDense(); dense != nil {
		return dense.GetData()
	}
	return v.GetData() //nolint:staticcheck // старые версии сервера
}
