package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/DRSN-tech/fashion-search/internal/cfg"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

const (
	embeddingPrefix      = "embeddings"
	embeddingContentType = "application/octet-stream"
)

// EmbeddingRepo хранит векторы товаров в MinIO, по объекту на товар.
type EmbeddingRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewEmbeddingRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *EmbeddingRepo {
	return &EmbeddingRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Upload загружает вектор и возвращает его расположение вида s3://bucket/embeddings/{id}.bin.
func (r *EmbeddingRepo) Upload(ctx context.Context, productID string, vector []float32) (string, error) {
	data := encodeVector(vector)
	key := objectKey(productID)

	_, err := r.mc.PutObject(ctx, r.cfg.BucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: embeddingContentType,
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return locator(r.cfg.BucketName, key), nil
}

// Get скачивает вектор товара. Если объекта нет, возвращает e.ErrEmbeddingNotFound.
func (r *EmbeddingRepo) Get(ctx context.Context, productID string) ([]float32, error) {
	obj, err := r.mc.GetObject(ctx, r.cfg.BucketName, objectKey(productID), minio.GetObjectOptions{})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), mapNotFound(err))
	}
	defer obj.Close()

	// GetObject ленивый: ошибка NoSuchKey приходит только при чтении
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), mapNotFound(err))
	}

	vector, err := decodeVector(data)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return vector, nil
}

// Delete удаляет вектор товара.
func (r *EmbeddingRepo) Delete(ctx context.Context, productID string) error {
	if err := r.mc.RemoveObject(ctx, r.cfg.BucketName, objectKey(productID), minio.RemoveObjectOptions{}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func objectKey(productID string) string {
	return fmt.Sprintf("%s/%s.bin", embeddingPrefix, productID)
}

func locator(bucket, key string) string {
	return fmt.Sprintf("s3://%s/%s", bucket, key)
}

func mapNotFound(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return e.ErrEmbeddingNotFound
	}
	return err
}
