package domain

import "time"

// Product описывает товар каталога, с которым сравниваются загруженные изображения.
type Product struct {
	ID         string
	Brand      string
	Name       string
	CategoryID int64
	Price      int64 // Цена хранится в минимальных единицах валюты (центы, копейки)
	Currency   string
	SourceURL  string
	ImageURL   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

const DefaultCurrency = "USD"

func NewProduct(id, brand, name string, categoryID int64, price int64, currency, sourceURL, imageURL string) *Product {
	if currency == "" {
		currency = DefaultCurrency
	}

	return &Product{
		ID:         id,
		Brand:      brand,
		Name:       name,
		CategoryID: categoryID,
		Price:      price,
		Currency:   currency,
		SourceURL:  sourceURL,
		ImageURL:   imageURL,
	}
}

// ProductFilter — условия выборки товаров: имя поля -> ожидаемое значение.
// Пустой фильтр означает «все товары».
type ProductFilter map[string]any
