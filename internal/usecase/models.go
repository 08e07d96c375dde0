package usecase

// CATALOG USECASE

// RegisterProductReq — запрос на добавление товара вместе с изображением для эмбеддинга.
type RegisterProductReq struct {
	Brand        string
	Name         string
	CategoryName string
	Price        int64 // в минимальных единицах валюты
	Currency     string
	SourceURL    string
	ImageURL     string
	Image        ProductImage
}

// ProductImage представляет изображение, загруженное через multipart/form-data.
type ProductImage struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type, определённый по содержимому
	Size     int64  // фактический размер в байтах
	Name     string // оригинальное имя файла (для логов)
}

// RegisterProductRes — идентификатор созданного товара и расположение его вектора.
type RegisterProductRes struct {
	ProductID string
	Locator   string
}

// INFRASTRUCTURE

type WriteRawMessageReq struct {
	Key     string
	Payload []byte
}

// MAPPERS

func NewRegisterProductReq(brand, name, category string, price int64, currency, sourceURL, imageURL string, image ProductImage) *RegisterProductReq {
	return &RegisterProductReq{
		Brand:        brand,
		Name:         name,
		CategoryName: category,
		Price:        price,
		Currency:     currency,
		SourceURL:    sourceURL,
		ImageURL:     imageURL,
		Image:        image,
	}
}

func NewProductImage(data []byte, mimeType string, size int64, name string) *ProductImage {
	return &ProductImage{
		Data:     data,
		MimeType: mimeType,
		Size:     size,
		Name:     name,
	}
}

func NewRegisterProductRes(productID, locator string) *RegisterProductRes {
	return &RegisterProductRes{
		ProductID: productID,
		Locator:   locator,
	}
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:     key,
		Payload: payload,
	}
}
