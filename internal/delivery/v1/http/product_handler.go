package http

import (
	"net/http"

	"github.com/DRSN-tech/fashion-search/internal/usecase"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
)

const imageField = "image"

type ProductHandler struct {
	catalogUC     usecase.CatalogUC
	logger        logger.Logger
	maxUploadSize int64
}

func NewProductHandler(catalogUC usecase.CatalogUC, logger logger.Logger, maxUploadSize int64) *ProductHandler {
	return &ProductHandler{catalogUC: catalogUC, logger: logger, maxUploadSize: maxUploadSize}
}

// registerProduct
//
//	@Summary		Регистрация нового товара
//	@Description	Создает товар в каталоге и сохраняет эмбеддинг его изображения
//	@Tags			products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			brand		formData	string					false	"Бренд"
//	@Param			name		formData	string					true	"Название товара"
//	@Param			category	formData	string					true	"Категория"
//	@Param			price		formData	number					true	"Цена"
//	@Param			currency	formData	string					false	"Валюта (ISO 4217)"
//	@Param			source_url	formData	string					false	"Страница товара"
//	@Param			image_url	formData	string					false	"Ссылка на изображение"
//	@Param			image		formData	file					true	"Изображение товара"
//	@Success		201			{object}	RegisterProductResponse	"Успешное создание"
//	@Failure		400			{object}	ErrorResponse			"Ошибка валидации"
//	@Router			/products [post]
func (p *ProductHandler) registerProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, p.maxUploadSize+(1<<20))

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), r.Header.Get("Content-Type"))
		WriteError(w, err)
		return
	}

	name := r.FormValue("name")
	category := r.FormValue("category")
	if name == "" || category == "" {
		p.logger.Warnf("%d %s: name=%q category=%q", http.StatusBadRequest, e.ErrMissingFields.Error(), name, category)
		WriteError(w, e.ErrMissingFields)
		return
	}

	price, err := parsePriceToCents(r.FormValue("price"))
	if err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	fh, err := formFile(r, imageField)
	if err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	data, mimeType, err := readImage(fh, p.maxUploadSize)
	if err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	req := usecase.NewRegisterProductReq(
		r.FormValue("brand"),
		name,
		category,
		price,
		r.FormValue("currency"),
		r.FormValue("source_url"),
		r.FormValue("image_url"),
		*usecase.NewProductImage(data, mimeType, int64(len(data)), fh.Filename),
	)

	res, err := p.catalogUC.RegisterProduct(r.Context(), req)
	if err != nil {
		code, _ := ToHTTPResponse(err)
		if code >= http.StatusInternalServerError {
			p.logger.Errorf(err, "failed to register product %q", name)
		} else {
			p.logger.Warnf("%d: %s", code, err.Error())
		}
		WriteError(w, err)
		return
	}

	p.logger.Infof("product registered: id=%s, locator=%s", res.ProductID, res.Locator)
	WriteSuccess(w, http.StatusCreated, &RegisterProductResponse{
		ProductID: res.ProductID,
		Locator:   res.Locator,
	})
}
