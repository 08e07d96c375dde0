package http

import (
	"net/http"

	"github.com/DRSN-tech/fashion-search/internal/usecase"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const (
	fileField = "file"
	maxMemory = 32 << 20
)

type SearchHandler struct {
	processor     usecase.ImageProcessorUC
	results       usecase.SearchResultUC
	logger        logger.Logger
	maxUploadSize int64
}

func NewSearchHandler(processor usecase.ImageProcessorUC, results usecase.SearchResultUC, logger logger.Logger, maxUploadSize int64) *SearchHandler {
	return &SearchHandler{
		processor:     processor,
		results:       results,
		logger:        logger,
		maxUploadSize: maxUploadSize,
	}
}

// identify
//
//	@Summary		Поиск товаров по фотографии
//	@Description	Находит предметы одежды на изображении и подбирает похожий товар из каталога
//	@Tags			search
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file					true	"Изображение"
//	@Success		200		{object}	SearchResultResponse	"Результат поиска"
//	@Failure		400		{object}	ErrorResponse			"Ошибка валидации"
//	@Failure		429		{object}	ErrorResponse			"Превышен лимит запросов"
//	@Failure		500		{object}	ErrorResponse			"Ошибка обработки"
//	@Router			/identify [post]
func (h *SearchHandler) identify(w http.ResponseWriter, r *http.Request) {
	// запас на заголовки multipart
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+(1<<20))

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	fh, err := formFile(r, fileField)
	if err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	data, _, err := readImage(fh, h.maxUploadSize)
	if err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	h.logger.Infof("processing image: %s", fh.Filename)
	result, err := h.processor.ProcessImage(r.Context(), data)
	if err != nil {
		h.logger.Errorf(err, "error processing image %s", fh.Filename)
		WriteError(w, e.ErrProcessingFailed)
		return
	}

	h.logger.Infof("request completed: ip=%s, query_id=%s, time=%.2fs", clientIP(r), result.QueryID, result.ProcessingTime)
	WriteSuccess(w, http.StatusOK, toSearchResultResponse(result))
}

// getSearchResult
//
//	@Summary		Результат поиска по идентификатору запроса
//	@Tags			search
//	@Produce		json
//	@Param			query_id	path		string					true	"Идентификатор запроса"
//	@Success		200			{object}	SearchResultResponse	"Результат поиска"
//	@Failure		404			{object}	ErrorResponse			"Не найдено"
//	@Failure		500			{object}	ErrorResponse			"Внутренняя ошибка"
//	@Router			/search/{query_id} [get]
func (h *SearchHandler) getSearchResult(w http.ResponseWriter, r *http.Request) {
	queryID := chi.URLParam(r, "query_id")

	result, err := h.results.GetSearchResult(r.Context(), queryID)
	if err != nil {
		code, _ := ToHTTPResponse(err)
		if code >= http.StatusInternalServerError {
			h.logger.Errorf(err, "error retrieving search result %s", queryID)
		} else {
			h.logger.Warnf("%d: %s", code, err.Error())
		}
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toSearchResultResponse(result))
}
