package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Внутренние ошибки с векторами
	ErrEmptyVectors         = fmt.Errorf("empty vectors")
	ErrVectorEmbeddingEmpty = fmt.Errorf("vector embedding is empty")
	ErrMalformedEmbedding   = fmt.Errorf("malformed embedding blob")
	ErrMalformedMLResponse  = fmt.Errorf("malformed ml-service response")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// 400 Bad Request
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrExpectedMultipart    = fmt.Errorf("expected multipart/form-data")
	ErrMissingFields        = fmt.Errorf("missing required fields")
	ErrInvalidPrice         = fmt.Errorf("invalid price")
	ErrPricePrecision       = fmt.Errorf("price must have at most 2 decimal places")
	ErrNoImages             = fmt.Errorf("no images provided")
	ErrNotAnImage           = fmt.Errorf("file must be an image")
	ErrFileTooLarge         = fmt.Errorf("file size exceeds maximum limit")
	ErrProductNameRequired  = fmt.Errorf("product name is required")
	ErrNegativePrice        = fmt.Errorf("price must not be negative")
	ErrUnknownFilterField   = fmt.Errorf("unknown filter field")

	// 404 Not Found
	ErrEmbeddingNotFound    = fmt.Errorf("embedding not found")
	ErrProductNotFound      = fmt.Errorf("product not found")
	ErrSearchResultNotFound = fmt.Errorf("search result not found")

	// 429 Too Many Requests
	ErrTooManyRequests = fmt.Errorf("too many requests, please try again later")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
	ErrProcessingFailed    = fmt.Errorf("an error occurred while processing the image")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
