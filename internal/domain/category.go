package domain

import (
	"strings"
	"time"
)

// Category — категория каталога. Имя уникально, товары ссылаются на категорию по ID.
type Category struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// NewCategory создаёт категорию с именем без пробелов по краям.
func NewCategory(name string) *Category {
	return &Category{Name: strings.TrimSpace(name)}
}
