package dto

// SetCategoriesRequest - замена набора активных категорий
type SetCategoriesRequest struct {
	Categories []string `json:"categories" validate:"required,max=1000,dive,required,max=128"`
}

// ToggleCategoryRequest - переключение одной категории
type ToggleCategoryRequest struct {
	Category string `json:"category" validate:"required,max=128"`
}

// SetRegionsRequest - замена набора активных регионов
type SetRegionsRequest struct {
	Regions []string `json:"regions" validate:"required,max=1000,dive,required,max=256"`
}

// ToggleRegionRequest - переключение одного региона
type ToggleRegionRequest struct {
	Region string `json:"region" validate:"required,max=256"`
}
